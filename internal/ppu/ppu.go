// Package ppu implements the Picture Processing Unit for the NES.
package ppu

import (
	"nesgo/internal/memory"
)

// Frame geometry. A frame is 262 scanlines of 341 dots; scanline -1 is the
// pre-render line. On odd frames the pre-render line loses one dot when
// rendering is enabled.
const (
	dotsPerScanline   = 341
	visibleScanlines  = 240
	postRenderLine    = 240
	vblankStartLine   = 241
	lastScanline      = 260
	preRenderLine     = -1
)

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	// CPU-visible registers
	ppuCtrl uint8 // $2000
	ppuMask uint8 // $2001
	oamAddr uint8 // $2003

	// PPUSTATUS bits
	vblank         bool
	sprite0Hit     bool
	spriteOverflow bool

	// Internal scroll/address state
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address (15 bits)
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle

	readBuffer uint8 // PPUDATA buffered read
	openBus    uint8 // last value driven on the PPU data bus

	// Suppression race: a PPUSTATUS read landing on the VBL-set dot
	// hides the flag (and its NMI) for that frame.
	suppressVBL bool
	// Enabling NMI while VBL is already set raises one immediately.
	forceNMI bool

	memory *memory.PPUMemory

	// Timing
	scanline   int // -1 to 260
	dot        int // 0 to 340
	oddFrame   bool
	frameCount uint64
	cycleCount uint64

	// Background pipeline
	bgShiftLow    uint16
	bgShiftHigh   uint16
	attrShiftLow  uint8
	attrShiftHigh uint8
	attrLatchLow  uint8
	attrLatchHigh uint8
	bgLatchLow    uint8
	bgLatchHigh   uint8
	nametableEntry uint8
	attributeEntry uint8
	scratchAddress uint16

	// Sprite pipeline
	oam          [256]uint8
	secondary    [8]sprite // selected during evaluation
	secondaryLen int
	sprites      [8]sprite // loaded with pattern data for the line in flight
	spriteLen    int

	// Frame output
	frameBuffer [256 * 240]uint32

	// Callbacks into the system
	nmiCallback           func()
	frameCompleteCallback func()
}

// sprite holds one OAM entry staged for rendering
type sprite struct {
	y, tile, attr, x uint8
	dataLow          uint8
	dataHigh         uint8
	index            uint8 // position in primary OAM, for sprite-0 hit
}

// New creates a new PPU instance
func New() *PPU {
	return &PPU{scanline: preRenderLine}
}

// Reset resets the PPU to its power-up state
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.oamAddr = 0
	p.vblank = false
	p.sprite0Hit = false
	p.spriteOverflow = false
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.readBuffer = 0
	p.openBus = 0
	p.suppressVBL = false
	p.forceNMI = false

	p.scanline = preRenderLine
	p.dot = 0
	p.oddFrame = false
	p.frameCount = 0
	p.cycleCount = 0

	p.secondaryLen = 0
	p.spriteLen = 0

	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// SetMemory sets the PPU memory interface
func (p *PPU) SetMemory(mem *memory.PPUMemory) {
	p.memory = mem
}

// SetNMICallback sets the function invoked when the PPU pulls NMI
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetFrameCompleteCallback sets the function invoked at the frame boundary
func (p *PPU) SetFrameCompleteCallback(callback func()) {
	p.frameCompleteCallback = callback
}

// Step advances the PPU by one dot
func (p *PPU) Step() {
	p.cycleCount++

	switch {
	case p.scanline >= 0 && p.scanline < visibleScanlines:
		p.tickSprites(false)
		p.tickPixel()
		p.tickBackground(false)

	case p.scanline == preRenderLine:
		p.tickSprites(true)
		p.tickPixel()
		p.tickBackground(true)

	case p.scanline == vblankStartLine && p.dot == 0:
		if p.frameCompleteCallback != nil {
			p.frameCompleteCallback()
		}

	case p.scanline == vblankStartLine && p.dot == 1:
		if !p.suppressVBL {
			p.vblank = true
			if p.nmiEnabled() && p.nmiCallback != nil {
				p.nmiCallback()
			}
		}
	}

	// A $2000 write that turns NMI on mid-vblank raises one right away
	if p.vblank && p.forceNMI && !p.suppressVBL && p.nmiCallback != nil {
		p.nmiCallback()
	}
	p.forceNMI = false
	p.suppressVBL = false

	p.advance()
}

// advance moves to the next dot, wrapping scanlines and frames
func (p *PPU) advance() {
	p.dot++
	if p.dot >= dotsPerScanline {
		p.dot -= dotsPerScanline
		p.scanline++
		if p.scanline > lastScanline {
			p.scanline = preRenderLine
			p.oddFrame = !p.oddFrame
			p.frameCount++
		}
	}
}

// Register access ($2000-$2007)

// ReadRegister reads from a PPU register
func (p *PPU) ReadRegister(address uint16) uint8 {
	var result uint8

	switch address & 0x2007 {
	case 0x2002: // PPUSTATUS
		result = p.statusByte() | p.openBus&0x1F
		p.vblank = false
		p.w = false
		// Reading on the VBL-set dot suppresses the flag that frame
		p.suppressVBL = true

	case 0x2004: // OAMDATA
		result = p.oam[p.oamAddr]
		if p.oamAddr%4 == 2 {
			// Attribute bytes have three unimplemented bits
			result &= 0xE3
		}

	case 0x2007: // PPUDATA
		result = p.readData()

	default:
		// Write-only registers return the lingering bus value
		result = p.openBus
	}

	p.openBus = result
	return result
}

// WriteRegister writes to a PPU register
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.openBus = value

	switch address & 0x2007 {
	case 0x2000: // PPUCTRL
		if !p.nmiEnabled() && value&0x80 != 0 {
			p.forceNMI = true
		}
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | (uint16(value)&0x03)<<10 // nametable select

	case 0x2001: // PPUMASK
		p.ppuMask = value

	case 0x2003: // OAMADDR
		p.oamAddr = value

	case 0x2004: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++

	case 0x2005: // PPUSCROLL
		p.writeScroll(value)

	case 0x2006: // PPUADDR
		p.writeAddress(value)

	case 0x2007: // PPUDATA
		p.memory.Write(p.v&0x3FFF, value)
		p.v += p.addressIncrement()
	}
}

// WriteOAMData writes one byte through OAMADDR with auto-increment (used
// by OAM DMA).
func (p *PPU) WriteOAMData(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

// writeScroll handles the two-write PPUSCROLL sequence into t/x
func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(value)>>3 // coarse X
		p.x = value & 0x07                      // fine X
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(value)&0x07)<<12 // fine Y
		p.t = (p.t & 0xFC1F) | (uint16(value)&0xF8)<<2  // coarse Y
	}
	p.w = !p.w
}

// writeAddress handles the two-write PPUADDR sequence; the second write
// copies t into v.
func (p *PPU) writeAddress(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | (uint16(value)&0x3F)<<8
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
	}
	p.w = !p.w
}

// readData implements the PPUDATA buffered read. Palette reads bypass the
// buffer and return immediately, refilling it from the nametable beneath.
func (p *PPU) readData() uint8 {
	address := p.v & 0x3FFF
	p.v += p.addressIncrement()

	if address >= 0x3F00 {
		p.readBuffer = p.memory.ReadNametable(address)
		return p.memory.ReadPalette(address) | p.openBus&0xC0
	}

	result := p.readBuffer
	p.readBuffer = p.memory.Read(address)
	return result
}

func (p *PPU) statusByte() uint8 {
	var status uint8
	if p.spriteOverflow {
		status |= 0x20
	}
	if p.sprite0Hit {
		status |= 0x40
	}
	if p.vblank {
		status |= 0x80
	}
	return status
}

// PPUCTRL decoding

func (p *PPU) nmiEnabled() bool { return p.ppuCtrl&0x80 != 0 }

func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&0x20 != 0 {
		return 16
	}
	return 8
}

func (p *PPU) backgroundTableBase() uint16 {
	if p.ppuCtrl&0x10 != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) spriteTableBase() uint16 {
	if p.ppuCtrl&0x08 != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) addressIncrement() uint16 {
	if p.ppuCtrl&0x04 != 0 {
		return 32
	}
	return 1
}

// PPUMASK decoding

func (p *PPU) renderingEnabled() bool { return p.ppuMask&0x18 != 0 }
func (p *PPU) grayscale() bool        { return p.ppuMask&0x01 != 0 }
func (p *PPU) emphasis() uint8        { return p.ppuMask >> 5 }

// showBackgroundAt honors the enable and left-clip bits for pixel x
func (p *PPU) showBackgroundAt(x int) bool {
	return p.ppuMask&0x08 != 0 && (p.ppuMask&0x02 != 0 || x >= 8)
}

// showSpritesAt honors the enable and left-clip bits for pixel x
func (p *PPU) showSpritesAt(x int) bool {
	return p.ppuMask&0x10 != 0 && (p.ppuMask&0x04 != 0 || x >= 8)
}

// v/t scroll helpers

func (p *PPU) nametableAddress() uint16 {
	return 0x2000 | p.v&0x0FFF
}

func (p *PPU) attributeAddress() uint16 {
	return 0x23C0 | p.v&0x0C00 | (p.v>>4)&0x38 | (p.v>>2)&0x07
}

func (p *PPU) coarseX() uint16 { return p.v & 0x001F }
func (p *PPU) coarseY() uint16 { return (p.v >> 5) & 0x001F }
func (p *PPU) fineY() uint16   { return (p.v >> 12) & 0x0007 }

// incrementX advances coarse X, wrapping into the adjacent nametable
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY advances fine Y with carry into coarse Y and the vertical
// nametable. Coarse Y 29 wraps to 0 and switches nametable; the
// out-of-range value 30 steps to 31, and 31 wraps to 0 without the
// nametable switch.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &^= 0x7000
		y := p.coarseY()
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.v = (p.v &^ 0x03E0) | y<<5
	}
}

// copyX copies the horizontal bits of t into v
func (p *PPU) copyX() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

// copyY copies the vertical bits of t into v
func (p *PPU) copyY() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// Background pipeline

// tickBackground runs the standard 8-cycle fetch sequence and the scroll
// register clocking for the current dot. With rendering disabled the
// address bus is quiet: no fetches, no scroll clocking, and no A12 edges
// for the mapper to see.
func (p *PPU) tickBackground(pre bool) {
	if pre && p.dot == 1 {
		p.vblank = false
	}
	if !p.renderingEnabled() {
		return
	}

	switch {
	case (p.dot >= 2 && p.dot <= 255) || (p.dot >= 322 && p.dot <= 337):
		switch p.dot % 8 {
		case 1:
			p.scratchAddress = p.nametableAddress()
			p.reloadShifters()
		case 2:
			p.nametableEntry = p.memory.Read(p.scratchAddress)
		case 3:
			p.scratchAddress = p.attributeAddress()
		case 4:
			p.attributeEntry = p.memory.Read(p.scratchAddress)
			if p.coarseY()&2 != 0 {
				p.attributeEntry >>= 4
			}
			if p.coarseX()&2 != 0 {
				p.attributeEntry >>= 2
			}
		case 5:
			p.scratchAddress = p.backgroundTableBase() + uint16(p.nametableEntry)*16 + p.fineY()
		case 6:
			p.bgLatchLow = p.memory.Read(p.scratchAddress)
		case 7:
			p.scratchAddress += 8
		case 0:
			p.bgLatchHigh = p.memory.Read(p.scratchAddress)
			p.incrementX()
		}

	case p.dot == 256:
		p.bgLatchHigh = p.memory.Read(p.scratchAddress)
		p.incrementY()

	case p.dot == 257:
		p.reloadShifters()
		p.copyX()

	case p.dot >= 280 && p.dot <= 304:
		if pre {
			p.copyY()
		}

	case p.dot == 1:
		p.scratchAddress = p.nametableAddress()

	case p.dot == 321 || p.dot == 339:
		p.scratchAddress = p.nametableAddress()

	case p.dot == 338:
		p.nametableEntry = p.memory.Read(p.scratchAddress)

	case p.dot == 340:
		p.nametableEntry = p.memory.Read(p.scratchAddress)
		// Odd frames drop one pre-render dot while rendering
		if pre && p.oddFrame {
			p.dot++
		}
	}
}

// reloadShifters moves the fetched tile into the low byte of the pattern
// shifters and reloads the attribute latches.
func (p *PPU) reloadShifters() {
	p.bgShiftLow = p.bgShiftLow&0xFF00 | uint16(p.bgLatchLow)
	p.bgShiftHigh = p.bgShiftHigh&0xFF00 | uint16(p.bgLatchHigh)
	p.attrLatchLow = p.attributeEntry & 1
	p.attrLatchHigh = p.attributeEntry >> 1 & 1
}

// shift clocks the background shifters one bit
func (p *PPU) shift() {
	p.bgShiftLow <<= 1
	p.bgShiftHigh <<= 1
	p.attrShiftLow = p.attrShiftLow<<1 | p.attrLatchLow
	p.attrShiftHigh = p.attrShiftHigh<<1 | p.attrLatchHigh
}

// Pixel pipeline

// tickPixel composes and emits one pixel, then shifts
func (p *PPU) tickPixel() {
	if (p.dot >= 2 && p.dot <= 257) || (p.dot >= 322 && p.dot <= 337) {
		x := p.dot - 2
		if p.scanline >= 0 && x < 256 {
			p.renderPixel(x, p.scanline)
		}
		p.shift()
	}
}

// renderPixel combines background and sprite candidates for pixel (x, y)
// and writes the final color to the frame buffer.
func (p *PPU) renderPixel(x, y int) {
	bg := p.backgroundPixel(x)
	spr, behind, zeroCandidate := p.spritePixel(x)

	if zeroCandidate && bg != 0 {
		p.sprite0Hit = true
	}

	first, second := spr, bg
	if behind {
		first, second = bg, spr
	}
	color := first
	if first == 0 {
		color = second
	}

	p.setPixel(x, y, color)
}

// backgroundPixel returns the 4-bit background palette index at x, or 0
// when the background is hidden there.
func (p *PPU) backgroundPixel(x int) uint8 {
	if !p.showBackgroundAt(x) {
		return 0
	}

	shift := 15 - uint16(p.x)
	pixel := uint8(p.bgShiftHigh>>shift&1)<<1 | uint8(p.bgShiftLow>>shift&1)
	if pixel == 0 {
		return 0
	}

	attrShift := 7 - p.x
	attr := (p.attrShiftHigh>>attrShift&1)<<1 | p.attrShiftLow>>attrShift&1
	return attr<<2 | pixel
}

// spritePixel returns the winning sprite's palette index (offset into the
// sprite half of the palette), its priority bit, and whether this pixel is
// a sprite-0 hit candidate. Lower OAM indexes win ties, so the loaded
// sprites are scanned back to front.
func (p *PPU) spritePixel(x int) (color uint8, behind, zeroCandidate bool) {
	if !p.showSpritesAt(x) {
		return 0, false, false
	}

	for i := p.spriteLen - 1; i >= 0; i-- {
		s := &p.sprites[i]
		pixel := s.colorIndex(x)
		if pixel == 0 {
			continue
		}
		if s.index == 0 && x != 255 {
			zeroCandidate = true
		}
		color = 0x10 | (s.attr&0x03)<<2 | pixel
		behind = s.attr&0x20 != 0
	}

	return color, behind, zeroCandidate
}

// setPixel resolves the palette entry to RGB, applying grayscale and
// emphasis, and stores it.
func (p *PPU) setPixel(x, y int, colorIndex uint8) {
	offset := uint16(colorIndex)
	if !p.renderingEnabled() {
		offset = 0
	}

	paletteEntry := p.memory.ReadPalette(0x3F00+offset) & 0x3F
	if p.grayscale() {
		paletteEntry &= 0x30
	}

	p.frameBuffer[y*256+x] = emphasizedColor(paletteEntry, p.emphasis())
}

// Sprite pipeline

// tickSprites drives evaluation and loading at their documented dots
func (p *PPU) tickSprites(pre bool) {
	if p.dot == 1 {
		p.secondaryLen = 0
		if pre {
			p.spriteOverflow = false
			p.sprite0Hit = false
		}
		return
	}

	if !p.renderingEnabled() {
		return
	}

	switch p.dot {
	case 257:
		p.evaluateSprites()
	case 321:
		p.loadSprites()
	}
}

// evaluateSprites scans primary OAM for sprites intersecting the next
// scanline, copying up to 8 into secondary OAM and flagging overflow on
// the ninth.
func (p *PPU) evaluateSprites() {
	p.secondaryLen = 0
	height := p.spriteHeight()

	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4])
		// OAM Y values are offset by one line
		if p.scanline < y || p.scanline >= y+height {
			continue
		}
		if p.secondaryLen == 8 {
			p.spriteOverflow = true
			break
		}
		p.secondary[p.secondaryLen] = sprite{
			y:     p.oam[i*4],
			tile:  p.oam[i*4+1],
			attr:  p.oam[i*4+2],
			x:     p.oam[i*4+3],
			index: uint8(i),
		}
		p.secondaryLen++
	}
}

// loadSprites fetches pattern data for the selected sprites. These reads
// go through PPU memory, so mapper 4 sees the A12 transitions.
func (p *PPU) loadSprites() {
	for i := 0; i < p.secondaryLen; i++ {
		s := p.secondary[i]
		address := p.spriteTileAddress(&s)
		s.dataLow = p.memory.Read(address)
		s.dataHigh = p.memory.Read(address + 8)
		p.sprites[i] = s
	}
	p.spriteLen = p.secondaryLen
}

// spriteTileAddress resolves the pattern address for the sprite's slice on
// the current scanline, handling 8x16 tiles and vertical flip.
func (p *PPU) spriteTileAddress(s *sprite) uint16 {
	height := p.spriteHeight()

	var base uint16
	if height == 16 {
		base = uint16(s.tile&1)*0x1000 + uint16(s.tile&0xFE)*16
	} else {
		base = p.spriteTableBase() + uint16(s.tile)*16
	}

	row := uint16(p.scanline-int(s.y)) % uint16(height)
	if s.attr&0x80 != 0 {
		row = uint16(height) - 1 - row
	}
	if row >= 8 {
		row += 8
	}

	return base + row
}

// colorIndex returns the sprite's 2-bit pattern value at screen x, with
// horizontal flip applied; 0 outside the sprite.
func (s *sprite) colorIndex(x int) uint8 {
	dx := x - int(s.x)
	if dx < 0 || dx >= 8 {
		return 0
	}
	if s.attr&0x40 != 0 {
		dx = 7 - dx
	}
	shift := uint8(7 - dx)
	return (s.dataHigh>>shift&1)<<1 | s.dataLow>>shift&1
}

// Accessors used by the bus and tests

// GetFrameBuffer returns the current frame buffer
func (p *PPU) GetFrameBuffer() [256 * 240]uint32 {
	return p.frameBuffer
}

// GetFrameCount returns the number of completed frames
func (p *PPU) GetFrameCount() uint64 {
	return p.frameCount
}

// GetScanline returns the current scanline
func (p *PPU) GetScanline() int {
	return p.scanline
}

// GetDot returns the current dot within the scanline
func (p *PPU) GetDot() int {
	return p.dot
}

// GetCycleCount returns the total number of dots ticked
func (p *PPU) GetCycleCount() uint64 {
	return p.cycleCount
}

// IsRenderingEnabled reports whether background or sprite rendering is on
func (p *PPU) IsRenderingEnabled() bool {
	return p.renderingEnabled()
}

// InVBlank reports the VBL status flag
func (p *PPU) InVBlank() bool {
	return p.vblank
}
