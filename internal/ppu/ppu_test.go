package ppu

import (
	"testing"

	"nesgo/internal/cartridge"
	"nesgo/internal/memory"
)

// newTestPPU wires a PPU to PPU memory over a CHR-RAM test cartridge
func newTestPPU(t *testing.T) (*PPU, *memory.PPUMemory) {
	t.Helper()

	cart, err := cartridge.LoadFromBytes(cartridge.BuildTestROM(cartridge.TestROMOptions{}))
	if err != nil {
		t.Fatalf("failed to build test cartridge: %v", err)
	}

	pm := memory.NewPPUMemory(cart)
	p := New()
	p.SetMemory(pm)
	return p, pm
}

// stepTo runs the PPU until it is about to process the given position
func stepTo(p *PPU, scanline, dot int) {
	for p.scanline != scanline || p.dot != dot {
		p.Step()
	}
}

func TestScrollRegisterWrites(t *testing.T) {
	p, _ := newTestPPU(t)

	p.WriteRegister(0x2005, 0b10101_010)
	if p.x != 0b010 {
		t.Errorf("fine x = %03b, want 010", p.x)
	}
	if p.t&0x1F != 0b10101 {
		t.Errorf("coarse x = %05b, want 10101", p.t&0x1F)
	}
	if !p.w {
		t.Error("w should toggle after first scroll write")
	}

	p.WriteRegister(0x2005, 0b01010_101)
	if fy := p.t >> 12 & 0x7; fy != 0b101 {
		t.Errorf("fine y = %03b, want 101", fy)
	}
	if cy := p.t >> 5 & 0x1F; cy != 0b01010 {
		t.Errorf("coarse y = %05b, want 01010", cy)
	}
	if p.w {
		t.Error("w should clear after second scroll write")
	}
}

func TestAddressRegisterWrites(t *testing.T) {
	p, _ := newTestPPU(t)

	p.WriteRegister(0x2006, 0x3F)
	if p.v == p.t {
		t.Error("v should not update until the second address write")
	}

	p.WriteRegister(0x2006, 0x10)
	if p.t != 0x3F10 || p.v != 0x3F10 {
		t.Errorf("after address writes t=%04X v=%04X, want 3F10", p.t, p.v)
	}
}

func TestControlWriteSetsNametableBits(t *testing.T) {
	p, _ := newTestPPU(t)

	p.WriteRegister(0x2000, 0x03)
	if p.t>>10&0x3 != 0x3 {
		t.Errorf("t nametable bits = %02b, want 11", p.t>>10&0x3)
	}
}

func TestStatusReadClearsVBLAndToggle(t *testing.T) {
	p, _ := newTestPPU(t)

	p.vblank = true
	p.w = true
	status := p.ReadRegister(0x2002)

	if status&0x80 == 0 {
		t.Error("status read should report VBL")
	}
	if p.vblank {
		t.Error("status read should clear VBL")
	}
	if p.w {
		t.Error("status read should clear the write toggle")
	}

	if again := p.ReadRegister(0x2002); again&0x80 != 0 {
		t.Errorf("second status read = %02X, VBL should stay clear", again)
	}
}

func TestPPUDATABufferedRead(t *testing.T) {
	p, pm := newTestPPU(t)

	pm.Write(0x2100, 0x11)
	pm.Write(0x2101, 0x22)

	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x00)

	first := p.ReadRegister(0x2007)  // stale buffer
	second := p.ReadRegister(0x2007) // $2100
	third := p.ReadRegister(0x2007)  // $2101

	if second != 0x11 || third != 0x22 {
		t.Errorf("buffered reads = %02X %02X %02X, want xx 11 22", first, second, third)
	}
}

func TestPPUDATAPaletteReadIsImmediate(t *testing.T) {
	p, pm := newTestPPU(t)

	pm.Write(0x3F01, 0x2A)
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x01)

	if got := p.ReadRegister(0x2007) & 0x3F; got != 0x2A {
		t.Errorf("palette read = %02X, want 2A", got)
	}
}

func TestPPUDATAIncrement(t *testing.T) {
	p, _ := newTestPPU(t)

	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x01)
	if p.v != 0x2001 {
		t.Errorf("v after +1 write = %04X, want 2001", p.v)
	}

	p.WriteRegister(0x2000, 0x04) // 32-byte increment
	p.WriteRegister(0x2007, 0x02)
	if p.v != 0x2021 {
		t.Errorf("v after +32 write = %04X, want 2021", p.v)
	}
}

func TestOAMDataReadWrite(t *testing.T) {
	p, _ := newTestPPU(t)

	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAB)
	if p.oam[0x10] != 0xAB || p.oamAddr != 0x11 {
		t.Errorf("OAM write: oam[10]=%02X addr=%02X", p.oam[0x10], p.oamAddr)
	}

	p.WriteRegister(0x2003, 0x10)
	if got := p.ReadRegister(0x2004); got != 0xAB {
		t.Errorf("OAM read = %02X, want AB", got)
	}
	if p.oamAddr != 0x10 {
		t.Error("OAM read should not advance OAMADDR")
	}

	// Attribute bytes mask their unimplemented bits
	p.WriteRegister(0x2003, 0x12)
	p.WriteRegister(0x2004, 0xFF)
	p.WriteRegister(0x2003, 0x12)
	if got := p.ReadRegister(0x2004); got != 0xE3 {
		t.Errorf("attribute read = %02X, want E3", got)
	}
}

func TestVBLTimingAndNMI(t *testing.T) {
	p, _ := newTestPPU(t)

	nmis := 0
	p.SetNMICallback(func() { nmis++ })
	p.WriteRegister(0x2000, 0x80)

	stepTo(p, vblankStartLine, 1)
	if p.vblank {
		t.Fatal("VBL set before scanline 241 dot 1")
	}

	p.Step() // processes (241,1)
	if !p.vblank {
		t.Fatal("VBL not set at scanline 241 dot 1")
	}
	if nmis != 1 {
		t.Fatalf("NMI count = %d, want 1", nmis)
	}

	// VBL clears on the pre-render line
	stepTo(p, preRenderLine, 1)
	p.Step()
	if p.vblank {
		t.Error("VBL not cleared on the pre-render line")
	}
}

func TestNMIDisabledProducesNoNMI(t *testing.T) {
	p, _ := newTestPPU(t)

	nmis := 0
	p.SetNMICallback(func() { nmis++ })

	stepTo(p, vblankStartLine, 1)
	p.Step()
	if nmis != 0 {
		t.Errorf("NMI fired with NMI disabled")
	}
}

func TestEnablingNMIDuringVBLFiresImmediately(t *testing.T) {
	p, _ := newTestPPU(t)

	nmis := 0
	p.SetNMICallback(func() { nmis++ })

	stepTo(p, vblankStartLine, 1)
	p.Step()
	if nmis != 0 {
		t.Fatal("unexpected NMI")
	}

	p.WriteRegister(0x2000, 0x80)
	p.Step()
	if nmis != 1 {
		t.Errorf("enabling NMI mid-VBL should raise one, got %d", nmis)
	}
}

func TestVBLReadRace(t *testing.T) {
	p, _ := newTestPPU(t)

	nmis := 0
	p.SetNMICallback(func() { nmis++ })
	p.WriteRegister(0x2000, 0x80)

	stepTo(p, vblankStartLine, 1)

	// Reading PPUSTATUS on the VBL-set dot suppresses the flag
	status := p.ReadRegister(0x2002)
	if status&0x80 != 0 {
		t.Error("status read before the set dot should report VBL clear")
	}

	p.Step()
	if p.vblank {
		t.Error("VBL should be suppressed by the racing read")
	}
	if nmis != 0 {
		t.Error("NMI should be suppressed by the racing read")
	}
}

func TestFrameDotCounts(t *testing.T) {
	p, _ := newTestPPU(t)

	frames := 0
	p.SetFrameCompleteCallback(func() { frames++ })

	countFrame := func() int {
		start := frames
		dots := 0
		for frames == start {
			p.Step()
			dots++
		}
		return dots
	}

	// Prime to the first frame boundary
	countFrame()

	// Rendering disabled: every frame is 262*341 dots
	a, b := countFrame(), countFrame()
	if a != 89342 || b != 89342 {
		t.Errorf("idle frames = %d, %d dots, want 89342", a, b)
	}

	// Rendering enabled: odd frames drop one dot
	p.WriteRegister(0x2001, 0x08)
	counts := map[int]int{}
	for i := 0; i < 4; i++ {
		counts[countFrame()]++
	}
	if counts[89342] != 2 || counts[89341] != 2 {
		t.Errorf("rendering frame dot counts = %v, want two each of 89342/89341", counts)
	}
}

func TestSpriteOverflow(t *testing.T) {
	p, _ := newTestPPU(t)

	// Nine sprites on scanline 41 (OAM Y = 40)
	for i := 0; i < 9; i++ {
		p.oam[i*4] = 40
		p.oam[i*4+3] = uint8(i * 16)
	}
	p.WriteRegister(0x2001, 0x18)

	stepTo(p, 40, 258) // evaluation for line 41 ran at dot 257
	if !p.spriteOverflow {
		t.Error("sprite overflow not set with 9 sprites on a scanline")
	}
	if p.secondaryLen != 8 {
		t.Errorf("secondary OAM holds %d sprites, want 8", p.secondaryLen)
	}
}

func TestSpriteOverflowClearedOnPreRender(t *testing.T) {
	p, _ := newTestPPU(t)

	p.spriteOverflow = true
	p.sprite0Hit = true
	stepTo(p, preRenderLine, 1)
	p.Step()

	if p.spriteOverflow || p.sprite0Hit {
		t.Error("sprite flags not cleared on pre-render dot 1")
	}
}

func TestSprite0Hit(t *testing.T) {
	p, pm := newTestPPU(t)

	// Tile 1: solid on both planes
	for i := uint16(0); i < 16; i++ {
		pm.Write(0x0010+i, 0xFF)
	}
	// Fill the first nametable with tile 1
	for i := uint16(0); i < 0x3C0; i++ {
		pm.Write(0x2000+i, 1)
	}

	// Sprite 0: tile 1 at (20, drawn on scanlines 41-48)
	p.oam[0] = 40
	p.oam[1] = 1
	p.oam[2] = 0
	p.oam[3] = 20

	p.WriteRegister(0x2001, 0x1E) // show bg+sprites, no left clip

	stepTo(p, 60, 0)
	if !p.sprite0Hit {
		t.Error("sprite 0 hit not detected")
	}

	// The flag reads back through PPUSTATUS bit 6
	if p.ReadRegister(0x2002)&0x40 == 0 {
		t.Error("sprite 0 hit not visible in PPUSTATUS")
	}
}

func TestSprite0HitRequiresBothPipelines(t *testing.T) {
	p, pm := newTestPPU(t)

	for i := uint16(0); i < 16; i++ {
		pm.Write(0x0010+i, 0xFF)
	}
	for i := uint16(0); i < 0x3C0; i++ {
		pm.Write(0x2000+i, 1)
	}
	p.oam[0] = 40
	p.oam[1] = 1
	p.oam[3] = 20

	// Sprites only: no background, no hit
	p.WriteRegister(0x2001, 0x16)
	stepTo(p, 60, 0)
	if p.sprite0Hit {
		t.Error("sprite 0 hit set without background rendering")
	}
}

func TestGrayscaleMask(t *testing.T) {
	p, _ := newTestPPU(t)

	p.WriteRegister(0x2001, 0x01)
	if !p.grayscale() {
		t.Error("grayscale bit not decoded")
	}
}
