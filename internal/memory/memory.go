// Package memory implements the NES address-space fabric for the CPU and PPU.
package memory

import (
	"nesgo/internal/cartridge"
)

// PPUInterface defines the interface for PPU register access
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface defines the interface for APU register access
type APUInterface interface {
	ReadStatus() uint8
	WriteRegister(address uint16, value uint8)
}

// InputInterface defines the interface for controller port access
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface defines the interface for cartridge access
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() cartridge.MirrorMode
	TickPPUAddress(address uint16)
}

// Memory routes CPU memory accesses across internal RAM, the PPU and APU
// registers, the controller ports and the cartridge. Read and Write are
// clocked: each call advances system time by exactly one CPU cycle through
// the tick callback before the access completes, which is what keeps the
// PPU and APU in lockstep with CPU memory traffic.
type Memory struct {
	// Internal RAM (2KB, mirrored through $1FFF)
	ram [0x800]uint8

	ppu   PPUInterface
	apu   APUInterface
	input InputInterface
	cart  CartridgeInterface

	// tick advances the system clock by one CPU cycle
	tick func()

	// dmaCallback starts an OAM DMA transfer from the given page
	dmaCallback func(page uint8)

	// Last value seen on the data bus, returned for unmapped reads
	openBus uint8
}

// New creates a new Memory instance
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	m := &Memory{
		ppu:  ppu,
		apu:  apu,
		cart: cart,
		tick: func() {},
	}
	m.initRAM()
	return m
}

// SetInputSystem sets the input system for controller access
func (m *Memory) SetInputSystem(input InputInterface) {
	m.input = input
}

// SetTickFunc installs the clock callback invoked once per CPU cycle
func (m *Memory) SetTickFunc(tick func()) {
	m.tick = tick
}

// SetDMACallback sets the OAM DMA trigger
func (m *Memory) SetDMACallback(callback func(page uint8)) {
	m.dmaCallback = callback
}

// SetCartridge replaces the cartridge connection
func (m *Memory) SetCartridge(cart CartridgeInterface) {
	m.cart = cart
}

// initRAM fills RAM with the alternating power-up pattern seen on real
// units instead of flat zeros.
func (m *Memory) initRAM() {
	for i := range m.ram {
		if i&4 == 0 {
			m.ram[i] = 0x00
		} else {
			m.ram[i] = 0xFF
		}
	}
}

// Read performs a clocked read: one CPU cycle passes, then the byte moves
func (m *Memory) Read(address uint16) uint8 {
	m.tick()
	return m.ReadUnclocked(address)
}

// Write performs a clocked write: one CPU cycle passes, then the byte moves
func (m *Memory) Write(address uint16, value uint8) {
	m.tick()
	m.WriteUnclocked(address, value)
}

// Tick spends one CPU cycle with no memory traffic (internal CPU cycles,
// DMA stalls)
func (m *Memory) Tick() {
	m.tick()
}

// ReadUnclocked reads without advancing time. DMA transfers and debug
// inspection use this; the CPU never does.
func (m *Memory) ReadUnclocked(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		// PPU registers, mirrored every 8 bytes
		value = m.ppu.ReadRegister(0x2000 + address&0x0007)

	case address == 0x4015:
		value = m.apu.ReadStatus()

	case address == 0x4016 || address == 0x4017:
		if m.input != nil {
			value = m.input.Read(address)
		} else {
			value = m.openBus
		}

	case address < 0x4020:
		// Write-only APU/IO registers read back as open bus
		value = m.openBus

	default:
		// $4020-$FFFF: cartridge space
		if m.cart != nil {
			value = m.cart.ReadPRG(address)
		} else {
			value = m.openBus
		}
	}

	m.openBus = value
	return value
}

// WriteUnclocked writes without advancing time
func (m *Memory) WriteUnclocked(address uint16, value uint8) {
	m.openBus = value

	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+address&0x0007, value)

	case address == 0x4014:
		if m.dmaCallback != nil {
			m.dmaCallback(value)
		}

	case address == 0x4016:
		if m.input != nil {
			m.input.Write(address, value)
		}

	case address <= 0x4013 || address == 0x4015 || address == 0x4017:
		m.apu.WriteRegister(address, value)

	case address < 0x4020:
		// $4018-$401F test registers are ignored

	default:
		if m.cart != nil {
			m.cart.WritePRG(address, value)
		}
	}
}
