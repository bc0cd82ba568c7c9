package cartridge

// Mapper002 implements UxROM (mapper 2)
// A single register selects the 16KB PRG bank at $8000; $C000 is fixed to
// the last bank. CHR is 8KB RAM on these boards.
type Mapper002 struct {
	cart *Cartridge
	prg  int
}

// NewMapper002 creates a new UxROM mapper
func NewMapper002(cart *Cartridge) *Mapper002 {
	return &Mapper002{cart: cart}
}

// ReadPRG reads from PRG ROM/RAM
func (m *Mapper002) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0xC000:
		return m.cart.prgROM.read(-1, pageSize16K, address-0xC000)
	case address >= 0x8000:
		return m.cart.prgROM.read(m.prg, pageSize16K, address-0x8000)
	case address >= 0x6000:
		return m.cart.readSRAM(address - 0x6000)
	default:
		return 0
	}
}

// WritePRG selects the switchable PRG bank or writes PRG RAM
func (m *Mapper002) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x8000:
		m.prg = int(value & 0x0F)
	case address >= 0x6000:
		m.cart.writeSRAM(address-0x6000, value)
	}
}

// ReadCHR reads from CHR RAM
func (m *Mapper002) ReadCHR(address uint16) uint8 {
	return m.cart.chr.read(0, pageSize8K, address)
}

// WriteCHR writes to CHR RAM
func (m *Mapper002) WriteCHR(address uint16, value uint8) {
	m.cart.writeCHRRAM(0, pageSize8K, address, value)
}

// Mirroring returns the mirroring mode fixed by the header
func (m *Mapper002) Mirroring() MirrorMode {
	return m.cart.header.Mirror
}
