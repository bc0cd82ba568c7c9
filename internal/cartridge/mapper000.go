package cartridge

// Mapper000 implements NROM (mapper 0)
// NROM is the simplest mapper with no bank switching capabilities.
// It supports:
// - 16KB or 32KB PRG ROM (16KB is mirrored to fill the 32KB address space)
// - 8KB CHR ROM or CHR RAM
// - 8KB PRG RAM (SRAM) at $6000-$7FFF (optionally battery-backed)
type Mapper000 struct {
	cart *Cartridge
}

// NewMapper000 creates a new NROM mapper
func NewMapper000(cart *Cartridge) *Mapper000 {
	return &Mapper000{cart: cart}
}

// ReadPRG reads from PRG ROM/RAM
func (m *Mapper000) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0xC000:
		return m.cart.prgROM.read(-1, pageSize16K, address-0xC000)
	case address >= 0x8000:
		return m.cart.prgROM.read(0, pageSize16K, address-0x8000)
	case address >= 0x6000:
		return m.cart.readSRAM(address - 0x6000)
	default:
		return 0
	}
}

// WritePRG writes to PRG RAM; writes into the ROM window are ignored
func (m *Mapper000) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		m.cart.writeSRAM(address-0x6000, value)
	}
}

// ReadCHR reads from CHR ROM/RAM
func (m *Mapper000) ReadCHR(address uint16) uint8 {
	return m.cart.chr.read(0, pageSize8K, address)
}

// WriteCHR writes to CHR RAM; CHR ROM writes are ignored
func (m *Mapper000) WriteCHR(address uint16, value uint8) {
	m.cart.writeCHRRAM(0, pageSize8K, address, value)
}

// Mirroring returns the mirroring mode fixed by the header
func (m *Mapper000) Mirroring() MirrorMode {
	return m.cart.header.Mirror
}
