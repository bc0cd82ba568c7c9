package cartridge

// TestROMOptions configures BuildTestROM. The zero value produces a 16KB
// NROM image with CHR RAM and horizontal mirroring.
type TestROMOptions struct {
	PRGBanks   uint8
	CHRBanks   uint8
	MapperID   uint8
	Vertical   bool
	Battery    bool
	ResetAddr  uint16
	Program    []uint8
	PRGFill    uint8
	CHRPattern bool // fill CHR with its own low address byte
}

// BuildTestROM synthesizes an iNES image for tests. The program, if any, is
// placed at ResetAddr (default $8000) and the reset vector points at it.
func BuildTestROM(opts TestROMOptions) []uint8 {
	if opts.PRGBanks == 0 {
		opts.PRGBanks = 1
	}
	if opts.ResetAddr == 0 {
		opts.ResetAddr = 0x8000
	}

	header := Header{
		PRGBanks:   opts.PRGBanks,
		CHRBanks:   opts.CHRBanks,
		MapperID:   opts.MapperID,
		HasBattery: opts.Battery,
	}
	if opts.Vertical {
		header.Mirror = MirrorVertical
	}
	raw := header.Bytes()

	prgSize := int(opts.PRGBanks) * 0x4000
	prg := make([]uint8, prgSize)
	for i := range prg {
		prg[i] = opts.PRGFill
	}
	copy(prg[int(opts.ResetAddr)&(prgSize-1):], opts.Program)

	// Reset vector lives in the last 16KB bank, which all supported
	// mappers fix at $C000-$FFFF on power-up.
	prg[prgSize-4] = uint8(opts.ResetAddr & 0xFF)
	prg[prgSize-3] = uint8(opts.ResetAddr >> 8)

	image := append(raw[:], prg...)

	chrSize := int(opts.CHRBanks) * 0x2000
	if chrSize > 0 {
		chr := make([]uint8, chrSize)
		if opts.CHRPattern {
			for i := range chr {
				chr[i] = uint8(i)
			}
		}
		image = append(image, chr...)
	}

	return image
}
