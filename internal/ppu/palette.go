package ppu

// nesColorPalette holds the 64-entry 2C02 master palette as packed RGB.
var nesColorPalette = [64]uint32{
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}

// ColorToRGB converts a NES palette index to packed RGB
func ColorToRGB(colorIndex uint8) uint32 {
	return nesColorPalette[colorIndex&0x3F]
}

// emphasizedColor applies the PPUMASK emphasis bits (R, G, B order) by
// attenuating the de-emphasized channels, the usual approximation of the
// 2C02's analog tinting.
func emphasizedColor(colorIndex, emphasis uint8) uint32 {
	color := nesColorPalette[colorIndex&0x3F]
	if emphasis == 0 {
		return color
	}

	r := color >> 16 & 0xFF
	g := color >> 8 & 0xFF
	b := color & 0xFF

	if emphasis&0x01 == 0 { // red not emphasized
		r = r * 3 / 4
	}
	if emphasis&0x02 == 0 { // green not emphasized
		g = g * 3 / 4
	}
	if emphasis&0x04 == 0 { // blue not emphasized
		b = b * 3 / 4
	}

	return r<<16 | g<<8 | b
}
