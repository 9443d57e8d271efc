package rom

import "github.com/nitrocart/dsrom/internal/dsslot/byteview"

const (
	// IconWidth and IconHeight are the fixed dimensions of a decoded
	// cartridge icon.
	IconWidth  = 32
	IconHeight = 32

	iconResourceSize = 0x240
	iconDataOffset   = 0x20
	iconDataSize     = 0x220
	iconTileDataSize = 0x200
)

// DecodeIcon decodes the 32x32 4bpp-tiled icon bitmap referenced by
// iconTitleOffset into linear RGBA8 pixels (LE u32, R in the low byte).
// It returns ok == false, producing no output, if the resource would run
// past the end of the image.
func DecodeIcon(iconTitleOffset uint32, c Contents) (pixels [IconWidth * IconHeight]uint32, ok bool) {
	offset := int(iconTitleOffset)
	if offset+iconResourceSize > c.Len() {
		return pixels, false
	}

	var data [iconDataSize]byte
	c.ReadSlice(offset+iconDataOffset, data[:])

	var palette [16]uint32
	for i := 1; i < 16; i++ {
		raw := byteview.Uint16LE(data[:], iconTileDataSize+i*2)
		palette[i] = expandBGR555(raw)
	}

	for srcLineBase := 0; srcLineBase < iconTileDataSize; srcLineBase += 4 {
		line := byteview.Uint32LE(data[:], srcLineBase)

		tileY := srcLineBase >> 7
		tileX := (srcLineBase >> 5) & 3
		yInTile := (srcLineBase >> 2) & 7
		dstBase := tileY<<8 | yInTile<<5 | tileX<<3

		for x := 0; x < 8; x++ {
			idx := (line >> (x * 4)) & 0xF
			pixels[dstBase|x] = palette[idx]
		}
	}
	return pixels, true
}

// DecodeIconFromHeader reads the header from c and decodes its icon, a
// convenience combining the two-step header-lookup-then-decode primitive.
func DecodeIconFromHeader(c Contents) (pixels [IconWidth * IconHeight]uint32, ok bool) {
	var header [HeaderSize]byte
	c.ReadHeader(header[:])
	return DecodeIcon(HeaderIconTitleOffset(header[:]), c)
}

// expandBGR555 expands a 5-bit-per-channel BGR555 color to RGBA8,
// packed as 0xFF<<24 | R | G<<8 | B<<16 (so the little-endian byte
// order is R, G, B, 0xFF).
func expandBGR555(raw uint16) uint32 {
	r5 := uint32(raw) & 0x1F
	g5 := uint32(raw>>5) & 0x1F
	b5 := uint32(raw>>10) & 0x1F

	r8 := r5<<3 | r5>>2
	g8 := g5<<3 | g5>>2
	b8 := b5<<3 | b5>>2

	return 0xFF<<24 | b8<<16 | g8<<8 | r8
}
