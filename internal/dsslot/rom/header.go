package rom

import "github.com/nitrocart/dsrom/internal/dsslot/byteview"

const (
	// HeaderSize is the length of the fixed cartridge header at offset 0.
	HeaderSize = 0x170

	headerGameCodeOffset        = 0x0C
	headerSecureAreaStartOffset = 0x20
	headerIconTitleOffsetOffset = 0x68

	// secureAreaSize is the fixed length of the secure-area overlay.
	secureAreaSize = 0x800

	// secureAreaMagic denotes a plaintext/blank secure area.
	secureAreaMagic uint64 = 0xE7FFDEFFE7FFDEFF

	// homebrewRangeStart and homebrewRangeEnd bound the secure-area
	// start offsets that denote a commercial image; anything outside
	// this range is homebrew.
	homebrewRangeStart = 0x4000
	homebrewRangeEnd   = 0x8000
)

func headerGameCode(h []byte) uint32 { return byteview.Uint32LE(h, headerGameCodeOffset) }

func headerSecureAreaStart(h []byte) uint32 { return byteview.Uint32LE(h, headerSecureAreaStartOffset) }

// HeaderIconTitleOffset returns the header's icon/title resource offset.
func HeaderIconTitleOffset(h []byte) uint32 { return byteview.Uint32LE(h, headerIconTitleOffsetOffset) }

func isHomebrew(secureAreaStart uint32) bool {
	return secureAreaStart < homebrewRangeStart || secureAreaStart >= homebrewRangeEnd
}

// chipID synthesizes the 32-bit cartridge identifier from the padded
// image length. The low byte is always 0xC2; the upper bytes encode a
// size class: 0 under 1 MiB, (MiB count - 1) from 1 MiB to 256 MiB, and
// 256 - (256 MiB unit count) from 256 MiB to 4 GiB.
// ChipID synthesizes the 32-bit cartridge identifier for an image of
// the given padded length, independent of any Device.
func ChipID(length int64) uint32 { return chipID(length) }

func chipID(length int64) uint32 {
	var class uint32
	switch {
	case length < 0x100000:
		class = 0
	case length < 0x10000000:
		class = uint32(length>>20) - 1
	default:
		class = 256 - uint32(length>>28)
	}
	return 0xC2 | class<<8
}
