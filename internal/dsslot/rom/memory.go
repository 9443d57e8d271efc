package rom

import "github.com/nitrocart/dsrom/internal/dsslot/byteview"

// MemoryContents is an in-RAM backing implementation of Contents. The
// whole image, padded to the next power of two, lives in a single byte
// slice; reads are direct subrange copies.
type MemoryContents struct {
	image           []byte
	gameCode        uint32
	secureAreaStart int
	secureArea      overlay
	dldiArea        overlay
}

// NewMemoryContents copies rom into a power-of-two-padded buffer and
// caches the header fields MemoryContents needs.
func NewMemoryContents(rom []byte) *MemoryContents {
	image := make([]byte, nextPowerOfTwo(len(rom)))
	copy(image, rom)

	var header [HeaderSize]byte
	copy(header[:], image)

	return &MemoryContents{
		image:           image,
		gameCode:        headerGameCode(header[:]),
		secureAreaStart: int(headerSecureAreaStart(header[:])),
	}
}

func (m *MemoryContents) Len() int         { return len(m.image) }
func (m *MemoryContents) GameCode() uint32 { return m.gameCode }

func (m *MemoryContents) ReadHeader(out []byte) { m.ReadSlice(0, out) }

func (m *MemoryContents) ReadSlice(addr int, out []byte) {
	m.readRaw(addr, out)
	m.secureArea.apply(addr, out)
	m.dldiArea.apply(addr, out)
}

func (m *MemoryContents) readRaw(addr int, out []byte) {
	if addr >= len(m.image) {
		byteview.Zero(out)
		return
	}
	n := copy(out, m.image[addr:])
	if n < len(out) {
		byteview.Zero(out[n:])
	}
}

func (m *MemoryContents) SecureAreaMut() ([]byte, bool) {
	return m.secureArea.materialize(m.secureAreaStart, secureAreaSize, func(buf []byte) error {
		m.readRaw(m.secureAreaStart, buf)
		return nil
	})
}

func (m *MemoryContents) DLDIAreaMut(addr, length int) ([]byte, bool) {
	return m.dldiArea.materialize(addr, length, func(buf []byte) error {
		m.readRaw(addr, buf)
		return nil
	})
}
