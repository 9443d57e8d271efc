package rom

import (
	"fmt"
	"io"
	"os"

	"github.com/nitrocart/dsrom/internal/dsslot/byteview"
)

// FileContents is a seekable-file-backed implementation of Contents. It
// keeps the open file handle and the handful of header-derived fields it
// needs, and materializes the secure-area / DLDI overlays lazily,
// compositing them atop the file on every read.
//
// Per the core's single-threaded, single-owner resource model, reads
// past construction are treated as infallible: the image size is
// validated at open, so a read error here indicates the backing file
// changed out from under us and is treated as fatal.
type FileContents struct {
	f               *os.File
	rawLen          int
	paddedLen       int
	gameCode        uint32
	secureAreaStart int
	secureArea      overlay
	dldiArea        overlay
}

// NewFileContents wraps an already-open file. The caller retains
// ownership of f's lifetime via Close.
func NewFileContents(f *os.File) (*FileContents, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("dsslot/rom: stat cartridge file: %w", err)
	}
	rawLen := int(info.Size())

	var header [HeaderSize]byte
	if rawLen > 0 {
		n := HeaderSize
		if rawLen < n {
			n = rawLen
		}
		if _, err := f.ReadAt(header[:n], 0); err != nil && err != io.EOF {
			return nil, fmt.Errorf("dsslot/rom: read cartridge header: %w", err)
		}
	}

	return &FileContents{
		f:               f,
		rawLen:          rawLen,
		paddedLen:       nextPowerOfTwo(rawLen),
		gameCode:        headerGameCode(header[:]),
		secureAreaStart: int(headerSecureAreaStart(header[:])),
	}, nil
}

func (fc *FileContents) Len() int         { return fc.paddedLen }
func (fc *FileContents) GameCode() uint32 { return fc.gameCode }

// Close releases the underlying file handle.
func (fc *FileContents) Close() error { return fc.f.Close() }

func (fc *FileContents) ReadHeader(out []byte) { fc.ReadSlice(0, out) }

func (fc *FileContents) ReadSlice(addr int, out []byte) {
	fc.readRaw(addr, out)
	fc.secureArea.apply(addr, out)
	fc.dldiArea.apply(addr, out)
}

func (fc *FileContents) readRaw(addr int, out []byte) {
	readLen := len(out)
	if addr >= fc.rawLen {
		readLen = 0
	} else if avail := fc.rawLen - addr; avail < readLen {
		readLen = avail
	}
	if readLen < len(out) {
		byteview.Zero(out[readLen:])
	}
	if readLen == 0 {
		return
	}
	if _, err := fc.f.ReadAt(out[:readLen], int64(addr)); err != nil && err != io.EOF {
		panic(fmt.Errorf("dsslot/rom: cartridge file read failed: %w", err))
	}
}

func (fc *FileContents) SecureAreaMut() ([]byte, bool) {
	return fc.secureArea.materialize(fc.secureAreaStart, secureAreaSize, func(buf []byte) error {
		return fc.readExact(fc.secureAreaStart, buf)
	})
}

func (fc *FileContents) DLDIAreaMut(addr, length int) ([]byte, bool) {
	return fc.dldiArea.materialize(addr, length, func(buf []byte) error {
		return fc.readExact(addr, buf)
	})
}

// readExact requires the full buffer to be filled from the backing
// file, unlike readRaw's zero-padding behavior; an overlay window that
// runs past the end of the file is treated as unavailable.
func (fc *FileContents) readExact(addr int, buf []byte) error {
	n, err := fc.f.ReadAt(buf, int64(addr))
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
