package rom

import (
	"os"
	"testing"
)

func synthesizeImage(rawLen int) []byte {
	img := make([]byte, rawLen)
	for i := range img {
		img[i] = byte(i)
	}
	// game code at 0x0C
	img[0x0C], img[0x0D], img[0x0E], img[0x0F] = 'A', 'B', 'C', 'D'
	// secure area start at 0x20, a commercial (non-homebrew) offset
	img[0x20], img[0x21], img[0x22], img[0x23] = 0x00, 0x40, 0x00, 0x00 // 0x4000 LE
	return img
}

func TestMemoryContentsHeaderAndGameCode(t *testing.T) {
	img := synthesizeImage(0x10000)
	m := NewMemoryContents(img)

	if m.Len() != 0x10000 {
		t.Fatalf("Len() = %d, want 0x10000", m.Len())
	}
	wantGameCode := headerGameCode(img)
	if m.GameCode() != wantGameCode {
		t.Fatalf("GameCode() = %08X, want %08X", m.GameCode(), wantGameCode)
	}

	var header [HeaderSize]byte
	m.ReadHeader(header[:])
	for i := range header {
		if header[i] != img[i] {
			t.Fatalf("ReadHeader byte %d = %02X, want %02X", i, header[i], img[i])
		}
	}
}

func TestMemoryContentsZeroPadsPastImage(t *testing.T) {
	img := synthesizeImage(100) // pads to 128
	m := NewMemoryContents(img)
	if m.Len() != 128 {
		t.Fatalf("Len() = %d, want 128", m.Len())
	}

	out := make([]byte, 32)
	m.ReadSlice(96, out)
	for i, b := range out {
		if i < 4 {
			if b != byte(96+i) {
				t.Fatalf("byte %d = %02X, want raw image byte", i, b)
			}
		} else if b != 0 {
			t.Fatalf("byte %d = %02X, want 0 (past raw length)", i, b)
		}
	}
}

func TestMemoryContentsSecureAreaOverlay(t *testing.T) {
	img := synthesizeImage(0x10000)
	m := NewMemoryContents(img)

	area, ok := m.SecureAreaMut()
	if !ok {
		t.Fatal("SecureAreaMut() returned ok=false")
	}
	if len(area) != secureAreaSize {
		t.Fatalf("secure area length = %d, want %d", len(area), secureAreaSize)
	}
	for i := range area {
		area[i] = 0x42
	}

	out := make([]byte, 16)
	m.ReadSlice(m.secureAreaStart, out)
	for _, b := range out {
		if b != 0x42 {
			t.Fatalf("overlay not composited into ReadSlice: got %X", out)
		}
	}

	// A second call must return the same backing slice, not re-read.
	area2, ok := m.SecureAreaMut()
	if !ok || &area2[0] != &area[0] {
		t.Fatal("SecureAreaMut() did not return the cached overlay on second call")
	}
}

func TestMemoryContentsDLDIOverlay(t *testing.T) {
	img := synthesizeImage(0x10000)
	m := NewMemoryContents(img)

	area, ok := m.DLDIAreaMut(0x8000, 0x200)
	if !ok {
		t.Fatal("DLDIAreaMut() returned ok=false")
	}
	for i := range area {
		area[i] = 0x99
	}

	out := make([]byte, 0x200)
	m.ReadSlice(0x8000, out)
	for _, b := range out {
		if b != 0x99 {
			t.Fatalf("DLDI overlay not composited: got first byte %X", out[0])
		}
	}
}

func TestFileContentsMatchesMemoryContents(t *testing.T) {
	img := synthesizeImage(0x10000)

	tmp, err := os.CreateTemp(t.TempDir(), "rom-*.nds")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := tmp.Write(img); err != nil {
		t.Fatalf("write temp rom: %v", err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}

	fc, err := NewFileContents(tmp)
	if err != nil {
		t.Fatalf("NewFileContents: %v", err)
	}
	defer fc.Close()

	m := NewMemoryContents(img)

	if fc.Len() != m.Len() {
		t.Fatalf("Len() mismatch: file=%d memory=%d", fc.Len(), m.Len())
	}
	if fc.GameCode() != m.GameCode() {
		t.Fatalf("GameCode() mismatch: file=%08X memory=%08X", fc.GameCode(), m.GameCode())
	}

	fOut, mOut := make([]byte, 256), make([]byte, 256)
	fc.ReadSlice(0x1000, fOut)
	m.ReadSlice(0x1000, mOut)
	for i := range fOut {
		if fOut[i] != mOut[i] {
			t.Fatalf("ReadSlice mismatch at %d: file=%02X memory=%02X", i, fOut[i], mOut[i])
		}
	}
}

func TestFileContentsSecureAreaOverlay(t *testing.T) {
	img := synthesizeImage(0x10000)

	tmp, err := os.CreateTemp(t.TempDir(), "rom-*.nds")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := tmp.Write(img); err != nil {
		t.Fatalf("write temp rom: %v", err)
	}

	fc, err := NewFileContents(tmp)
	if err != nil {
		t.Fatalf("NewFileContents: %v", err)
	}
	defer fc.Close()

	area, ok := fc.SecureAreaMut()
	if !ok {
		t.Fatal("SecureAreaMut() returned ok=false")
	}
	if len(area) != secureAreaSize {
		t.Fatalf("secure area length = %d, want %d", len(area), secureAreaSize)
	}
	for i := range area {
		area[i] = 0x55
	}

	out := make([]byte, 16)
	fc.ReadSlice(fc.secureAreaStart, out)
	for _, b := range out {
		if b != 0x55 {
			t.Fatalf("overlay not composited into file ReadSlice: got %X", out)
		}
	}
}

func TestFileContentsOverlayPastEOFUnavailable(t *testing.T) {
	img := synthesizeImage(0x1000) // shorter than the DLDI window we'll request

	tmp, err := os.CreateTemp(t.TempDir(), "rom-*.nds")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := tmp.Write(img); err != nil {
		t.Fatalf("write temp rom: %v", err)
	}

	fc, err := NewFileContents(tmp)
	if err != nil {
		t.Fatalf("NewFileContents: %v", err)
	}
	defer fc.Close()

	if _, ok := fc.DLDIAreaMut(0x800, 0x1000); ok {
		t.Fatal("DLDIAreaMut() should fail when the window runs past EOF")
	}
	// A failed materialization must not be retried.
	if _, ok := fc.DLDIAreaMut(0x800, 0x1000); ok {
		t.Fatal("DLDIAreaMut() unexpectedly succeeded on retry")
	}
}
