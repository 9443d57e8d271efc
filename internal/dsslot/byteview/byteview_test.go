package byteview

import "testing"

func TestLittleEndianRoundTrip(t *testing.T) {
	buf := make([]byte, 16)

	PutUint16LE(buf, 0, 0xBEEF)
	if got := Uint16LE(buf, 0); got != 0xBEEF {
		t.Fatalf("Uint16LE = %04X, want BEEF", got)
	}

	PutUint32LE(buf, 2, 0xDEADBEEF)
	if got := Uint32LE(buf, 2); got != 0xDEADBEEF {
		t.Fatalf("Uint32LE = %08X, want DEADBEEF", got)
	}

	PutUint64LE(buf, 6, 0x0123456789ABCDEF)
	if got := Uint64LE(buf, 6); got != 0x0123456789ABCDEF {
		t.Fatalf("Uint64LE = %016X, want 0123456789ABCDEF", got)
	}
}

func TestBigEndianRoundTrip(t *testing.T) {
	buf := make([]byte, 8)

	PutUint32BE(buf, 0, 0x11223344)
	if got := Uint32BE(buf, 0); got != 0x11223344 {
		t.Fatalf("Uint32BE = %08X, want 11223344", got)
	}
	if buf[0] != 0x11 || buf[3] != 0x44 {
		t.Fatalf("Uint32BE did not store big-endian: %X", buf[:4])
	}
}

func TestZeroAndFill(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	Fill(buf, 0xAA)
	for _, b := range buf {
		if b != 0xAA {
			t.Fatalf("Fill left %X", buf)
		}
	}
	Zero(buf)
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("Zero left %X", buf)
		}
	}
}
