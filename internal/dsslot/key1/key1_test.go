package key1

import (
	"encoding/binary"
	"testing"
)

// fakeBIOS synthesizes a deterministic byte buffer large enough to seed a
// key table, standing in for an ARM7 BIOS image in tests.
func fakeBIOS() []byte {
	b := make([]byte, biosSeedOffset+bufWords*4)
	for i := range b {
		b[i] = byte(i*167 + 13)
	}
	return b
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s, err := NewSchedule(fakeBIOS(), 0x41424344)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}

	cases := [][2]uint32{
		{0, 0},
		{1, 2},
		{0xFFFFFFFF, 0x12345678},
		{0xDEADBEEF, 0xCAFEBABE},
		{0x00000001, 0x80000000},
	}

	for _, schedule := range []*Schedule{s, s.Level3(ModuloNormal)} {
		for _, c := range cases {
			y, x := c[0], c[1]
			ey, ex := schedule.Encrypt64(y, x)
			dy, dx := schedule.Decrypt64(ey, ex)
			if dy != y || dx != x {
				t.Errorf("decrypt(encrypt(%#x, %#x))) = (%#x, %#x), want original", y, x, dy, dx)
			}

			// and the other direction
			dy2, dx2 := schedule.Decrypt64(y, x)
			ey2, ex2 := schedule.Encrypt64(dy2, dx2)
			if ey2 != y || ex2 != x {
				t.Errorf("encrypt(decrypt(%#x, %#x))) = (%#x, %#x), want original", y, x, ey2, ex2)
			}
		}
	}
}

func TestScheduleDeterminism(t *testing.T) {
	bios := fakeBIOS()
	s1, err := NewSchedule(bios, 0x41424344)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	s2, err := NewSchedule(bios, 0x41424344)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	if *s1 != *s2 {
		t.Fatalf("two schedules built from identical BIOS bytes and game code were not bitwise equal")
	}
}

func TestLevel3RetainsLevel2Unchanged(t *testing.T) {
	s, err := NewSchedule(fakeBIOS(), 0x41424344)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	before := *s
	_ = s.Level3(ModuloNormal)
	if *s != before {
		t.Fatalf("Level3 mutated the level-2 schedule it was derived from")
	}
}

// TestKeyCodeMutationBetweenSchedulePasses grounds scenario S1: building
// the key table applies the schedule step twice, and the key code must
// have mutated between the two passes, so encrypting the same state
// after each pass yields different ciphertexts.
func TestKeyCodeMutationBetweenSchedulePasses(t *testing.T) {
	bios := fakeBIOS()
	idCode := uint32(0x41424344)

	s := &Schedule{keyCode: [3]uint32{idCode, idCode >> 1, idCode << 1}}
	for i := range s.buf {
		s.buf[i] = binary.LittleEndian.Uint32(bios[biosSeedOffset+i*4:])
	}

	s.applyKeyCode(ModuloNormal)
	y1, x1 := s.Encrypt64(0, 0)

	s.applyKeyCode(ModuloNormal)
	y2, x2 := s.Encrypt64(0, 0)

	if y1 == y2 && x1 == x2 {
		t.Fatalf("expected ciphertext of (0,0) to differ between schedule passes, got identical (%#x, %#x)", y1, x1)
	}
}

func TestNewScheduleRejectsShortBIOS(t *testing.T) {
	if _, err := NewSchedule(make([]byte, 16), 0); err == nil {
		t.Fatalf("expected error for a too-short BIOS image")
	}
}
