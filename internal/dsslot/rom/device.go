package rom

import (
	"encoding/binary"

	"github.com/nitrocart/dsrom/internal/dsslot/byteview"
	"github.com/nitrocart/dsrom/internal/dsslot/key1"
	"github.com/nitrocart/dsrom/internal/dsslot/state"
	"github.com/nitrocart/dsrom/pkg/log"
)

// Stage is the DS-slot command interpreter's current authentication
// stage. It advances monotonically from StageInitial through StageKEY1
// to StageKEY2 as the 0x3C and 0xA0 commands are issued; Reset rewinds
// it back to StageInitial.
type Stage uint8

const (
	StageInitial Stage = iota
	StageKEY1
	StageKEY2
)

func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "Initial"
	case StageKEY1:
		return "KEY1"
	case StageKEY2:
		return "KEY2"
	default:
		return "Unknown"
	}
}

const (
	pageSize        = 0x1000
	homebrewReadLow = 0x4000
	rawCmdMask      = 0x00FFFFFFFFFFFFFF
)

// Device is a DS-slot-1 cartridge ROM device: it masks addresses into
// the underlying Contents, answers the three-stage command protocol,
// and owns the key schedule used to authenticate KEY1 commands and
// transform the secure area.
type Device struct {
	logger log.Logger

	contents Contents
	romMask  uint32
	chipID   uint32

	keyBuf *key1.Schedule // always level 2; nil if no ARM7 BIOS was supplied

	stage Stage

	pendingBIOS []byte
}

// Option configures a Device at construction time.
type Option func(*Device)

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(d *Device) { d.logger = l }
}

// WithARM7BIOS supplies the ARM7 BIOS image used to derive the KEY1 key
// schedule. Without it, Setup and KEY1-stage commands that require
// decryption fail or are unavailable.
func WithARM7BIOS(bios []byte) Option {
	return func(d *Device) { d.pendingBIOS = bios }
}

// NewDevice constructs a Device over contents for the given Model,
// applying any Options. It returns ErrInvalidSize if contents' length
// is not a supported power-of-two size for model.
func NewDevice(contents Contents, model Model, opts ...Option) (*Device, error) {
	length := int64(contents.Len())
	if !IsValidSize(length, model) {
		return nil, ErrInvalidSize
	}

	d := &Device{
		logger:   log.NewNullLogger(),
		contents: contents,
		romMask:  uint32(length - 1),
		chipID:   chipID(length),
		stage:    StageInitial,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.pendingBIOS != nil {
		sched, err := key1.NewSchedule(d.pendingBIOS, contents.GameCode())
		if err != nil {
			return nil, err
		}
		d.keyBuf = sched
		d.pendingBIOS = nil
	}

	return d, nil
}

// Contents returns the underlying Contents backing this device.
func (d *Device) Contents() Contents { return d.contents }

// ChipID returns the synthesized chip identifier for this device's
// image length.
func (d *Device) ChipID() uint32 { return d.chipID }

// Stage returns the device's current command-protocol stage.
func (d *Device) Stage() Stage { return d.stage }

// Reset returns a new Device identical to d but rewound to
// StageInitial, leaving the image, mask, chip ID and key schedule
// untouched.
func (d *Device) Reset() *Device {
	clone := *d
	clone.stage = StageInitial
	return &clone
}

// Read performs a masked, wrap-around read of length len(out) bytes
// starting at addr.
func (d *Device) Read(addr uint32, out []byte) {
	addr &= d.romMask
	romLen := d.romMask + 1
	firstLen := romLen - addr
	if uint32(len(out)) <= firstLen {
		d.contents.ReadSlice(int(addr), out)
		return
	}
	d.contents.ReadSlice(int(addr), out[:firstLen])
	i := firstLen
	for i < uint32(len(out)) {
		end := i + romLen
		if end > uint32(len(out)) {
			end = uint32(len(out))
		}
		d.contents.ReadSlice(0, out[i:end])
		i += romLen
	}
}

// Setup performs the one-time secure-area transform appropriate to
// booting this image: decrypting it for execution when directBoot is
// true, or re-encrypting a plaintext secure area back to its shipped
// form when directBoot is false (mirroring a BIOS-mediated boot, which
// expects the rom device to present the secure area in its original
// encrypted form to the BIOS's own decryption routine).
//
// It returns ErrSetupFailed only when decrypting a commercial image's
// secure area is actually required and no key schedule is available;
// a homebrew image, or one whose secure area is already in the target
// form, succeeds as a no-op regardless of whether a key schedule was
// supplied.
func (d *Device) Setup(directBoot bool) error {
	var header [HeaderSize]byte
	d.contents.ReadHeader(header[:])
	secureAreaStart := headerSecureAreaStart(header[:])
	homebrew := isHomebrew(secureAreaStart)

	if directBoot {
		d.stage = StageKEY2
		if homebrew {
			return nil
		}
		secureArea, ok := d.contents.SecureAreaMut()
		if !ok {
			return nil
		}
		if byteview.Uint64LE(secureArea, 0) == secureAreaMagic {
			return nil
		}
		if d.keyBuf == nil {
			return ErrSetupFailed
		}

		y, x := d.keyBuf.Decrypt64(byteview.Uint32LE(secureArea, 0), byteview.Uint32LE(secureArea, 4))
		byteview.PutUint32LE(secureArea, 0, y)
		byteview.PutUint32LE(secureArea, 4, x)

		level3 := d.keyBuf.Level3(key1.ModuloNormal)
		for i := 0; i < secureAreaSize; i += 8 {
			y, x = level3.Decrypt64(byteview.Uint32LE(secureArea, i), byteview.Uint32LE(secureArea, i+4))
			byteview.PutUint32LE(secureArea, i, y)
			byteview.PutUint32LE(secureArea, i+4, x)
		}
		// A correctly decrypted secure area begins with "encryObj", which
		// is replaced by the plaintext marker.
		if string(secureArea[:8]) == "encryObj" {
			byteview.PutUint64LE(secureArea, 0, secureAreaMagic)
		}
		return nil
	}

	secureArea, ok := d.contents.SecureAreaMut()
	if !ok {
		return nil
	}
	if byteview.Uint64LE(secureArea, 0) != secureAreaMagic {
		return nil
	}
	if d.keyBuf == nil {
		return nil
	}

	copy(secureArea[:8], []byte("encryObj"))
	level3 := d.keyBuf.Level3(key1.ModuloNormal)
	for i := 0; i < secureAreaSize; i += 8 {
		y, x := level3.Encrypt64(byteview.Uint32LE(secureArea, i), byteview.Uint32LE(secureArea, i+4))
		byteview.PutUint32LE(secureArea, i, y)
		byteview.PutUint32LE(secureArea, i+4, x)
	}
	y, x := d.keyBuf.Encrypt64(byteview.Uint32LE(secureArea, 0), byteview.Uint32LE(secureArea, 4))
	byteview.PutUint32LE(secureArea, 0, y)
	byteview.PutUint32LE(secureArea, 4, x)
	return nil
}

// HandleCommand dispatches an 8-byte big-endian command through the
// device's current stage, filling out (whose length must be a
// multiple of 4, at most 0x4000 bytes).
func (d *Device) HandleCommand(cmd [8]byte, out []byte) {
	switch d.stage {
	case StageInitial:
		d.handleInitial(cmd, out)
	case StageKEY1:
		d.handleKey1(cmd, out)
	default:
		d.handleKey2(cmd, out)
	}
}

func cmdRawBE(cmd [8]byte) uint64 { return binary.BigEndian.Uint64(cmd[:]) }

func (d *Device) handleInitial(cmd [8]byte, out []byte) {
	raw := cmdRawBE(cmd)
	d.logger.Debugf("dsslot/rom: initial stage raw command %016X", raw)

	switch cmd[0] {
	case 0x9F:
		if raw&rawCmdMask == 0 {
			byteview.Fill(out, 0xFF)
			return
		}
	case 0x00:
		if raw&rawCmdMask == 0 {
			for start := 0; start < len(out); start += pageSize {
				end := start + pageSize
				if end > len(out) {
					end = len(out)
				}
				d.contents.ReadSlice(0, out[start:end])
			}
			return
		}
	case 0x90:
		if raw&rawCmdMask == 0 {
			d.fillChipID(out)
			return
		}
	case 0x3C:
		d.stage = StageKEY1
		byteview.Fill(out, 0xFF)
		return
	}

	d.logger.Debugf("dsslot/rom: unrecognized initial-stage command %016X", raw)
	byteview.Fill(out, 0xFF)
}

func (d *Device) handleKey1(cmd [8]byte, out []byte) {
	if d.keyBuf == nil {
		byteview.Zero(out)
		return
	}

	y, x := d.keyBuf.Decrypt64(binary.BigEndian.Uint32(cmd[4:8]), binary.BigEndian.Uint32(cmd[0:4]))
	binary.BigEndian.PutUint32(cmd[4:8], y)
	binary.BigEndian.PutUint32(cmd[0:4], x)

	d.logger.Debugf("dsslot/rom: KEY1 stage decrypted command %016X", cmdRawBE(cmd))

	switch cmd[0] >> 4 {
	case 0x4:
		byteview.Fill(out, 0xFF)
		return
	case 0x1:
		d.fillChipID(out)
		return
	case 0x2:
		startAddr := homebrewReadLow | (int(cmd[2])&0x30)<<8
		for start := 0; start < len(out); start += pageSize {
			end := start + pageSize
			if end > len(out) {
				end = len(out)
			}
			d.contents.ReadSlice(startAddr, out[start:end])
		}
		return
	case 0xA:
		d.stage = StageKEY2
		byteview.Zero(out)
		return
	}

	d.logger.Debugf("dsslot/rom: unrecognized KEY1-stage command %016X", cmdRawBE(cmd))
	byteview.Zero(out)
}

func (d *Device) handleKey2(cmd [8]byte, out []byte) {
	d.logger.Debugf("dsslot/rom: KEY2 stage command %016X", cmdRawBE(cmd))

	switch cmd[0] {
	case 0xB7:
		addr := binary.BigEndian.Uint32(cmd[1:5]) & d.romMask
		if addr < 0x8000 {
			addr = homebrewReadLow | addr&0x1FF
		}
		pageStart := addr &^ 0xFFF
		pageEnd := pageStart + pageSize
		start := 0
		for start < len(out) {
			n := pageEnd - addr
			if remaining := uint32(len(out) - start); n > remaining {
				n = remaining
			}
			d.contents.ReadSlice(int(addr), out[start:start+int(n)])
			addr = pageStart
			start += int(n)
		}
		return
	case 0xB8:
		if cmdRawBE(cmd)&rawCmdMask == 0 {
			d.fillChipID(out)
			return
		}
	}

	d.logger.Debugf("dsslot/rom: unrecognized KEY2-stage command %016X", cmdRawBE(cmd))
	byteview.Zero(out)
}

func (d *Device) fillChipID(out []byte) {
	for i := 0; i+4 <= len(out); i += 4 {
		byteview.PutUint32LE(out, i, d.chipID)
	}
}

// Save writes the device's persisted state: only the current Stage
// survives a save, since the image, mask, chip ID and key schedule are
// all reconstructed from the cartridge file on load.
func (d *Device) Save(s *state.State) {
	s.Write8(byte(d.stage))
}

// Load restores the device's persisted state saved by Save.
func (d *Device) Load(s *state.State) {
	d.stage = Stage(s.Read8())
}
