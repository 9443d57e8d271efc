package rom

import "errors"

var (
	// ErrInvalidSize is returned at construction when the image length
	// is not a power-of-two size supported by the target Model.
	ErrInvalidSize = errors.New("dsslot/rom: image length is not a supported power-of-two size")

	// ErrSetupFailed is returned from Setup when a commercial image is
	// direct-booted without a key schedule available to decrypt it.
	ErrSetupFailed = errors.New("dsslot/rom: direct boot of a commercial image requires a key schedule")
)
