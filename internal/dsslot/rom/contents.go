package rom

// Contents is the uniform, backing-store-agnostic read interface over a
// cartridge image. MemoryContents and FileContents are the two
// implementations; a Device never cares which one it was given.
type Contents interface {
	// Len returns the power-of-two-rounded image length.
	Len() int
	// GameCode returns the cached 32-bit game code from the header.
	GameCode() uint32
	// ReadHeader fills out (which must be HeaderSize bytes) with the
	// header verbatim from offset 0, compositing any materialized
	// overlays that intersect it.
	ReadHeader(out []byte)
	// ReadSlice reads len(out) bytes beginning at addr, zero-padding any
	// portion past the raw image length and compositing any
	// materialized overlays on top.
	ReadSlice(addr int, out []byte)
	// SecureAreaMut materializes the secure area on first call and
	// returns it along with true. It returns (nil, false) if
	// materialization fails (backend read error); once failed, it keeps
	// returning (nil, false) without retrying.
	SecureAreaMut() ([]byte, bool)
	// DLDIAreaMut materializes the DLDI area at [addr, addr+length) on
	// first call; subsequent calls ignore addr/length and return the
	// window established by the first call.
	DLDIAreaMut(addr, length int) ([]byte, bool)
}

// overlay tracks one of the two writable regions layered on top of a
// clean image: secure area or DLDI area. It distinguishes "not yet
// attempted", "attempted and failed", and "present" so that a failed
// materialization is never retried.
type overlay struct {
	start, length int
	data          []byte
	attempted     bool
}

// materialize returns the overlay's data, reading it via read on first
// call. read is expected to fill buf (length bytes) from the backing
// store at start; a non-nil error marks this overlay permanently
// unavailable.
func (o *overlay) materialize(start, length int, read func(buf []byte) error) ([]byte, bool) {
	if o.attempted {
		if o.data == nil {
			return nil, false
		}
		return o.data, true
	}
	o.attempted = true
	o.start, o.length = start, length

	buf := make([]byte, length)
	if err := read(buf); err != nil {
		return nil, false
	}
	o.data = buf
	return o.data, true
}

// apply composites the overlay on top of a read over [addr, addr+len(out)),
// overwriting the intersecting portion of out with overlay bytes.
func (o *overlay) apply(addr int, out []byte) {
	if o.data == nil {
		return
	}
	start, end := o.start, o.start+o.length
	readEnd := addr + len(out)
	if readEnd <= start || addr >= end {
		return
	}

	srcStart, dstStart := 0, 0
	if addr < start {
		dstStart = start - addr
	} else {
		srcStart = addr - start
	}
	n := len(out) - dstStart
	if m := o.length - srcStart; m < n {
		n = m
	}
	copy(out[dstStart:dstStart+n], o.data[srcStart:srcStart+n])
}
