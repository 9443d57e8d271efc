// Package byteview provides fixed-width integer read/write helpers over
// byte ranges, parameterized by endianness, plus a zero-fill helper. All
// accesses are bounds-checked by the caller; writes are non-atomic.
package byteview

import "encoding/binary"

// Uint16LE reads a little-endian 16-bit value at offset.
func Uint16LE(b []byte, offset int) uint16 { return binary.LittleEndian.Uint16(b[offset:]) }

// Uint32LE reads a little-endian 32-bit value at offset.
func Uint32LE(b []byte, offset int) uint32 { return binary.LittleEndian.Uint32(b[offset:]) }

// Uint64LE reads a little-endian 64-bit value at offset.
func Uint64LE(b []byte, offset int) uint64 { return binary.LittleEndian.Uint64(b[offset:]) }

// PutUint16LE writes a little-endian 16-bit value at offset.
func PutUint16LE(b []byte, offset int, v uint16) { binary.LittleEndian.PutUint16(b[offset:], v) }

// PutUint32LE writes a little-endian 32-bit value at offset.
func PutUint32LE(b []byte, offset int, v uint32) { binary.LittleEndian.PutUint32(b[offset:], v) }

// PutUint64LE writes a little-endian 64-bit value at offset.
func PutUint64LE(b []byte, offset int, v uint64) { binary.LittleEndian.PutUint64(b[offset:], v) }

// Uint32BE reads a big-endian 32-bit value at offset.
func Uint32BE(b []byte, offset int) uint32 { return binary.BigEndian.Uint32(b[offset:]) }

// Uint64BE reads a big-endian 64-bit value at offset.
func Uint64BE(b []byte, offset int) uint64 { return binary.BigEndian.Uint64(b[offset:]) }

// PutUint32BE writes a big-endian 32-bit value at offset.
func PutUint32BE(b []byte, offset int, v uint32) { binary.BigEndian.PutUint32(b[offset:], v) }

// Zero fills b with zero bytes.
func Zero(b []byte) {
	clear(b)
}

// Fill fills b with v.
func Fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
