// Package buf contains little-endian word access at byte offsets and checked
// size arithmetic. Allocators use it to read and write the record headers
// they keep inside the memory they manage.
package buf

import "encoding/binary"

// U32 reads the little-endian uint32 at b[off:].
func U32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

// PutU32 writes v as a little-endian uint32 at b[off:].
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

// U64 reads the little-endian uint64 at b[off:].
func U64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off:])
}

// PutU64 writes v as a little-endian uint64 at b[off:].
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}
