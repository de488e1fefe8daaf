package hashtable

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/cases"
)

// HashString returns the 64-bit key for s.
func HashString(s string) uint64 { return xxh3.HashString(s) }

// HashBytes returns the 64-bit key for b. It equals HashString(string(b)).
func HashBytes(b []byte) uint64 { return xxh3.Hash(b) }

// HashFold returns a key for s that is identical for all strings equal under
// Unicode case folding.
func HashFold(s string) uint64 {
	return xxh3.HashString(cases.Fold().String(s))
}

// HashUint64 scrambles v. Integer keys such as addresses share low bits;
// mixing them spreads entries over buckets.
func HashUint64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxh3.Hash(b[:])
}
