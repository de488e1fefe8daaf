package buf

import (
	"github.com/JohnCGriffin/overflow"
)

// Add adds a and b, returning ok = false when the result would overflow int.
func Add(a, b int) (int, bool) {
	return overflow.Add(a, b)
}

// Mul multiplies a and b, returning ok = false when the result would overflow int.
// Used for count * elementSize calculations when sizing container storage.
func Mul(a, b int) (int, bool) {
	return overflow.Mul(a, b)
}

// Sum adds all of vals, returning ok = false on the first overflow or on a
// negative operand. Padded allocation requests (size + align + header) go
// through here.
func Sum(vals ...int) (int, bool) {
	total := 0
	for _, v := range vals {
		if v < 0 {
			return 0, false
		}
		var ok bool
		if total, ok = overflow.Add(total, v); !ok {
			return 0, false
		}
	}
	return total, true
}

// AlignUp rounds n up to a multiple of align, which must be a power of two.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := Add(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
