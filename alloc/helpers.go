package alloc

import (
	"fmt"
	"unsafe"
)

// Addr returns the address identifying the allocation b (0 for nil).
func Addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// CheckAlign normalises align, mapping align <= 0 to DefaultAlign. ok is
// false when align is not a power of two.
func CheckAlign(align int) (int, bool) {
	if align <= 0 {
		return DefaultAlign, true
	}
	return align, align&(align-1) == 0
}

// AlignForward moves p forward to the next multiple of align.
func AlignForward(p uintptr, align int) uintptr {
	a := uintptr(align)
	if mod := p % a; mod != 0 {
		p += a - mod
	}
	return p
}

// AlignOffset returns the smallest offset >= off at which region's address is
// a multiple of align.
func AlignOffset(region []byte, off, align int) int {
	base := Addr(region)
	return int(AlignForward(base+uintptr(off), align) - base)
}

// Span returns region[off:off+size] with its capacity clipped to the
// allocation. Zero-sized allocations keep one byte of capacity so that their
// address stays well defined.
func Span(region []byte, off, size int) []byte {
	return region[off : off+size : off+max(size, 1)]
}

// New allocates size bytes from a with DefaultAlign.
func New(a Allocator, size int) []byte {
	return a.Allocate(size, DefaultAlign)
}

// DupString copies s into memory obtained from a.
func DupString(a Allocator, s string) []byte {
	b := a.Allocate(len(s), 1)
	if b == nil {
		return nil
	}
	copy(b, s)
	return b
}

// MustAllocate is used by internal bookkeeping that cannot make progress
// without memory. It panics with an error wrapping ErrOutOfMemory when a
// returns nil.
func MustAllocate(a Allocator, size, align int) []byte {
	b := a.Allocate(size, align)
	if b == nil {
		panic(fmt.Errorf("%w: %d bytes (align %d)", ErrOutOfMemory, size, align))
	}
	return b
}
