package alloc

const (
	// DefaultAlign is used when a caller passes align <= 0.
	DefaultAlign = 8

	// SizeNotTracked is returned by AllocatedFor and AllocatedTotal when an
	// allocator does not keep per-allocation sizes.
	SizeNotTracked = -1
)

// Allocator is the capability set every allocator and container depends on.
//
// Implementations:
//   - Heap: Go heap or OS mappings, header-tracked sizes
//   - Scratch: ring buffer for short-lived allocations
//   - Temp64..Temp4096: inline-buffer bump allocators
//   - Checked: leak-tracking wrapper for tests
//   - pool.Allocator: fixed-size blocks organised in pages
//
// An allocation is a []byte whose length is the requested size. Its identity
// is the address of its first byte, so Deallocate and AllocatedFor must be
// passed the slice Allocate returned (or one starting at the same address).
type Allocator interface {
	// Allocate returns size bytes aligned to align, or nil when the request
	// cannot be satisfied. align must be a power of two; align <= 0 selects
	// DefaultAlign.
	Allocate(size, align int) []byte

	// Deallocate releases memory returned by Allocate. A nil slice is ignored.
	Deallocate(b []byte)

	// AllocatedFor returns the number of bytes actually backing b, or
	// SizeNotTracked.
	AllocatedFor(b []byte) int

	// AllocatedTotal returns the number of bytes currently allocated, or
	// SizeNotTracked.
	AllocatedTotal() int
}
