// Package alloc provides explicit allocators for code that needs control over
// memory layout instead of relying on the Go heap for every object.
//
// # Overview
//
// Every allocator implements the four-method Allocator interface:
//
//   - Allocate(size, align): return size bytes aligned to align, or nil
//   - Deallocate(b): release memory returned by Allocate
//   - AllocatedFor(b): the true number of bytes backing b
//   - AllocatedTotal(): bytes currently allocated
//
// Allocators compose: most of them hold exactly one backing allocator that
// serves requests they cannot satisfy themselves. Backing references form a
// chain that ends at a Heap and never loops.
//
// # Implementations
//
// Heap: wraps the system allocator
//
//   - Pads each request by align + 24 bytes and writes a header just before
//     the data, so the block can be recovered from the data slice alone
//   - Blocks at or above HeapOptions.MmapThreshold are mapped from the OS and
//     unmapped on Deallocate; smaller blocks live on the Go heap
//
// Scratch: ring buffer for short-lived allocations
//
//   - O(1) allocation, lazy reclamation swept by the free cursor
//   - Falls back to the backing allocator when the ring is exhausted
//   - Foreign slices passed to Deallocate are forwarded to the backing allocator
//
// Temp64 ... Temp4096: bump allocators with an inline buffer
//
//   - Overflow chunks come from the backing allocator (by default the process
//     scratch allocator), each at least twice the previous one
//   - Deallocate is a no-op; Destroy releases every overflow chunk
//
// Checked: test wrapper recording live allocations (AssertSize reports leaks).
//
// The pool sub-package adds a fixed-size block allocator.
//
// # Usage Example
//
//	if err := alloc.Init(4 << 20); err != nil {
//	    return err
//	}
//	defer alloc.Shutdown()
//
//	var tmp alloc.Temp256
//	tmp.Init(nil) // backed by alloc.DefaultScratch()
//	defer tmp.Destroy()
//
//	b := tmp.Allocate(100, 16)
//
// # Memory Model
//
// Allocations are byte slices whose length is the requested size. The
// identity of an allocation is the address of its first byte; the Go heap
// does not move objects, so the address is stable for the allocation's
// lifetime. Memory handed out by these allocators is not scanned for Go
// pointers in any useful way: store only pointer-free data in it.
//
// # Errors
//
// Allocate returns nil on failure. Internal bookkeeping that cannot proceed
// without memory uses MustAllocate, which panics with an error wrapping
// ErrOutOfMemory. Constructors validate their configuration and return
// errors.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Use one instance per goroutine or
// synchronize access externally.
package alloc
