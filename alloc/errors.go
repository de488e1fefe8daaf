package alloc

import "errors"

var (
	// ErrOutOfMemory indicates that the ultimate backing allocator could not
	// satisfy a request. Allocate returns nil in that case; internal growth
	// paths panic with an error wrapping ErrOutOfMemory.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadAlign indicates an alignment that is not a power of two.
	ErrBadAlign = errors.New("alloc: alignment must be a power of two")

	// ErrBadSize indicates an invalid region or threshold size.
	ErrBadSize = errors.New("alloc: invalid size")

	// ErrNilBacking indicates a constructor was given no backing allocator.
	ErrNilBacking = errors.New("alloc: nil backing allocator")

	// ErrInitialized indicates Init was called twice without Shutdown.
	ErrInitialized = errors.New("alloc: process allocators already initialized")
)
