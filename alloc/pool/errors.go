package pool

import "errors"

var (
	// ErrBlockSize indicates a non-positive block size.
	ErrBlockSize = errors.New("pool: invalid block size")

	// ErrPageSize indicates a negative page size or a page too large to allocate.
	ErrPageSize = errors.New("pool: invalid page size")

	// ErrLookup indicates an unknown Lookup strategy.
	ErrLookup = errors.New("pool: unknown lookup strategy")
)
