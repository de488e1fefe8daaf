package pool

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/buf"
)

// DefaultPageSize is the number of blocks per page when Options.PageSize is 0.
const DefaultPageSize = 256

// defaultCacheLine is used when the CPU does not report its cache line size.
const defaultCacheLine = 64

// Lookup selects how Deallocate maps a pointer back to its page and block.
type Lookup int

const (
	// LookupHash keeps every block address in a hash table. O(1) per free.
	LookupHash Lookup = iota
	// LookupLinear scans the page list. No extra memory; O(pages) per free.
	LookupLinear
	// LookupTree keeps pages in a B-tree ordered by base address. O(log pages).
	LookupTree
)

func (l Lookup) String() string {
	switch l {
	case LookupHash:
		return "hash"
	case LookupLinear:
		return "linear"
	case LookupTree:
		return "tree"
	default:
		return fmt.Sprintf("Lookup(%d)", int(l))
	}
}

// ParseLookup returns the Lookup named s ("hash", "linear" or "tree").
func ParseLookup(s string) (Lookup, error) {
	for _, l := range []Lookup{LookupHash, LookupLinear, LookupTree} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrLookup, s)
}

// Options configures a Pool.
type Options struct {
	// BlockSize is the size of each block in bytes. Required.
	BlockSize int

	// BlockAlign is the alignment of each block. 0 means alloc.DefaultAlign.
	// BlockSize is rounded up to a multiple of it.
	BlockAlign int

	// PageSize is the number of blocks obtained from the backing allocator
	// at a time. 0 means DefaultPageSize.
	PageSize int

	// Lookup selects the pointer-to-block strategy. The zero value is
	// LookupHash.
	Lookup Lookup
}

// cacheLine returns the CPU's cache line size in bytes.
func cacheLine() int {
	if n := cpuid.CPU.CacheLine; n > 0 {
		return n
	}
	return defaultCacheLine
}

// resolve validates o and fills in defaults.
func (o Options) resolve() (Options, error) {
	if o.BlockSize <= 0 {
		return o, fmt.Errorf("%w: %d", ErrBlockSize, o.BlockSize)
	}
	align, ok := alloc.CheckAlign(o.BlockAlign)
	if !ok {
		return o, fmt.Errorf("%w: block align %d", alloc.ErrBadAlign, o.BlockAlign)
	}
	o.BlockAlign = align
	if o.PageSize < 0 {
		return o, fmt.Errorf("%w: %d", ErrPageSize, o.PageSize)
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Lookup < LookupHash || o.Lookup > LookupTree {
		return o, fmt.Errorf("%w: %d", ErrLookup, int(o.Lookup))
	}

	size, ok := buf.Add(o.BlockSize, o.BlockAlign-1)
	if !ok {
		return o, fmt.Errorf("%w: %d", ErrBlockSize, o.BlockSize)
	}
	o.BlockSize = size &^ (o.BlockAlign - 1)
	if bytes, ok := buf.Mul(o.BlockSize, o.PageSize); !ok || int64(bytes) > maxPageBytes {
		return o, fmt.Errorf("%w: %d blocks of %d bytes", ErrPageSize, o.PageSize, o.BlockSize)
	}
	return o, nil
}

const maxPageBytes = 1 << 31
