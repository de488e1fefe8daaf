// Package pool provides a fixed-size block allocator.
//
// A Pool obtains pages of Options.PageSize blocks from its backing
// allocator and serves every request that fits one block from them. Freed
// blocks go onto a freelist shared by all pages, so allocation and release
// are O(1) apart from the pointer lookup Deallocate needs to tell pool
// blocks from fallback memory:
//
//   - LookupHash: a hashtable.Map from block address to block
//   - LookupLinear: a scan over page address ranges
//   - LookupTree: a B-tree of pages ordered by base address
//
// Pages are aligned to the CPU cache line (or BlockAlign when larger) so
// that blocks of cache-line size never straddle two lines.
//
//	p, err := pool.New(alloc.DefaultHeap(), pool.Options{BlockSize: 48})
//	if err != nil {
//	    return err
//	}
//	defer p.Destroy()
//
//	b := p.Allocate(40, 8)
//	p.Deallocate(b)
package pool
