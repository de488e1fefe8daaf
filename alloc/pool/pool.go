package pool

import (
	"fmt"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/array"
	"github.com/joshuapare/memkit/internal/debug"
)

// Stats is a snapshot of Pool bookkeeping.
type Stats struct {
	BlockSize  int
	Pages      int
	FreeBlocks int
	Fallbacks  int // requests forwarded to the backing allocator
}

// Pool hands out fixed-size blocks carved from pages obtained from a backing
// allocator. Requests that do not fit a block go to the backing allocator.
//
// Pages are kept until Destroy; freed blocks return to a freelist shared by
// all pages.
type Pool struct {
	backing   alloc.Allocator
	opts      Options
	pageAlign int

	pages     []page
	free      array.Array[blockRef]
	index     lookup
	fallbacks int
}

// New creates a pool. Pages, the freelist and the lookup table are all
// allocated from backing.
func New(backing alloc.Allocator, opts Options) (*Pool, error) {
	if backing == nil {
		return nil, alloc.ErrNilBacking
	}
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	p := &Pool{
		backing:   backing,
		opts:      opts,
		pageAlign: max(opts.BlockAlign, cacheLine()),
	}
	p.free.Init(backing)
	p.index = newLookup(p)
	return p, nil
}

// Options returns the resolved configuration.
func (p *Pool) Options() Options { return p.opts }

func (p *Pool) addPage() bool {
	mem := p.backing.Allocate(p.opts.BlockSize*p.opts.PageSize, p.pageAlign)
	if mem == nil {
		return false
	}
	if uint64(len(p.pages)) >= 1<<31 {
		panic(fmt.Errorf("%w: %d pages", alloc.ErrOutOfMemory, len(p.pages)))
	}
	index := uint32(len(p.pages))
	pg := page{mem: mem, base: alloc.Addr(mem)}
	p.pages = append(p.pages, pg)

	// pushed in reverse so block 0 is handed out first
	p.free.Reserve(p.free.Len() + p.opts.PageSize)
	for b := p.opts.PageSize - 1; b >= 0; b-- {
		p.free.Push(blockRef{page: index, block: uint32(b)})
	}
	p.index.addPage(index, pg, p.opts.BlockSize)
	return true
}

// Allocate implements alloc.Allocator.
func (p *Pool) Allocate(size, align int) []byte {
	align, ok := alloc.CheckAlign(align)
	if !ok || size < 0 {
		return nil
	}
	if size > p.opts.BlockSize || align > p.opts.BlockAlign {
		p.fallbacks++
		return p.backing.Allocate(size, align)
	}
	if p.free.Len() == 0 && !p.addPage() {
		return nil
	}
	ref := p.free.Pop()
	off := int(ref.block) * p.opts.BlockSize
	return p.pages[ref.page].mem[off : off+size : off+p.opts.BlockSize]
}

// Owns reports whether b is a block of this pool.
func (p *Pool) Owns(b []byte) bool {
	if b == nil {
		return false
	}
	_, ok := p.index.find(alloc.Addr(b))
	return ok
}

// Deallocate implements alloc.Allocator. Memory that is not a pool block is
// forwarded to the backing allocator.
func (p *Pool) Deallocate(b []byte) {
	if b == nil {
		return
	}
	ref, ok := p.index.find(alloc.Addr(b))
	if !ok {
		p.backing.Deallocate(b)
		return
	}
	debug.Assert(p.free.Len() < len(p.pages)*p.opts.PageSize, "pool: more blocks freed than allocated")
	p.free.Push(ref)
}

// AllocatedFor implements alloc.Allocator. It returns the block size for
// pool blocks and SizeNotTracked otherwise.
func (p *Pool) AllocatedFor(b []byte) int {
	if !p.Owns(b) {
		return alloc.SizeNotTracked
	}
	return p.opts.BlockSize
}

// AllocatedTotal implements alloc.Allocator. Fallback allocations are not
// counted.
func (p *Pool) AllocatedTotal() int {
	return (len(p.pages)*p.opts.PageSize - p.free.Len()) * p.opts.BlockSize
}

// Stats returns current bookkeeping.
func (p *Pool) Stats() Stats {
	return Stats{
		BlockSize:  p.opts.BlockSize,
		Pages:      len(p.pages),
		FreeBlocks: p.free.Len(),
		Fallbacks:  p.fallbacks,
	}
}

// Destroy releases every page and the pool's bookkeeping. Outstanding
// blocks become invalid; fallback allocations are not released.
func (p *Pool) Destroy() {
	for _, pg := range p.pages {
		p.backing.Deallocate(pg.mem)
	}
	p.pages = nil
	p.free.Destroy()
	p.index.destroy()
}

var _ alloc.Allocator = (*Pool)(nil)
