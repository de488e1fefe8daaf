package pool

import (
	"github.com/google/btree"

	"github.com/joshuapare/memkit/hashtable"
	"github.com/joshuapare/memkit/internal/debug"
)

// blockRef locates a block: its page and its index within the page.
type blockRef struct {
	page  uint32
	block uint32
}

// page is a run of blocks obtained from the backing allocator.
type page struct {
	mem  []byte
	base uintptr
}

// lookup maps an address handed out by the pool back to its block.
type lookup interface {
	addPage(index uint32, pg page, blockSize int)
	find(addr uintptr) (blockRef, bool)
	destroy()
}

func newLookup(p *Pool) lookup {
	switch p.opts.Lookup {
	case LookupLinear:
		return &linearLookup{p: p}
	case LookupTree:
		return &treeLookup{p: p, tree: btree.NewG(8, func(a, b treePage) bool { return a.base < b.base })}
	default:
		return &hashLookup{blocks: hashtable.NewMap[hashEntry](p.backing)}
	}
}

// locate returns the block of pg containing addr, if addr is a block start.
func locate(pg page, addr uintptr, blockSize int) (uint32, bool) {
	if addr < pg.base || addr >= pg.base+uintptr(len(pg.mem)) {
		return 0, false
	}
	off := addr - pg.base
	if off%uintptr(blockSize) != 0 {
		return 0, false
	}
	return uint32(off / uintptr(blockSize)), true
}

type hashEntry struct {
	addr uint64
	ref  blockRef
}

// hashLookup records every block address. Keys are HashUint64(addr); the
// address is stored alongside to confirm the match.
type hashLookup struct {
	blocks *hashtable.Map[hashEntry]
}

func (h *hashLookup) addPage(index uint32, pg page, blockSize int) {
	n := len(pg.mem) / blockSize
	h.blocks.Reserve(h.blocks.Len() + n)
	for b := range n {
		addr := uint64(pg.base) + uint64(b*blockSize)
		h.blocks.Set(hashtable.HashUint64(addr), hashEntry{addr: addr, ref: blockRef{page: index, block: uint32(b)}})
	}
}

func (h *hashLookup) find(addr uintptr) (blockRef, bool) {
	e := h.blocks.Ptr(hashtable.HashUint64(uint64(addr)))
	if e == nil {
		return blockRef{}, false
	}
	debug.Assert(e.addr == uint64(addr), "pool: block address hash collision")
	return e.ref, true
}

func (h *hashLookup) destroy() { h.blocks.Destroy() }

// linearLookup scans the pages in allocation order.
type linearLookup struct {
	p *Pool
}

func (l *linearLookup) addPage(uint32, page, int) {}

func (l *linearLookup) find(addr uintptr) (blockRef, bool) {
	for i, pg := range l.p.pages {
		if b, ok := locate(pg, addr, l.p.opts.BlockSize); ok {
			return blockRef{page: uint32(i), block: b}, true
		}
	}
	return blockRef{}, false
}

func (l *linearLookup) destroy() {}

type treePage struct {
	base  uintptr
	index uint32
}

// treeLookup orders pages by base address; the candidate page for an
// address is the one with the greatest base not above it.
type treeLookup struct {
	p    *Pool
	tree *btree.BTreeG[treePage]
}

func (t *treeLookup) addPage(index uint32, pg page, _ int) {
	t.tree.ReplaceOrInsert(treePage{base: pg.base, index: index})
}

func (t *treeLookup) find(addr uintptr) (blockRef, bool) {
	var (
		ref   blockRef
		found bool
	)
	t.tree.DescendLessOrEqual(treePage{base: addr}, func(tp treePage) bool {
		if b, ok := locate(t.p.pages[tp.index], addr, t.p.opts.BlockSize); ok {
			ref, found = blockRef{page: tp.index, block: b}, true
		}
		return false
	})
	return ref, found
}

func (t *treeLookup) destroy() { t.tree.Clear(false) }
