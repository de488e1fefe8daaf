package alloc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/debug"
)

// Heap header layout. The header sits immediately before the data so it can
// be recovered from the data pointer alone:
//
//	[0:8)   block size obtained from the system source
//	[8:16)  requested size
//	[16:20) offset from block start to data
//	[20:24) magic | flags
const (
	heapHeaderSize = 24

	hdrBlockSize = 0
	hdrReqSize   = 8
	hdrOffset    = 16
	hdrFlags     = 20

	heapMagic   uint32 = 0x48500000
	magicMask   uint32 = 0xffff0000
	flagMapped  uint32 = 1
	maxHeapSize        = 1 << 40
)

// HeapOptions configures a Heap. The zero value is ready to use.
type HeapOptions struct {
	// MmapThreshold is the block size at or above which memory is mapped
	// directly from the OS and unmapped on Deallocate. Zero keeps every
	// block on the Go heap. Ignored on platforms without mmap.
	MmapThreshold int
}

// HeapStats is a snapshot of Heap bookkeeping.
type HeapStats struct {
	Allocations int // live allocations
	Bytes       int // bytes backing live allocations, headers and padding included
	Mapped      int // live allocations served by OS mappings
}

// Heap wraps the system allocator and tracks the true size of every block in
// a header placed before the data.
type Heap struct {
	opts   HeapOptions
	total  int
	count  int
	mapped int
}

// NewHeap creates a Heap with the given options.
func NewHeap(opts HeapOptions) (*Heap, error) {
	if opts.MmapThreshold < 0 {
		return nil, fmt.Errorf("%w: mmap threshold %d", ErrBadSize, opts.MmapThreshold)
	}
	return &Heap{opts: opts}, nil
}

// Allocate implements Allocator.
func (h *Heap) Allocate(size, align int) []byte {
	align, ok := CheckAlign(align)
	if !ok || size < 0 {
		return nil
	}
	n, ok := buf.Sum(size, align, heapHeaderSize)
	if !ok || int64(n) > maxHeapSize {
		return nil
	}

	block, mapped := h.obtain(n)
	if block == nil {
		return nil
	}

	data := AlignOffset(block, heapHeaderSize, align)
	hdr := data - heapHeaderSize
	flags := heapMagic
	if mapped {
		flags |= flagMapped
		h.mapped++
	}
	buf.PutU64(block, hdr+hdrBlockSize, uint64(n))
	buf.PutU64(block, hdr+hdrReqSize, uint64(size))
	buf.PutU32(block, hdr+hdrOffset, uint32(data))
	buf.PutU32(block, hdr+hdrFlags, flags)

	h.total += n
	h.count++
	return Span(block, data, size)
}

func (h *Heap) obtain(n int) ([]byte, bool) {
	if canMap && h.opts.MmapThreshold > 0 && n >= h.opts.MmapThreshold {
		b := mapBlock(n)
		return b, b != nil
	}
	return make([]byte, n), false
}

// header returns the header bytes preceding the data of b.
func header(b []byte) []byte {
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), -heapHeaderSize)
	return unsafe.Slice((*byte)(p), heapHeaderSize)
}

// Deallocate implements Allocator.
func (h *Heap) Deallocate(b []byte) {
	if b == nil {
		return
	}
	hdr := header(b)
	flags := buf.U32(hdr, hdrFlags)
	debug.Assert(flags&magicMask == heapMagic, "alloc: pointer was not allocated by a Heap")

	n := int(buf.U64(hdr, hdrBlockSize))
	// poison the magic so a second Deallocate trips the assertion
	buf.PutU32(hdr, hdrFlags, 0)
	h.total -= n
	h.count--

	if flags&flagMapped != 0 {
		h.mapped--
		off := int(buf.U32(hdr, hdrOffset))
		start := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), -off)
		unmapBlock(unsafe.Slice((*byte)(start), n))
	}
}

// AllocatedFor implements Allocator. It reports the full block size, headers
// and alignment padding included.
func (h *Heap) AllocatedFor(b []byte) int {
	if b == nil {
		return 0
	}
	return int(buf.U64(header(b), hdrBlockSize))
}

// RequestedFor returns the size originally requested for b.
func (h *Heap) RequestedFor(b []byte) int {
	if b == nil {
		return 0
	}
	return int(buf.U64(header(b), hdrReqSize))
}

// AllocatedTotal implements Allocator.
func (h *Heap) AllocatedTotal() int { return h.total }

// Stats returns current bookkeeping.
func (h *Heap) Stats() HeapStats {
	return HeapStats{Allocations: h.count, Bytes: h.total, Mapped: h.mapped}
}

var _ Allocator = (*Heap)(nil)
