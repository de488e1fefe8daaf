package alloc

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/debug"
)

// Scratch records are laid out as
//
//	[size u32][pad][back u32][data][pad]
//
// size covers the whole record and has recFree set once the record is
// released. back is the distance from data to the record start. A skip
// record is a free record covering the unused tail before a wraparound.
const (
	recFree     uint32 = 1 << 31
	recSizeMask        = recFree - 1
	recHeader          = 4
	recBack            = 4
	recAlign           = 4

	minScratchSize = 64
)

// ScratchStats is a snapshot of Scratch bookkeeping.
type ScratchStats struct {
	Capacity  int // ring size in bytes
	InUse     int // bytes between the free and allocate cursors
	Live      int // in-ring allocations not yet deallocated
	Fallbacks int // requests forwarded to the backing allocator
}

// Scratch is a fixed-capacity ring buffer for short-lived allocations. When
// the ring is exhausted, requests fall back to the backing allocator.
//
// Callers must not retain scratch memory beyond its temporary scope; nothing
// enforces this.
type Scratch struct {
	backing Allocator
	region  []byte

	alloc int // allocate cursor
	free  int // free cursor; alloc == free means empty

	live      int
	fallbacks int
}

// NewScratch creates a ring of size bytes obtained from backing.
func NewScratch(backing Allocator, size int) (*Scratch, error) {
	if backing == nil {
		return nil, ErrNilBacking
	}
	size &^= recAlign - 1
	if size < minScratchSize || size > int(recSizeMask) {
		return nil, fmt.Errorf("%w: scratch size %d", ErrBadSize, size)
	}
	region := backing.Allocate(size, DefaultAlign)
	if region == nil {
		return nil, fmt.Errorf("%w: scratch region of %d bytes", ErrOutOfMemory, size)
	}
	return &Scratch{backing: backing, region: region}, nil
}

// layout places a record at off and returns its data offset and end.
func (s *Scratch) layout(off, size, align int) (data, end int) {
	data = AlignOffset(s.region, off+recHeader+recBack, align)
	end = buf.AlignUp(data+max(size, 1), recAlign)
	return data, end
}

// place finds room for a record, writing a skip record when it wraps.
func (s *Scratch) place(size, align int) (start, data, end int, ok bool) {
	n := len(s.region)
	start = s.alloc
	data, end = s.layout(start, size, align)

	if s.alloc < s.free {
		// live span wraps: free space is [alloc, free)
		return start, data, end, end < s.free
	}

	// free space is [alloc, n) and [0, free)
	if end < n || (end == n && s.free != 0) {
		return start, data, end, true
	}
	data, end = s.layout(0, size, align)
	if end >= s.free {
		return 0, 0, 0, false
	}
	buf.PutU32(s.region, s.alloc, uint32(n-s.alloc)|recFree)
	return 0, data, end, true
}

// Allocate implements Allocator.
func (s *Scratch) Allocate(size, align int) []byte {
	align, ok := CheckAlign(align)
	if !ok || size < 0 {
		return nil
	}
	worst, ok := buf.Sum(size, align, recHeader+recBack+recAlign)
	if !ok || worst >= len(s.region) {
		return s.fallback(size, align)
	}

	start, data, end, ok := s.place(size, align)
	if !ok {
		return s.fallback(size, align)
	}

	buf.PutU32(s.region, start, uint32(end-start))
	buf.PutU32(s.region, data-recBack, uint32(data-start))
	s.alloc = end
	if s.alloc == len(s.region) {
		s.alloc = 0
	}
	s.live++
	return Span(s.region, data, size)
}

func (s *Scratch) fallback(size, align int) []byte {
	s.fallbacks++
	return s.backing.Allocate(size, align)
}

// offset returns the offset of b inside the ring.
func (s *Scratch) offset(b []byte) (int, bool) {
	p, base := Addr(b), Addr(s.region)
	if p < base || p >= base+uintptr(len(s.region)) {
		return 0, false
	}
	return int(p - base), true
}

// Owns reports whether b lives inside the ring.
func (s *Scratch) Owns(b []byte) bool {
	_, ok := s.offset(b)
	return b != nil && ok
}

// Deallocate implements Allocator. Memory outside the ring is forwarded to
// the backing allocator.
func (s *Scratch) Deallocate(b []byte) {
	if b == nil {
		return
	}
	data, ok := s.offset(b)
	if !ok {
		s.backing.Deallocate(b)
		return
	}

	start := data - int(buf.U32(s.region, data-recBack))
	w := buf.U32(s.region, start)
	debug.Assert(w&recFree == 0, "alloc: scratch record freed twice")
	buf.PutU32(s.region, start, w|recFree)
	s.live--
	s.sweep()
}

// sweep advances the free cursor over released and skip records.
func (s *Scratch) sweep() {
	n := len(s.region)
	for s.free != s.alloc {
		w := buf.U32(s.region, s.free)
		if w&recFree == 0 {
			break
		}
		s.free += int(w & recSizeMask)
		if s.free == n {
			s.free = 0
		}
	}
	if s.free == s.alloc {
		s.free, s.alloc = 0, 0
	}
}

// AllocatedFor implements Allocator. For ring memory it returns the usable
// bytes of the record.
func (s *Scratch) AllocatedFor(b []byte) int {
	if b == nil {
		return 0
	}
	data, ok := s.offset(b)
	if !ok {
		return s.backing.AllocatedFor(b)
	}
	start := data - int(buf.U32(s.region, data-recBack))
	end := start + int(buf.U32(s.region, start)&recSizeMask)
	return end - data
}

// AllocatedTotal implements Allocator. It returns the bytes held between the
// free and allocate cursors, padding and skip records included.
func (s *Scratch) AllocatedTotal() int {
	if s.alloc >= s.free {
		return s.alloc - s.free
	}
	return len(s.region) - s.free + s.alloc
}

// Stats returns current bookkeeping.
func (s *Scratch) Stats() ScratchStats {
	return ScratchStats{
		Capacity:  len(s.region),
		InUse:     s.AllocatedTotal(),
		Live:      s.live,
		Fallbacks: s.fallbacks,
	}
}

// Destroy returns the ring to the backing allocator. Outstanding ring
// allocations become invalid.
func (s *Scratch) Destroy() {
	if s.region == nil {
		return
	}
	debug.Assert(s.live == 0, func() string {
		return fmt.Sprintf("alloc: scratch destroyed with %d live allocations", s.live)
	})
	s.backing.Deallocate(s.region)
	s.region = nil
	s.alloc, s.free, s.live = 0, 0, 0
}

var _ Allocator = (*Scratch)(nil)
