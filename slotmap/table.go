package slotmap

import (
	"fmt"
	"math"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/array"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/debug"
)

const (
	slotFree     uint32 = math.MaxUint32 // pos of a slot without an item
	endOfList    uint32 = math.MaxUint32
	maxGen       uint32 = math.MaxUint32
	initialSlots        = 4
	maxSlots            = math.MaxInt32
)

type slot struct {
	gen  uint32
	pos  uint32 // index into ids/items, or slotFree
	next uint32 // freelist link
}

// Stats is a snapshot of table bookkeeping.
type Stats struct {
	Items   int
	Slots   int
	Free    int
	Retired int // slots whose generation is exhausted
}

// Table stores fixed-size items densely and hands out generational IDs that
// stay valid until the item is removed. Removing an item moves the last item
// into its place, so the order of Items changes.
type Table struct {
	elemSize int
	slots    array.Array[slot]
	ids      array.Array[ID]
	items    array.Array[byte]

	// FIFO freelist over slots
	head, tail uint32
	free       int
	retired    int
}

// New creates an empty table of elemSize-byte items.
func New(a alloc.Allocator, elemSize int) *Table {
	t := &Table{}
	t.init(a, elemSize)
	return t
}

func (t *Table) init(a alloc.Allocator, elemSize int) {
	if elemSize < 0 {
		panic(fmt.Errorf("%w: %d", ErrElemSize, elemSize))
	}
	t.elemSize = elemSize
	t.slots.Init(a)
	t.ids.Init(a)
	t.items.InitAlign(a, alloc.DefaultAlign)
	t.head, t.tail = endOfList, endOfList
}

// Reserve grows the slot array to at least n slots, rounded up to a power of
// two.
func (t *Table) Reserve(n int) {
	t.grow(buf.NextPow2(n))
}

func (t *Table) grow(capacity int) {
	old := t.slots.Len()
	if capacity <= old {
		return
	}
	if capacity > maxSlots {
		if old >= maxSlots {
			if t.free > 0 {
				return
			}
			panic(fmt.Errorf("%w: %d slots", ErrFull, old))
		}
		capacity = maxSlots
	}

	t.slots.Resize(capacity)
	slots := t.slots.Items()
	for i := old; i < capacity; i++ {
		slots[i] = slot{pos: slotFree, next: uint32(i + 1)}
	}
	slots[capacity-1].next = endOfList
	if t.free == 0 {
		t.head = uint32(old)
	} else {
		slots[t.tail].next = uint32(old)
	}
	t.tail = uint32(capacity - 1)
	t.free += capacity - old

	t.ids.Reserve(capacity)
	if bytes, ok := buf.Mul(capacity, t.elemSize); ok {
		t.items.Reserve(bytes)
	}
}

// Add copies item into the table and returns its ID. len(item) must equal
// the element size.
func (t *Table) Add(item []byte) ID {
	debug.Assert(len(item) == t.elemSize, "slotmap: item size does not match element size")
	if t.free == 0 {
		t.grow(max(t.slots.Len()*2, initialSlots))
	}

	i := t.head
	s := t.slots.At(int(i))
	t.head = s.next
	t.free--

	s.gen++
	s.pos = uint32(t.ids.Len())
	s.next = endOfList
	id := makeID(s.gen, i)

	t.ids.Push(id)
	t.items.AppendSlice(item)

	// keep a spare slot so the freelist never drains
	if t.free <= 1 {
		t.grow(t.slots.Len() * 2)
	}
	return id
}

// Has reports whether id refers to a live item. It never faults, whatever
// the ID.
func (t *Table) Has(id ID) bool {
	i := int(id.Slot())
	if i >= t.slots.Len() {
		return false
	}
	s := t.slots.Items()[i]
	return s.pos != slotFree && s.gen == id.Gen()
}

func (t *Table) item(pos uint32) []byte {
	off := int(pos) * t.elemSize
	return t.items.Items()[off : off+t.elemSize : off+t.elemSize]
}

// Lookup returns the item for id, aliasing table storage until the next
// mutation. id must be live: check Has first. With the assert tag a stale id
// panics with ErrStaleID.
func (t *Table) Lookup(id ID) []byte {
	debug.Assert(t.Has(id), ErrStaleID)
	return t.item(t.slots.Items()[id.Slot()].pos)
}

// Remove deletes the item for id. id must be live.
func (t *Table) Remove(id ID) {
	debug.Assert(t.Has(id), ErrStaleID)
	i := id.Slot()
	slots := t.slots.Items()
	pos := slots[i].pos

	last := uint32(t.ids.Len() - 1)
	if pos != last {
		moved := t.ids.Items()[last]
		t.ids.Items()[pos] = moved
		copy(t.item(pos), t.item(last))
		slots[moved.Slot()].pos = pos
	}
	t.ids.Pop()
	t.items.Resize(t.items.Len() - t.elemSize)

	slots[i].pos = slotFree
	if slots[i].gen == maxGen {
		// the next Add would reissue generation 0 and then old handles
		t.retired++
		return
	}
	slots[i].next = endOfList
	if t.free == 0 {
		t.head = i
	} else {
		slots[t.tail].next = i
	}
	t.tail = i
	t.free++
}

// Len returns the number of items.
func (t *Table) Len() int { return t.ids.Len() }

// Items returns the packed items, Len()*elemSize bytes.
func (t *Table) Items() []byte { return t.items.Items() }

// IDs returns the ID of each item, parallel to Items.
func (t *Table) IDs() []ID { return t.ids.Items() }

// Stats returns current bookkeeping.
func (t *Table) Stats() Stats {
	return Stats{Items: t.Len(), Slots: t.slots.Len(), Free: t.free, Retired: t.retired}
}

// Destroy returns all storage to the allocator.
func (t *Table) Destroy() {
	t.slots.Destroy()
	t.ids.Destroy()
	t.items.Destroy()
	t.head, t.tail = endOfList, endOfList
	t.free, t.retired = 0, 0
}
