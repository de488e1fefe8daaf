package hashtable

import (
	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/debug"
)

// Table maps uint64 keys to fixed-size byte values. Each key holds at most
// one value.
type Table struct {
	core
}

// New creates an empty table whose values are elemSize bytes. No memory is
// allocated until the first insertion or Reserve.
func New(a alloc.Allocator, elemSize int) *Table {
	t := &Table{}
	t.init(a, elemSize)
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int { return t.indices.Len() }

// Has reports whether key is present.
func (t *Table) Has(key uint64) bool { return t.find(key).found() }

// Get returns the value stored under key. The returned slice aliases table
// storage and is invalidated by the next mutation.
func (t *Table) Get(key uint64) ([]byte, bool) {
	r := t.find(key)
	if !r.found() {
		return nil, false
	}
	return t.value(t.indices.Items()[r.i].value), true
}

// Set stores value under key, overwriting any existing value in place.
// len(value) must equal the element size.
func (t *Table) Set(key uint64, value []byte) {
	debug.Assert(len(value) == t.elemSize, "hashtable: value size does not match element size")
	if r := t.find(key); r.found() {
		copy(t.value(t.indices.Items()[r.i].value), value)
		return
	}
	copy(t.add(key), value)
}

// Remove deletes key. Removing a missing key is a no-op.
func (t *Table) Remove(key uint64) {
	if r := t.find(key); r.found() {
		t.erase(r)
	}
}

// Reserve sizes the table for n entries without further growth.
func (t *Table) Reserve(n int) { t.reserve(n) }

// Clear removes every entry, keeping the storage.
func (t *Table) Clear() { t.clear() }

// Values returns the packed values, Len()*elemSize bytes with no holes. Order
// is unspecified and changes on removal.
func (t *Table) Values() []byte { return t.values.Items() }

// Keys returns the keys parallel to Values.
func (t *Table) Keys() []uint64 { return t.keys.Items() }

// Stats reports the table's shape.
func (t *Table) Stats() Stats { return t.stats() }

// Destroy returns all storage to the allocator.
func (t *Table) Destroy() { t.destroy() }
