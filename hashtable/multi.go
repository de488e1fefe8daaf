package hashtable

import (
	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/debug"
)

// Cursor identifies one entry of a Multi. Any mutation invalidates it.
type Cursor uint32

// Multi maps uint64 keys to any number of fixed-size byte values.
type Multi struct {
	core
}

// NewMulti creates an empty multi-value table whose values are elemSize bytes.
func NewMulti(a alloc.Allocator, elemSize int) *Multi {
	m := &Multi{}
	m.init(a, elemSize)
	return m
}

// Len returns the number of entries across all keys.
func (m *Multi) Len() int { return m.indices.Len() }

// Has reports whether key has at least one entry.
func (m *Multi) Has(key uint64) bool { return m.find(key).found() }

// Insert adds value under key without looking for existing entries.
func (m *Multi) Insert(key uint64, value []byte) {
	debug.Assert(len(value) == m.elemSize, "hashtable: value size does not match element size")
	copy(m.add(key), value)
}

// FindFirst returns the first entry for key.
func (m *Multi) FindFirst(key uint64) (Cursor, bool) {
	r := m.find(key)
	return Cursor(r.i), r.found()
}

// FindNext returns the entry after c with the same key.
func (m *Multi) FindNext(c Cursor) (Cursor, bool) {
	idx := m.indices.Items()
	key := idx[c].key
	for i := idx[c].next; i != endOfList; i = idx[i].next {
		if idx[i].key == key {
			return Cursor(i), true
		}
	}
	return Cursor(endOfList), false
}

// Value returns the value at c, aliasing table storage.
func (m *Multi) Value(c Cursor) []byte {
	return m.value(m.indices.Items()[c].value)
}

// Key returns the key at c.
func (m *Multi) Key(c Cursor) uint64 { return m.indices.Items()[c].key }

// Count returns the number of entries for key.
func (m *Multi) Count(key uint64) int {
	n := 0
	c, ok := m.FindFirst(key)
	for ok {
		n++
		c, ok = m.FindNext(c)
	}
	return n
}

// Remove deletes the first entry for key, if any.
func (m *Multi) Remove(key uint64) {
	if r := m.find(key); r.found() {
		m.erase(r)
	}
}

// RemoveEntry deletes the entry at c.
func (m *Multi) RemoveEntry(c Cursor) {
	r := m.findEntry(uint32(c))
	debug.Assert(r.found(), "hashtable: cursor does not reference a live entry")
	m.erase(r)
}

// RemoveAll deletes every entry for key.
func (m *Multi) RemoveAll(key uint64) {
	for r := m.find(key); r.found(); r = m.find(key) {
		m.erase(r)
	}
}

// Reserve sizes the table for n entries without further growth.
func (m *Multi) Reserve(n int) { m.reserve(n) }

// Clear removes every entry, keeping the storage.
func (m *Multi) Clear() { m.clear() }

// Values returns the packed values of all entries.
func (m *Multi) Values() []byte { return m.values.Items() }

// Keys returns the keys parallel to Values.
func (m *Multi) Keys() []uint64 { return m.keys.Items() }

// Stats reports the table's shape.
func (m *Multi) Stats() Stats { return m.stats() }

// Destroy returns all storage to the allocator.
func (m *Multi) Destroy() { m.destroy() }
