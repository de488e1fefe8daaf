package slotmap

import (
	"iter"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/view"
)

// Map is a Table of T. T must not contain pointers.
type Map[T any] struct {
	t Table
}

// NewMap creates an empty Map. It panics if T contains pointers.
func NewMap[T any](a alloc.Allocator) *Map[T] {
	m := &Map[T]{}
	m.t.init(a, view.Check[T]())
	return m
}

func (m *Map[T]) Len() int       { return m.t.Len() }
func (m *Map[T]) Has(id ID) bool { return m.t.Has(id) }
func (m *Map[T]) Reserve(n int)  { m.t.Reserve(n) }
func (m *Map[T]) IDs() []ID      { return m.t.IDs() }
func (m *Map[T]) Stats() Stats   { return m.t.Stats() }
func (m *Map[T]) Destroy()       { m.t.Destroy() }
func (m *Map[T]) Add(v T) ID     { return m.t.Add(view.Bytes(&v)) }
func (m *Map[T]) Items() []T     { return view.Slice[T](m.t.Items()) }
func (m *Map[T]) Remove(id ID)   { m.t.Remove(id) }

// Lookup returns a copy of the item for id, or false when id is stale.
func (m *Map[T]) Lookup(id ID) (T, bool) {
	if !m.t.Has(id) {
		var zero T
		return zero, false
	}
	return *m.Get(id), true
}

// Get returns a pointer to the item for id, valid until the next Add or
// Remove. id must be live.
func (m *Map[T]) Get(id ID) *T {
	return &view.Slice[T](m.t.Lookup(id))[0]
}

// All iterates over the items in storage order. The map must not be modified
// during iteration.
func (m *Map[T]) All() iter.Seq2[ID, *T] {
	return func(yield func(ID, *T) bool) {
		items := m.Items()
		for i, id := range m.t.IDs() {
			if !yield(id, &items[i]) {
				return
			}
		}
	}
}
