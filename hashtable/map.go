package hashtable

import (
	"iter"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/view"
)

// Map is a Table holding values of type T. T must not contain pointers.
type Map[T any] struct {
	t Table
}

// NewMap creates an empty Map. It panics if T contains pointers.
func NewMap[T any](a alloc.Allocator) *Map[T] {
	m := &Map[T]{}
	m.t.init(a, view.Check[T]())
	return m
}

func (m *Map[T]) Len() int            { return m.t.Len() }
func (m *Map[T]) Has(key uint64) bool { return m.t.Has(key) }
func (m *Map[T]) Remove(key uint64)   { m.t.Remove(key) }
func (m *Map[T]) Reserve(n int)       { m.t.Reserve(n) }
func (m *Map[T]) Keys() []uint64      { return m.t.Keys() }
func (m *Map[T]) Stats() Stats        { return m.t.Stats() }
func (m *Map[T]) Destroy()            { m.t.Destroy() }

// Get returns the value stored under key.
func (m *Map[T]) Get(key uint64) (T, bool) {
	if p := m.Ptr(key); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer to the value stored under key, or nil. The pointer
// is invalidated by the next mutation.
func (m *Map[T]) Ptr(key uint64) *T {
	b, ok := m.t.Get(key)
	if !ok {
		return nil
	}
	return &view.Slice[T](b)[0]
}

// Set stores v under key.
func (m *Map[T]) Set(key uint64, v T) { m.t.Set(key, view.Bytes(&v)) }

// Items returns the packed values parallel to Keys.
func (m *Map[T]) Items() []T { return view.Slice[T](m.t.Values()) }

// All iterates over every entry in storage order.
func (m *Map[T]) All() iter.Seq2[uint64, T] {
	return func(yield func(uint64, T) bool) {
		for i, v := range m.Items() {
			if !yield(m.t.Keys()[i], v) {
				return
			}
		}
	}
}

// MultiMap is a Multi holding values of type T.
type MultiMap[T any] struct {
	m Multi
}

// NewMultiMap creates an empty MultiMap. It panics if T contains pointers.
func NewMultiMap[T any](a alloc.Allocator) *MultiMap[T] {
	m := &MultiMap[T]{}
	m.m.init(a, view.Check[T]())
	return m
}

func (m *MultiMap[T]) Len() int             { return m.m.Len() }
func (m *MultiMap[T]) Has(key uint64) bool  { return m.m.Has(key) }
func (m *MultiMap[T]) Count(key uint64) int { return m.m.Count(key) }
func (m *MultiMap[T]) Remove(key uint64)    { m.m.Remove(key) }
func (m *MultiMap[T]) RemoveAll(key uint64) { m.m.RemoveAll(key) }
func (m *MultiMap[T]) RemoveEntry(c Cursor) { m.m.RemoveEntry(c) }
func (m *MultiMap[T]) Reserve(n int)        { m.m.Reserve(n) }
func (m *MultiMap[T]) Destroy()             { m.m.Destroy() }

// FindFirst returns the first entry for key.
func (m *MultiMap[T]) FindFirst(key uint64) (Cursor, bool) { return m.m.FindFirst(key) }

// FindNext returns the entry after c with the same key.
func (m *MultiMap[T]) FindNext(c Cursor) (Cursor, bool) { return m.m.FindNext(c) }

// Insert adds v under key.
func (m *MultiMap[T]) Insert(key uint64, v T) { m.m.Insert(key, view.Bytes(&v)) }

// Value returns the value at c.
func (m *MultiMap[T]) Value(c Cursor) T { return view.Slice[T](m.m.Value(c))[0] }

// Items returns the packed values of all entries.
func (m *MultiMap[T]) Items() []T { return view.Slice[T](m.m.Values()) }

// Each iterates over the values stored under key. The table must not be
// modified during iteration.
func (m *MultiMap[T]) Each(key uint64) iter.Seq[T] {
	return func(yield func(T) bool) {
		for c, ok := m.FindFirst(key); ok; c, ok = m.FindNext(c) {
			if !yield(m.Value(c)) {
				return
			}
		}
	}
}
