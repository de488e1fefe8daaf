// Package array implements a growable array of pointer-free values whose
// storage comes from an alloc.Allocator.
package array

import (
	"fmt"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/view"
)

const minCap = 2

// Array is a dynamic array of T. The zero value is unusable; call Init.
//
// Items returns a view into allocator memory: it is invalidated by any call
// that grows the array.
type Array[T any] struct {
	a     alloc.Allocator
	align int
	mem   []byte
	items []T // view of mem, len == capacity
	n     int
}

// Init binds the allocator. Storage is allocated lazily on first growth.
func (s *Array[T]) Init(a alloc.Allocator) {
	s.InitAlign(a, view.Align[T]())
}

// InitAlign is Init with an explicit storage alignment, at least that of T.
func (s *Array[T]) InitAlign(a alloc.Allocator, align int) {
	view.Check[T]()
	s.a = a
	s.align = max(align, view.Align[T]())
}

// Len returns the number of elements.
func (s *Array[T]) Len() int { return s.n }

// Cap returns the number of elements that fit without growing.
func (s *Array[T]) Cap() int { return len(s.items) }

// Items returns the elements.
func (s *Array[T]) Items() []T { return s.items[:s.n] }

// At returns a pointer to element i.
func (s *Array[T]) At(i int) *T { return &s.items[:s.n][i] }

// Bytes returns the elements' memory.
func (s *Array[T]) Bytes() []byte { return view.Of(s.Items()) }

// Push appends v.
func (s *Array[T]) Push(v T) {
	if s.n == len(s.items) {
		s.grow(max(s.n*2, minCap))
	}
	s.items[s.n] = v
	s.n++
}

// Pop removes and returns the last element.
func (s *Array[T]) Pop() T {
	s.n--
	return s.items[s.n]
}

// Back returns a pointer to the last element.
func (s *Array[T]) Back() *T { return &s.items[s.n-1] }

// AppendSlice appends every element of vs.
func (s *Array[T]) AppendSlice(vs []T) {
	s.Reserve(s.n + len(vs))
	copy(s.items[s.n:], vs)
	s.n += len(vs)
}

// Resize sets the length to n, growing as needed. New elements are zeroed.
func (s *Array[T]) Resize(n int) {
	s.Reserve(n)
	if n > s.n {
		clear(s.items[s.n:n])
	}
	s.n = n
}

// Reserve makes room for at least n elements, rounding the capacity up to a
// power of two.
func (s *Array[T]) Reserve(n int) {
	if n > len(s.items) {
		s.grow(buf.NextPow2(max(n, minCap)))
	}
}

// Clear sets the length to zero, keeping the storage.
func (s *Array[T]) Clear() { s.n = 0 }

func (s *Array[T]) grow(capacity int) {
	size := view.Check[T]()
	bytes, ok := buf.Mul(capacity, size)
	if !ok {
		panic(fmt.Errorf("%w: array of %d x %d bytes", alloc.ErrBadSize, capacity, size))
	}
	mem := alloc.MustAllocate(s.a, bytes, s.align)
	items := view.Slice[T](mem)
	copy(items, s.items[:s.n])
	if s.mem != nil {
		s.a.Deallocate(s.mem)
	}
	s.mem = mem
	s.items = items
}

// Destroy returns the storage to the allocator. The array may be reused.
func (s *Array[T]) Destroy() {
	if s.mem != nil {
		s.a.Deallocate(s.mem)
	}
	s.mem, s.items, s.n = nil, nil, 0
}
