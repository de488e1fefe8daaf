package hashtable

import (
	"testing"

	"github.com/joshuapare/memkit/alloc"
)

const benchKeys = 1 << 16

func BenchmarkMapSet(b *testing.B) {
	b.Run("memkit", func(b *testing.B) {
		m := NewMap[uint64](&alloc.Heap{})
		defer m.Destroy()
		b.ReportAllocs()
		for i := range b.N {
			m.Set(HashUint64(uint64(i&(benchKeys-1))), uint64(i))
		}
	})
	b.Run("builtin", func(b *testing.B) {
		m := make(map[uint64]uint64)
		b.ReportAllocs()
		for i := range b.N {
			m[HashUint64(uint64(i&(benchKeys-1)))] = uint64(i)
		}
	})
}

func BenchmarkMapGet(b *testing.B) {
	b.Run("memkit", func(b *testing.B) {
		m := NewMap[uint64](&alloc.Heap{})
		defer m.Destroy()
		m.Reserve(benchKeys)
		for i := range benchKeys {
			m.Set(HashUint64(uint64(i)), uint64(i))
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := range b.N {
			m.Get(HashUint64(uint64(i & (benchKeys - 1))))
		}
	})
	b.Run("builtin", func(b *testing.B) {
		m := make(map[uint64]uint64, benchKeys)
		for i := range benchKeys {
			m[HashUint64(uint64(i))] = uint64(i)
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := range b.N {
			_ = m[HashUint64(uint64(i&(benchKeys-1)))]
		}
	})
}

func BenchmarkMapRemove(b *testing.B) {
	b.Run("memkit", func(b *testing.B) {
		m := NewMap[uint64](&alloc.Heap{})
		defer m.Destroy()
		b.ReportAllocs()
		for i := range b.N {
			k := HashUint64(uint64(i & 1023))
			m.Set(k, uint64(i))
			if i&1 == 1 {
				m.Remove(k)
			}
		}
	})
	b.Run("builtin", func(b *testing.B) {
		m := make(map[uint64]uint64)
		b.ReportAllocs()
		for i := range b.N {
			k := HashUint64(uint64(i & 1023))
			m[k] = uint64(i)
			if i&1 == 1 {
				delete(m, k)
			}
		}
	})
}

func BenchmarkMultiInsertRemoveAll(b *testing.B) {
	b.Run("memkit", func(b *testing.B) {
		m := NewMultiMap[uint32](&alloc.Heap{})
		defer m.Destroy()
		b.ReportAllocs()
		for i := range b.N {
			k := uint64(i & 63)
			m.Insert(k, uint32(i))
			if i&255 == 255 {
				m.RemoveAll(k)
			}
		}
	})
	b.Run("builtin", func(b *testing.B) {
		m := make(map[uint64][]uint32)
		b.ReportAllocs()
		for i := range b.N {
			k := uint64(i & 63)
			m[k] = append(m[k], uint32(i))
			if i&255 == 255 {
				delete(m, k)
			}
		}
	})
}
