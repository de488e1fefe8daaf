package alloc

import "testing"

var sink []byte

// BenchmarkAllocate measures a 64 byte allocate/deallocate cycle.
func BenchmarkAllocate(b *testing.B) {
	b.Run("heap", func(b *testing.B) {
		h := &Heap{}
		b.ReportAllocs()
		for range b.N {
			sink = h.Allocate(64, 8)
			h.Deallocate(sink)
		}
	})
	b.Run("scratch", func(b *testing.B) {
		s, err := NewScratch(&Heap{}, 64<<10)
		if err != nil {
			b.Fatal(err)
		}
		defer s.Destroy()
		b.ReportAllocs()
		for range b.N {
			sink = s.Allocate(64, 8)
			s.Deallocate(sink)
		}
	})
	b.Run("temp256", func(b *testing.B) {
		var t Temp256
		t.Init(&Heap{})
		defer t.Destroy()
		b.ReportAllocs()
		for i := range b.N {
			sink = t.Allocate(64, 8)
			if i&1023 == 1023 {
				t.Destroy()
			}
		}
	})
	b.Run("builtin", func(b *testing.B) {
		b.ReportAllocs()
		for range b.N {
			sink = make([]byte, 64)
		}
	})
}
