package pool

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/alloc"
)

var lookups = []Lookup{LookupHash, LookupLinear, LookupTree}

func newTestPool(t *testing.T, opts Options) (*Pool, *alloc.Checked) {
	t.Helper()
	backing := alloc.NewChecked(&alloc.Heap{})
	p, err := New(backing, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		p.Destroy()
		backing.AssertSize(t, 0)
	})
	return p, backing
}

func TestPool_CyclesReuseBlocks(t *testing.T) {
	for _, lk := range lookups {
		t.Run(lk.String(), func(t *testing.T) {
			p, _ := newTestPool(t, Options{BlockSize: 16, PageSize: 256, Lookup: lk})

			blocks := make([][]byte, 0, 300)
			for cycle := range 300 {
				for range 300 {
					b := p.Allocate(16, 8)
					require.NotNil(t, b)
					blocks = append(blocks, b)
				}
				assert.Equal(t, 300*16, p.AllocatedTotal())
				for _, b := range blocks {
					p.Deallocate(b)
				}
				blocks = blocks[:0]
				require.Zero(t, p.AllocatedTotal(), "cycle %d", cycle)
				require.Equal(t, 2, p.Stats().Pages, "cycle %d", cycle)
			}
			assert.Zero(t, p.Stats().Fallbacks)
		})
	}
}

func TestPool_BlocksAreDistinctAndAligned(t *testing.T) {
	for _, lk := range lookups {
		t.Run(lk.String(), func(t *testing.T) {
			p, _ := newTestPool(t, Options{BlockSize: 24, BlockAlign: 16, PageSize: 8, Lookup: lk})
			assert.Equal(t, 32, p.Options().BlockSize, "block size rounds up to the alignment")

			seen := map[uintptr]bool{}
			var blocks [][]byte
			for i := range 20 {
				b := p.Allocate(20, 16)
				require.NotNil(t, b)
				require.Len(t, b, 20)
				assert.Zero(t, alloc.Addr(b)%16)
				assert.False(t, seen[alloc.Addr(b)])
				seen[alloc.Addr(b)] = true
				assert.True(t, p.Owns(b))
				assert.Equal(t, 32, p.AllocatedFor(b))
				for j := range b {
					b[j] = byte(i)
				}
				blocks = append(blocks, b)
			}
			assert.Equal(t, 3, p.Stats().Pages)
			for i, b := range blocks {
				for _, c := range b {
					require.Equal(t, byte(i), c)
				}
				p.Deallocate(b)
			}
			assert.Zero(t, p.AllocatedTotal())
			assert.Equal(t, 24, p.Stats().FreeBlocks)
		})
	}
}

func TestPool_FirstPageHandsOutBlockZero(t *testing.T) {
	p, _ := newTestPool(t, Options{BlockSize: 64, PageSize: 4})
	a := p.Allocate(64, 0)
	b := p.Allocate(64, 0)
	assert.Equal(t, alloc.Addr(a)+64, alloc.Addr(b))
	assert.Zero(t, alloc.Addr(a)%uintptr(cacheLine()), "pages are cache line aligned")
	p.Deallocate(a)
	p.Deallocate(b)
}

func TestPool_FallbackAndForeignPointers(t *testing.T) {
	for _, lk := range lookups {
		t.Run(lk.String(), func(t *testing.T) {
			p, backing := newTestPool(t, Options{BlockSize: 32, PageSize: 16, Lookup: lk})

			big := p.Allocate(100, 8)
			require.NotNil(t, big)
			assert.False(t, p.Owns(big))
			assert.Equal(t, alloc.SizeNotTracked, p.AllocatedFor(big))

			overAligned := p.Allocate(16, 64)
			require.NotNil(t, overAligned)
			assert.False(t, p.Owns(overAligned))
			assert.Equal(t, 2, p.Stats().Fallbacks)
			assert.Zero(t, p.AllocatedTotal(), "fallback memory is not pool memory")

			// memory from the backing allocator that the pool never saw
			foreign := backing.Allocate(32, 8)
			live := backing.Live()
			p.Deallocate(foreign)
			p.Deallocate(big)
			p.Deallocate(overAligned)
			assert.Equal(t, live-3, backing.Live())

			// an interior pointer of a block is not a block
			blk := p.Allocate(32, 8)
			assert.False(t, p.Owns(blk[8:]))
			p.Deallocate(blk)
		})
	}
}

func TestPool_RandomChurn(t *testing.T) {
	for _, lk := range lookups {
		t.Run(lk.String(), func(t *testing.T) {
			p, _ := newTestPool(t, Options{BlockSize: 48, PageSize: 32, Lookup: lk})
			rng := rand.New(rand.NewPCG(8, uint64(lk)))

			live := map[uintptr][]byte{}
			var order []uintptr
			for range 5000 {
				if len(order) > 0 && rng.IntN(2) == 0 {
					j := rng.IntN(len(order))
					addr := order[j]
					p.Deallocate(live[addr])
					delete(live, addr)
					order[j] = order[len(order)-1]
					order = order[:len(order)-1]
					continue
				}
				b := p.Allocate(1+rng.IntN(48), 8)
				require.NotNil(t, b)
				_, dup := live[alloc.Addr(b)]
				require.False(t, dup, "block handed out twice")
				live[alloc.Addr(b)] = b
				order = append(order, alloc.Addr(b))
				require.Equal(t, len(live)*48, p.AllocatedTotal())
			}
			st := p.Stats()
			assert.Equal(t, st.Pages*32-len(live), st.FreeBlocks)
			for _, b := range live {
				p.Deallocate(b)
			}
			assert.Zero(t, p.AllocatedTotal())
		})
	}
}

func TestPool_ZeroSizeAllocation(t *testing.T) {
	p, _ := newTestPool(t, Options{BlockSize: 8})
	b := p.Allocate(0, 0)
	require.NotNil(t, b)
	assert.Empty(t, b)
	assert.True(t, p.Owns(b))
	p.Deallocate(b)
	assert.Zero(t, p.AllocatedTotal())
	assert.Equal(t, DefaultPageSize, p.Options().PageSize)
}

func TestPool_BackingExhausted(t *testing.T) {
	p, err := New(failing{}, Options{BlockSize: 8})
	require.NoError(t, err)
	defer p.Destroy()
	assert.Nil(t, p.Allocate(8, 8))
	assert.Nil(t, p.Allocate(8, 3))
}

type failing struct{}

func (failing) Allocate(int, int) []byte { return nil }
func (failing) Deallocate([]byte)        {}
func (failing) AllocatedFor([]byte) int  { return alloc.SizeNotTracked }
func (failing) AllocatedTotal() int      { return alloc.SizeNotTracked }

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		err  error
	}{
		{"zero block", Options{}, ErrBlockSize},
		{"negative block", Options{BlockSize: -4}, ErrBlockSize},
		{"bad align", Options{BlockSize: 8, BlockAlign: 12}, alloc.ErrBadAlign},
		{"negative page", Options{BlockSize: 8, PageSize: -1}, ErrPageSize},
		{"huge page", Options{BlockSize: 1 << 20, PageSize: 1 << 20}, ErrPageSize},
		{"unknown lookup", Options{BlockSize: 8, Lookup: Lookup(7)}, ErrLookup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&alloc.Heap{}, tt.opts)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := New(nil, Options{BlockSize: 8})
	assert.ErrorIs(t, err, alloc.ErrNilBacking)
}

func TestParseLookup(t *testing.T) {
	for _, lk := range lookups {
		got, err := ParseLookup(lk.String())
		require.NoError(t, err)
		assert.Equal(t, lk, got)
	}
	_, err := ParseLookup("btree")
	assert.ErrorIs(t, err, ErrLookup)
	assert.Equal(t, "Lookup(9)", Lookup(9).String())
}
