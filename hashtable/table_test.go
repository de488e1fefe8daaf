package hashtable

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/alloc"
)

func u64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func newChecked(t *testing.T) *alloc.Checked {
	t.Helper()
	mem := alloc.NewChecked(&alloc.Heap{})
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

// assertInvariants walks every chain and checks that each node and each value
// slot is referenced exactly once, that nodes sit in the bucket their key maps
// to, that same-key nodes are adjacent and that the load factor holds.
func assertInvariants(t *testing.T, c *core) {
	t.Helper()
	n := c.indices.Len()
	require.Equal(t, n, c.keys.Len())
	require.Equal(t, n*c.elemSize, c.values.Len())
	if c.buckets.Len() == 0 {
		require.Zero(t, n)
		return
	}
	require.LessOrEqual(t, n*maxLoadDen, c.buckets.Len()*maxLoadNum)

	idx := c.indices.Items()
	keys := c.keys.Items()
	nodeSeen := make([]bool, n)
	valueSeen := make([]bool, n)
	for b, head := range c.buckets.Items() {
		closed := map[uint64]bool{}
		var prevKey uint64
		first := true
		for i := head; i != endOfList; i = idx[i].next {
			require.Less(t, int(i), n)
			require.False(t, nodeSeen[i], "node %d linked twice", i)
			nodeSeen[i] = true
			require.Equal(t, uint32(b), c.bucketOf(idx[i].key))

			v := idx[i].value
			require.Less(t, int(v), n)
			require.False(t, valueSeen[v], "value %d referenced twice", v)
			valueSeen[v] = true
			require.Equal(t, idx[i].key, keys[v])

			if !first && prevKey != idx[i].key {
				closed[prevKey] = true
			}
			require.False(t, closed[idx[i].key], "key %d split within its chain", idx[i].key)
			prevKey, first = idx[i].key, false
		}
	}
	for i := range n {
		require.True(t, nodeSeen[i], "node %d unreachable", i)
	}
}

func TestTable_SetGetOverwrite(t *testing.T) {
	tbl := New(newChecked(t), 8)
	defer tbl.Destroy()

	assert.False(t, tbl.Has(1))
	_, ok := tbl.Get(1)
	assert.False(t, ok)
	tbl.Remove(1) // missing key is a no-op

	tbl.Set(1, u64(100))
	tbl.Set(2, u64(200))
	tbl.Set(1, u64(101))
	assert.Equal(t, 2, tbl.Len())

	got, ok := tbl.Get(1)
	require.True(t, ok)
	assert.Equal(t, u64(101), got)
	assertInvariants(t, &tbl.core)

	tbl.Remove(1)
	assert.False(t, tbl.Has(1))
	assert.True(t, tbl.Has(2))
	assert.Equal(t, []uint64{2}, tbl.Keys())
	assert.Equal(t, u64(200), tbl.Values())
	assertInvariants(t, &tbl.core)
}

func TestTable_GrowthKeepsLoadFactor(t *testing.T) {
	tbl := New(newChecked(t), 8)
	defer tbl.Destroy()

	for i := range uint64(1000) {
		tbl.Set(i*31, u64(i))
		if i%50 == 0 {
			assertInvariants(t, &tbl.core)
		}
	}
	st := tbl.Stats()
	assert.Equal(t, 1000, st.Entries)
	assert.LessOrEqual(t, st.LoadFactor, 0.7)
	for i := range uint64(1000) {
		got, ok := tbl.Get(i * 31)
		require.True(t, ok)
		require.Equal(t, u64(i), got)
	}
}

func TestTable_ChainCompaction(t *testing.T) {
	tbl := New(newChecked(t), 8)
	defer tbl.Destroy()

	tbl.Reserve(8)
	nb := uint64(tbl.Stats().Buckets)
	require.Equal(t, uint64(16), nb)

	// every key lands in bucket 3
	for i := range uint64(8) {
		tbl.Set(3+i*nb, u64(i))
	}
	require.Equal(t, 8, tbl.Stats().LongestChain)
	require.Equal(t, 16, tbl.Stats().Buckets, "reserve avoids growth")

	for _, i := range []uint64{0, 7, 3, 4} {
		tbl.Remove(3 + i*nb)
		assertInvariants(t, &tbl.core)
	}
	for _, i := range []uint64{1, 2, 5, 6} {
		got, ok := tbl.Get(3 + i*nb)
		require.True(t, ok)
		require.Equal(t, u64(i), got)
	}
	assert.Equal(t, 4, tbl.Len())
}

func TestTable_RandomOpsMatchGoMap(t *testing.T) {
	tbl := New(newChecked(t), 8)
	defer tbl.Destroy()

	rng := rand.New(rand.NewPCG(42, 7))
	model := map[uint64]uint64{}
	for i := range 20000 {
		key := rng.Uint64N(600)
		if rng.IntN(4) == 0 {
			key *= 1 << 20 // clustered keys share low bits
		}
		switch rng.IntN(3) {
		case 0, 1:
			v := rng.Uint64()
			tbl.Set(key, u64(v))
			model[key] = v
		case 2:
			tbl.Remove(key)
			delete(model, key)
		}
		if i%500 == 0 {
			assertInvariants(t, &tbl.core)
		}
	}

	assertInvariants(t, &tbl.core)
	require.Equal(t, len(model), tbl.Len())
	for k, v := range model {
		got, ok := tbl.Get(k)
		require.True(t, ok, "key %d", k)
		require.Equal(t, u64(v), got)
	}
	for i, k := range tbl.Keys() {
		require.Equal(t, u64(model[k]), tbl.Values()[i*8:i*8+8])
	}
}

func TestTable_ZeroElemSizeIsASet(t *testing.T) {
	tbl := New(newChecked(t), 0)
	defer tbl.Destroy()

	for i := range uint64(20) {
		tbl.Set(i, nil)
	}
	tbl.Remove(5)
	assert.Equal(t, 19, tbl.Len())
	assert.False(t, tbl.Has(5))
	assert.Empty(t, tbl.Values())
	assertInvariants(t, &tbl.core)
}

func TestTable_ClearAndDestroy(t *testing.T) {
	mem := alloc.NewChecked(&alloc.Heap{})
	tbl := New(mem, 4)
	for i := range uint64(100) {
		tbl.Set(i, []byte{1, 2, 3, 4})
	}
	buckets := tbl.Stats().Buckets

	tbl.Clear()
	assert.Zero(t, tbl.Len())
	assert.False(t, tbl.Has(10))
	assert.Equal(t, buckets, tbl.Stats().Buckets)
	assertInvariants(t, &tbl.core)

	tbl.Set(10, []byte{9, 9, 9, 9})
	assert.Equal(t, 1, tbl.Len())

	tbl.Destroy()
	mem.AssertSize(t, 0)
}

func TestNew_NegativeElemSizePanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrElemSize)
	}()
	New(&alloc.Heap{}, -1)
}
