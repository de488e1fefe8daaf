package hashtable

import (
	"fmt"
	"math"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/array"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/debug"
)

const endOfList uint32 = math.MaxUint32

// Load factor limit expressed as a ratio: grow once len*maxLoadDen > buckets*maxLoadNum.
const (
	maxLoadNum = 7
	maxLoadDen = 10
)

// index is a chain node. value is the position of the entry in keys/values.
type index struct {
	key   uint64
	next  uint32
	value uint32
}

// findResult locates a node: its bucket, the node before it in the chain
// (endOfList when it is the bucket head) and the node itself.
type findResult struct {
	bucket uint32
	prev   uint32
	i      uint32
}

func (r findResult) found() bool { return r.i != endOfList }

// core holds the storage shared by Table and Multi.
type core struct {
	elemSize int
	buckets  array.Array[uint32]
	indices  array.Array[index]
	keys     array.Array[uint64]
	values   array.Array[byte]
}

func (c *core) init(a alloc.Allocator, elemSize int) {
	if elemSize < 0 {
		panic(fmt.Errorf("%w: %d", ErrElemSize, elemSize))
	}
	c.elemSize = elemSize
	c.buckets.Init(a)
	c.indices.Init(a)
	c.keys.Init(a)
	c.values.InitAlign(a, alloc.DefaultAlign)
}

func (c *core) bucketOf(key uint64) uint32 {
	return uint32(key % uint64(c.buckets.Len()))
}

func (c *core) find(key uint64) findResult {
	r := findResult{bucket: endOfList, prev: endOfList, i: endOfList}
	if c.buckets.Len() == 0 {
		return r
	}
	r.bucket = c.bucketOf(key)
	idx := c.indices.Items()
	for i := c.buckets.Items()[r.bucket]; i != endOfList; i = idx[i].next {
		if idx[i].key == key {
			r.i = i
			return r
		}
		r.prev = i
	}
	return r
}

// findEntry locates node by identity rather than by key.
func (c *core) findEntry(node uint32) findResult {
	idx := c.indices.Items()
	r := findResult{bucket: c.bucketOf(idx[node].key), prev: endOfList, i: endOfList}
	for i := c.buckets.Items()[r.bucket]; i != endOfList; i = idx[i].next {
		if i == node {
			r.i = i
			return r
		}
		r.prev = i
	}
	return r
}

// link inserts node i into its chain ahead of the first node with the same
// key, or at the tail. Same-key nodes therefore stay adjacent.
func (c *core) link(i uint32) {
	idx := c.indices.Items()
	heads := c.buckets.Items()
	b := c.bucketOf(idx[i].key)

	prev := endOfList
	j := heads[b]
	for j != endOfList && idx[j].key != idx[i].key {
		prev = j
		j = idx[j].next
	}
	idx[i].next = j
	if prev == endOfList {
		heads[b] = i
	} else {
		idx[prev].next = i
	}
}

// add appends an entry for key and returns its value bytes.
func (c *core) add(key uint64) []byte {
	n := c.indices.Len()
	if uint64(n) >= uint64(endOfList) {
		panic(fmt.Errorf("%w: hash table holds %d entries", alloc.ErrBadSize, n))
	}
	v := uint32(c.keys.Len())
	c.keys.Push(key)
	c.values.Resize(c.values.Len() + c.elemSize)
	c.indices.Push(index{key: key, next: endOfList, value: v})

	if c.full() {
		c.rehash(c.indices.Len()*2 + 10)
	} else {
		c.link(uint32(n))
	}
	return c.value(v)
}

func (c *core) full() bool {
	return c.indices.Len()*maxLoadDen > c.buckets.Len()*maxLoadNum
}

// rehash relinks every node into nb fresh buckets.
func (c *core) rehash(nb int) {
	c.buckets.Resize(nb)
	heads := c.buckets.Items()
	for i := range heads {
		heads[i] = endOfList
	}
	idx := c.indices.Items()
	for i := range idx {
		idx[i].next = endOfList
	}
	for i := range idx {
		c.link(uint32(i))
	}
}

func (c *core) reserve(n int) {
	if n <= 0 {
		return
	}
	want, ok := buf.Mul(n, maxLoadDen)
	if !ok {
		panic(fmt.Errorf("%w: reserve %d entries", alloc.ErrBadSize, n))
	}
	nb := buf.NextPow2(want/maxLoadNum + 1)
	c.indices.Reserve(n)
	c.keys.Reserve(n)
	if bytes, ok := buf.Mul(n, c.elemSize); ok {
		c.values.Reserve(bytes)
	}
	if nb > c.buckets.Len() {
		c.rehash(nb)
	}
}

func (c *core) value(v uint32) []byte {
	off := int(v) * c.elemSize
	return c.values.Items()[off : off+c.elemSize : off+c.elemSize]
}

// erase unlinks the node at r and compacts the index, key and value arrays.
func (c *core) erase(r findResult) {
	idx := c.indices.Items()
	heads := c.buckets.Items()
	if r.prev == endOfList {
		heads[r.bucket] = idx[r.i].next
	} else {
		idx[r.prev].next = idx[r.i].next
	}
	v := idx[r.i].value

	// move the last node into the hole and repoint whoever referenced it
	last := uint32(len(idx) - 1)
	if r.i != last {
		lr := c.findEntry(last)
		debug.Assert(lr.found(), "hashtable: last index node is not linked")
		if lr.prev == endOfList {
			heads[lr.bucket] = r.i
		} else {
			idx[lr.prev].next = r.i
		}
		idx[r.i] = idx[last]
	}
	c.indices.Pop()
	c.removeValue(v)
}

// removeValue moves the last key/value entry into position v and patches the
// node that referenced it.
func (c *core) removeValue(v uint32) {
	keys := c.keys.Items()
	last := uint32(len(keys) - 1)
	if v != last {
		key := keys[last]
		keys[v] = key
		copy(c.value(v), c.value(last))

		idx := c.indices.Items()
		i := c.buckets.Items()[c.bucketOf(key)]
		for ; i != endOfList; i = idx[i].next {
			if idx[i].value == last {
				idx[i].value = v
				break
			}
		}
		debug.Assert(i != endOfList, "hashtable: moved value has no index node")
	}
	c.keys.Pop()
	c.values.Resize(c.values.Len() - c.elemSize)
}

func (c *core) clear() {
	c.indices.Clear()
	c.keys.Clear()
	c.values.Clear()
	heads := c.buckets.Items()
	for i := range heads {
		heads[i] = endOfList
	}
}

func (c *core) stats() Stats {
	s := Stats{Entries: c.indices.Len(), Buckets: c.buckets.Len()}
	if s.Buckets == 0 {
		return s
	}
	s.LoadFactor = float64(s.Entries) / float64(s.Buckets)
	idx := c.indices.Items()
	for _, head := range c.buckets.Items() {
		n := 0
		for i := head; i != endOfList; i = idx[i].next {
			n++
		}
		if n > 0 {
			s.UsedBuckets++
		}
		s.LongestChain = max(s.LongestChain, n)
	}
	return s
}

func (c *core) destroy() {
	c.buckets.Destroy()
	c.indices.Destroy()
	c.keys.Destroy()
	c.values.Destroy()
}

// Stats describes the shape of a table.
type Stats struct {
	Entries      int
	Buckets      int
	UsedBuckets  int
	LongestChain int
	LoadFactor   float64
}
