package alloc

// tempChunkSize is the minimum size of the first chunk obtained from the
// backing allocator. Every new chunk doubles it.
const tempChunkSize = 4 * 1024

// chunk is a block obtained from the backing allocator. Chunks are chained
// newest-first; prev is the chunk that was active before this one.
type chunk struct {
	mem  []byte
	prev *chunk
}

// temp is the bump allocator shared by the fixed-size Temp types.
type temp struct {
	backing   Allocator
	inline    []byte
	cur       []byte // active chunk, initially the inline buffer
	p         int    // bump offset in cur
	chunks    *chunk // newest backing chunk
	chunkSize int
}

func (t *temp) init(inline []byte, backing Allocator) {
	if backing == nil {
		backing = defaultTempBacking()
	}
	t.backing = backing
	t.inline = inline
	t.cur = inline
	t.p = 0
	t.chunks = nil
	t.chunkSize = tempChunkSize
}

// Allocate implements Allocator. Memory is bumped from the active chunk;
// when it is exhausted a new chunk of at least twice the previous size is
// obtained from the backing allocator.
func (t *temp) Allocate(size, align int) []byte {
	align, ok := CheckAlign(align)
	if !ok || size < 0 {
		return nil
	}
	data := AlignOffset(t.cur, t.p, align)
	if data+max(size, 1) > len(t.cur) {
		need := size + align
		if need < size {
			return nil
		}
		n := max(need, t.chunkSize)
		t.chunkSize *= 2

		mem := t.backing.Allocate(n, DefaultAlign)
		if mem == nil {
			return nil
		}
		t.chunks = &chunk{mem: mem, prev: t.chunks}
		t.cur = mem
		data = AlignOffset(mem, 0, align)
	}
	t.p = data + size
	return Span(t.cur, data, size)
}

// Deallocate is a no-op; memory is reclaimed by Destroy.
func (t *temp) Deallocate([]byte) {}

// AllocatedFor implements Allocator. Temp allocators do not track sizes.
func (t *temp) AllocatedFor([]byte) int { return SizeNotTracked }

// AllocatedTotal implements Allocator. Temp allocators do not track sizes.
func (t *temp) AllocatedTotal() int { return SizeNotTracked }

// Chunks returns the number of chunks obtained from the backing allocator.
func (t *temp) Chunks() int {
	n := 0
	for c := t.chunks; c != nil; c = c.prev {
		n++
	}
	return n
}

// Destroy releases every chunk obtained from the backing allocator and
// rewinds to the inline buffer. It must run before the owner goes out of
// scope or backing memory leaks.
func (t *temp) Destroy() {
	for c := t.chunks; c != nil; {
		prev := c.prev
		t.backing.Deallocate(c.mem)
		c.prev = nil
		c = prev
	}
	t.chunks = nil
	t.cur = t.inline
	t.p = 0
	t.chunkSize = tempChunkSize
}

// Temp64 is a temp allocator with a 64 byte inline buffer. Call Init before
// use and Destroy when done; a Temp64 must not be copied after Init.
type Temp64 struct {
	temp
	buf [64]byte
}

// Init binds the backing allocator. A nil backing selects the process
// scratch allocator, or the default heap when Init has not been called.
func (t *Temp64) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

// Temp128 is a temp allocator with a 128 byte inline buffer.
type Temp128 struct {
	temp
	buf [128]byte
}

// Init binds the backing allocator.
func (t *Temp128) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

// Temp256 is a temp allocator with a 256 byte inline buffer.
type Temp256 struct {
	temp
	buf [256]byte
}

// Init binds the backing allocator.
func (t *Temp256) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

// Temp512 is a temp allocator with a 512 byte inline buffer.
type Temp512 struct {
	temp
	buf [512]byte
}

// Init binds the backing allocator.
func (t *Temp512) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

// Temp1024 is a temp allocator with a 1 KiB inline buffer.
type Temp1024 struct {
	temp
	buf [1024]byte
}

// Init binds the backing allocator.
func (t *Temp1024) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

// Temp2048 is a temp allocator with a 2 KiB inline buffer.
type Temp2048 struct {
	temp
	buf [2048]byte
}

// Init binds the backing allocator.
func (t *Temp2048) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

// Temp4096 is a temp allocator with a 4 KiB inline buffer.
type Temp4096 struct {
	temp
	buf [4096]byte
}

// Init binds the backing allocator.
func (t *Temp4096) Init(backing Allocator) { t.temp.init(t.buf[:], backing) }

var (
	_ Allocator = (*Temp64)(nil)
	_ Allocator = (*Temp128)(nil)
	_ Allocator = (*Temp256)(nil)
	_ Allocator = (*Temp512)(nil)
	_ Allocator = (*Temp1024)(nil)
	_ Allocator = (*Temp2048)(nil)
	_ Allocator = (*Temp4096)(nil)
)
