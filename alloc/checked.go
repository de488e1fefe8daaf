package alloc

import (
	"runtime"
)

// allocFrames is how many frames above Checked.Allocate the recorded caller
// sits: containers allocate through internal/array, so the interesting frame
// is the container method rather than the array growth helper.
const allocFrames = 2

// Checked wraps an allocator and records every live allocation so tests can
// assert that containers release all of their memory.
type Checked struct {
	mem  Allocator
	sz   int
	live map[uintptr]dalloc
}

type dalloc struct {
	pc   uintptr
	line int
	sz   int
}

// NewChecked wraps mem.
func NewChecked(mem Allocator) *Checked {
	return &Checked{mem: mem, live: make(map[uintptr]dalloc)}
}

// CurrentAlloc returns the number of requested bytes still allocated.
func (a *Checked) CurrentAlloc() int { return a.sz }

// Live returns the number of allocations not yet deallocated.
func (a *Checked) Live() int { return len(a.live) }

// Allocate implements Allocator.
func (a *Checked) Allocate(size, align int) []byte {
	out := a.mem.Allocate(size, align)
	if out == nil {
		return nil
	}
	a.sz += size
	info := dalloc{sz: size}
	if pc, _, l, ok := runtime.Caller(allocFrames); ok {
		info.pc, info.line = pc, l
	}
	a.live[Addr(out)] = info
	return out
}

// Deallocate implements Allocator.
func (a *Checked) Deallocate(b []byte) {
	if b == nil {
		return
	}
	if info, ok := a.live[Addr(b)]; ok {
		a.sz -= info.sz
		delete(a.live, Addr(b))
	}
	a.mem.Deallocate(b)
}

// AllocatedFor implements Allocator.
func (a *Checked) AllocatedFor(b []byte) int { return a.mem.AllocatedFor(b) }

// AllocatedTotal implements Allocator.
func (a *Checked) AllocatedTotal() int { return a.mem.AllocatedTotal() }

// TestingT is the subset of testing.TB used by AssertSize.
type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize reports every outstanding allocation when the live size differs
// from sz.
func (a *Checked) AssertSize(t TestingT, sz int) {
	t.Helper()
	if a.sz == sz {
		return
	}
	for _, info := range a.live {
		name := "unknown"
		if f := runtime.FuncForPC(info.pc); f != nil {
			name = f.Name()
		}
		t.Errorf("LEAK of %d bytes FROM %s line %d", info.sz, name, info.line)
	}
	t.Errorf("invalid memory size exp=%d, got=%d", sz, a.sz)
}

var _ Allocator = (*Checked)(nil)
