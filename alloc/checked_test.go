package alloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingT struct {
	errors []string
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) Helper() {}

func TestChecked_TracksLiveAllocations(t *testing.T) {
	c := NewChecked(&Heap{})
	a := c.Allocate(10, 8)
	b := c.Allocate(20, 8)
	assert.Equal(t, 30, c.CurrentAlloc())
	assert.Equal(t, 2, c.Live())
	assert.Equal(t, c.mem.AllocatedTotal(), c.AllocatedTotal())
	assert.Equal(t, c.mem.AllocatedFor(a), c.AllocatedFor(a))

	c.Deallocate(a)
	assert.Equal(t, 20, c.CurrentAlloc())

	rec := &recordingT{}
	c.AssertSize(rec, 0)
	assert.Len(t, rec.errors, 2, "one leak line plus the size mismatch")
	assert.Contains(t, rec.errors[0], "LEAK of 20 bytes")

	c.Deallocate(b)
	rec = &recordingT{}
	c.AssertSize(rec, 0)
	assert.Empty(t, rec.errors)
}

func TestChecked_FailedAllocationNotRecorded(t *testing.T) {
	c := NewChecked(failing{})
	assert.Nil(t, c.Allocate(10, 8))
	assert.Zero(t, c.Live())
	c.Deallocate(nil)
}
