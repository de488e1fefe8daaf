package alloc

import "fmt"

// Process-wide allocators. They are not safe for concurrent use; initialise
// them once from main before spawning goroutines that allocate.
var (
	defaultHeap    = &Heap{}
	defaultScratch *Scratch
)

// DefaultHeap returns the process heap allocator.
func DefaultHeap() *Heap { return defaultHeap }

// DefaultScratch returns the process scratch allocator, or nil before Init.
func DefaultScratch() *Scratch { return defaultScratch }

// Init creates the process scratch allocator with a ring of scratchSize
// bytes on top of the default heap.
func Init(scratchSize int) error {
	if defaultScratch != nil {
		return ErrInitialized
	}
	s, err := NewScratch(defaultHeap, scratchSize)
	if err != nil {
		return fmt.Errorf("init scratch: %w", err)
	}
	defaultScratch = s
	return nil
}

// Shutdown destroys the process scratch allocator.
func Shutdown() {
	if defaultScratch == nil {
		return
	}
	defaultScratch.Destroy()
	defaultScratch = nil
}

func defaultTempBacking() Allocator {
	if s := defaultScratch; s != nil {
		return s
	}
	return defaultHeap
}
