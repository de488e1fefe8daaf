//go:build unix

package alloc

import (
	"golang.org/x/sys/unix"
)

const canMap = true

// mapBlock maps n bytes of anonymous private memory, or returns nil.
func mapBlock(n int) []byte {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}
	return b
}

// unmapBlock releases a mapping created by mapBlock. b must span the whole
// mapping.
func unmapBlock(b []byte) {
	_ = unix.Munmap(b)
}
