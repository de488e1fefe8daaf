package slotmap

import "errors"

var (
	// ErrStaleID is the panic value for Lookup or Remove with an ID whose
	// item was removed, when built with the assert tag.
	ErrStaleID = errors.New("slotmap: stale id")

	// ErrElemSize is the panic value (wrapped) for a negative element size.
	ErrElemSize = errors.New("slotmap: invalid element size")

	// ErrFull is the panic value (wrapped) when the slot array cannot grow.
	ErrFull = errors.New("slotmap: slot array full")
)
