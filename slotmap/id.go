package slotmap

import "fmt"

// ID is a handle to an item: the slot's generation in the high 32 bits and
// the slot index in the low 32 bits. The zero ID is never issued.
type ID uint64

// Nil is the zero ID.
const Nil ID = 0

func makeID(gen, slot uint32) ID { return ID(uint64(gen)<<32 | uint64(slot)) }

// Slot returns the slot index.
func (id ID) Slot() uint32 { return uint32(id) }

// Gen returns the generation.
func (id ID) Gen() uint32 { return uint32(id >> 32) }

func (id ID) String() string { return fmt.Sprintf("%d:%d", id.Slot(), id.Gen()) }
