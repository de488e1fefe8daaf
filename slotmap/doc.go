// Package slotmap implements a generational slot map: a dense array of
// fixed-size items addressed by stable IDs.
//
// An ID packs a slot index with the generation the slot had when the item
// was added. Removing an item bumps nothing immediately; the next Add that
// reuses the slot increments its generation, so every ID issued for the
// earlier item stops matching. Freed slots are reused in FIFO order, which
// spreads generation turnover across slots. A slot whose 32-bit generation
// is exhausted is retired and never reused.
//
// Items are kept packed with no tombstones: Remove moves the last item into
// the hole and repoints its slot. Iterate with Items and IDs (or Map.All);
// the order is unspecified and changes on removal.
//
// Has is safe for any ID. Lookup and Remove require a live ID; under the
// assert build tag a stale ID panics with ErrStaleID.
package slotmap
