// Package hashtable implements hash tables keyed by uint64 whose storage
// lives in memory obtained from an alloc.Allocator.
//
// # Layout
//
// A table keeps four dense arrays:
//
//   - buckets: head node of each chain, or end-of-list
//   - indices: chain nodes {key, next, value position}
//   - keys: the key of each value, parallel to values
//   - values: packed element bytes
//
// Keys are mapped to buckets by key mod bucket count, so callers hash their
// real keys first (HashString, HashBytes, HashFold, HashUint64). When the
// load factor would exceed 0.7 the table rehashes into len*2+10 buckets.
//
// Removal never leaves holes: the last chain node moves into the freed node
// slot and the last value moves into the freed value slot, and whichever
// pointer referenced the moved entry is patched. Values() therefore always
// returns Len() packed elements, in an order that changes on removal.
//
// # Variants
//
// Table holds at most one value per key; Set overwrites in place. Multi
// appends on every Insert and walks same-key entries with FindFirst and
// FindNext. Map and MultiMap are typed wrappers for pointer-free T.
//
// # Usage Example
//
//	m := hashtable.NewMap[uint32](alloc.DefaultHeap())
//	defer m.Destroy()
//
//	m.Set(hashtable.HashString("software"), 42)
//	if v, ok := m.Get(hashtable.HashString("software")); ok {
//	    fmt.Println(v)
//	}
//
// Slices returned by Get, Value, Values and Items alias table storage and are
// invalidated by the next mutation. Tables are not safe for concurrent use.
package hashtable
