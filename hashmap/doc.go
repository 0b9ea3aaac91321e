// Package hashmap provides a generic hash map whose buckets adapt between
// singly linked chains and embedded red-black trees, with an optional
// ordering overlay (insertion or access order) and a pluggable eviction
// policy for building bounded LRU caches.
//
// # Design
//
//   - Storage: entries live in an arena and are addressed by stable handles.
//     Buckets, trees and the ordering overlay link entries by handle, so
//     resizing and converting buckets relink entries without recreating them.
//
//   - Hashing: the raw 32-bit hash (Options.Hasher) is spread with
//     h ^ (h >> 16) and the bucket index is hash & (capacity-1). Capacity is
//     always a power of two. A nil interface key hashes to 0.
//
//   - Buckets: a bucket is a chain until an insertion appends its 9th entry
//     while the table has at least 64 buckets; then it becomes a red-black
//     tree ordered by hash, the key's natural ordering (Options.Compare) and
//     a deterministic tie-break. Smaller tables double instead. A tree bin
//     with 6 or fewer entries, after a removal or a resize split, is
//     flattened back into a chain. Tree nodes also keep a bucket-local
//     thread (next/prev) that the rotations never touch; flattening walks it.
//
//   - Resize: when size exceeds capacity*LoadFactor the table doubles and
//     every bucket splits in two on the newly significant hash bit,
//     preserving relative order. Tables stop growing at 1<<30 buckets.
//
//   - Ordering overlay: with InsertionOrder or AccessOrder every entry is
//     also on a global doubly linked list, eldest first. In AccessOrder,
//     Get, Replace, updating Put and the compute family move the entry to
//     the newest end.
//
//   - Eviction: Options.Policy is consulted after every insertion with the
//     eldest entry; if it says so, that entry is removed and OnEvict runs.
//     lru.New(c) evicts once the map holds more than c entries.
//
//   - Iteration: Iter, Range and All are fail-fast. A structural change not
//     made through the iterator stops them with ErrConcurrentModification.
//
// # Basic usage
//
//	m := hashmap.MustNew(hashmap.Options[string, int]{})
//	m.Put("a", 1)
//	if v, ok := m.Get("a"); ok {
//	    _ = v
//	}
//	m.Remove("a")
//
// # Bounded LRU
//
//	m := hashmap.MustNew(hashmap.Options[string, []byte]{
//	    Order:  hashmap.AccessOrder,
//	    Policy: lru.New[string, []byte](10_000),
//	})
//
// # Thread-safety
//
// A Map must not be used by several goroutines at once. The cache package
// builds a sharded, mutex-guarded LRU cache on top of it.
package hashmap
