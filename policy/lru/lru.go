// Package lru implements the capacity-bounded eviction policy.
package lru

import "github.com/IvanBrykalov/treebin/policy"

// lru evicts the eldest entry whenever the map holds more than capacity
// entries. Paired with hashmap.AccessOrder the eldest entry is the least
// recently used one; with hashmap.InsertionOrder it behaves as FIFO.
type lru[K comparable, V any] struct {
	h        policy.Hooks[K, V]
	capacity int
}

type lruPolicy[K comparable, V any] struct{ capacity int }

// New returns a Policy factory bounding each map to capacity entries.
// A capacity below 1 is treated as 1.
func New[K comparable, V any](capacity int) policy.Policy[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return lruPolicy[K, V]{capacity: capacity}
}

// New implements policy.Policy by binding the map hooks and returning
// a map-local policy instance.
func (p lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.MapPolicy[K, V] {
	return &lru[K, V]{h: h, capacity: p.capacity}
}

// OnInsert asks for the eldest entry to go once the bound is exceeded.
func (p *lru[K, V]) OnInsert(_ policy.Entry[K, V]) (evict bool) {
	return p.h.Len() > p.capacity
}

// OnAccess is a no-op: the map already moved the entry to the newest end.
func (p *lru[K, V]) OnAccess(_ policy.Entry[K, V]) {}

// OnRemove is a no-op for pure LRU (nothing to clean up in policy state).
func (p *lru[K, V]) OnRemove(_ policy.Entry[K, V]) {}
