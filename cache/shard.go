package cache

import (
	"sync"

	"github.com/IvanBrykalov/treebin/hashmap"
	"github.com/IvanBrykalov/treebin/internal/util"
	"github.com/IvanBrykalov/treebin/policy/lru"
)

// shard is an independent partition of the cache: one lock guarding one
// access-ordered hashmap.Map bounded by the lru policy.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu sync.Mutex
	m  *hashmap.Map[K, V]

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

// newShard builds a shard holding at most capacity entries.
func newShard[K comparable, V any](capacity int, met *shardMetrics, opt Options[K, V]) *shard[K, V] {
	s := &shard[K, V]{}
	s.m = hashmap.MustNew(hashmap.Options[K, V]{
		InitialCapacity: capacity,
		Order:           hashmap.AccessOrder,
		Policy:          lru.New[K, V](capacity),
		// The shard was picked by the top hash bits; index buckets by the low ones.
		Hasher:  func(k K) uint32 { return uint32(util.Hash64(k)) },
		Metrics: met,
		OnEvict: func(k K, v V) {
			s.evicts.Add(1)
			if opt.OnEvict != nil {
				opt.OnEvict(k, v)
			}
		},
	})
	return s
}

// Add inserts a NEW entry (no update). Returns false if the key exists.
func (s *shard[K, V]) Add(k K, v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, loaded := s.m.PutIfAbsent(k, v)
	return !loaded
}

// Set inserts or updates an entry and promotes it to MRU.
func (s *shard[K, V]) Set(k K, v V) {
	s.mu.Lock()
	s.m.Put(k, v)
	s.mu.Unlock()
}

// Get returns the value and promotes the entry to MRU.
func (s *shard[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	v, ok := s.m.Get(k)
	s.mu.Unlock()

	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Peek returns the value without touching recency or counters.
func (s *shard[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Peek(k)
}

// Remove deletes an entry by key. Returns true if the entry existed.
// Explicit removals are not counted as evictions.
func (s *shard[K, V]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m.Remove(k)
	return ok
}

// Len returns the number of resident entries in this shard.
func (s *shard[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Len()
}
