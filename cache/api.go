package cache

import "context"

// Cache is a sharded, in-memory key/value cache with LRU eviction.
// All methods are safe for concurrent use by multiple goroutines.
//
// Every shard is a hashmap.Map in access order bounded by the lru policy,
// so operations cost one shard lock plus an amortized O(1) map operation
// (O(log n) inside a colliding tree bin).
type Cache[K comparable, V any] interface {
	// Add inserts k→v only if k is not present.
	// Returns false if the key already exists (no update is performed).
	Add(k K, v V) bool

	// Set inserts or updates k→v and makes it the most recently used entry
	// of its shard. Inserting into a full shard evicts its LRU entry.
	Set(k K, v V)

	// Get returns the value for k and a boolean flag indicating presence.
	// On hit, the entry becomes the most recently used one.
	Get(k K) (V, bool)

	// Peek is Get without promotion and without hit/miss accounting.
	Peek(k K) (V, bool)

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Stats sums the per-shard counters.
	Stats() Stats

	// Close marks the cache closed: writes are ignored, reads miss and
	// GetOrLoad returns ErrClosed. It always returns nil.
	Close() error

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Loads     uint64 // Loader invocations
	Coalesced uint64 // GetOrLoad calls whose load result was shared with other callers
}
