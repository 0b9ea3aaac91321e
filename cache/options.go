package cache

import "context"

// Options configures the cache behavior. Zero values are safe;
// sane defaults are applied in New():
//   - Shards <= 0  => auto (≈ 2*GOMAXPROCS, rounded up to a power of two)
//   - nil Metrics  => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. It is split evenly across shards
	// (rounded up), and must be > 0.
	Capacity int

	// Shards defines the number of shards, rounded up to a power of two and
	// reduced until it does not exceed Capacity.
	Shards int

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// Observability
	// OnEvict is called on LRU eviction under the shard lock; keep callbacks
	// lightweight and do not call back into the cache.
	OnEvict func(k K, v V)
	// Metrics receives the signals of every shard map. It is called under
	// the shard locks of several shards at once and must be goroutine-safe.
	Metrics Metrics
}
