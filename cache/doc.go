// Package cache provides a generic, sharded, goroutine-safe LRU cache built
// on hashmap.Map, with singleflight loading and metrics hooks.
//
// # Design
//
//   - Concurrency: the cache is split into shards, each protected by a
//     Mutex (a hit reorders the LRU list, so reads write too). The default
//     shard count is chosen by a heuristic (≈ 2*GOMAXPROCS) and is a power
//     of two, never larger than Capacity.
//
//   - Storage: each shard owns one hashmap.Map in access order with the lru
//     policy, bounded to ceil(Capacity/Shards) entries. Colliding keys end up
//     in red-black tree bins, so a hostile key set degrades lookups to
//     O(log n) rather than O(n).
//
//   - Sharding: the shard is picked from the top bits of the 64-bit key
//     hash; the shard map indexes buckets with the low bits.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using
//     singleflight. If Loader is nil, GetOrLoad returns ErrNoLoader. Failed
//     loads are not cached.
//
//   - Metrics: Options.Metrics receives the shard maps' signals (hits,
//     misses, evictions, resizes, treeify/untreeify) and the cache-wide
//     size. NoopMetrics is the default; metrics/prom exports to Prometheus.
//
// # Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// With GetOrLoad (singleflight)
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil // e.g. fetch from DB
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// # Exporting metrics
//
//	m := prom.New(nil, "treebin", "demo", nil)
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Metrics:  m,
//	})
package cache
