package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/IvanBrykalov/treebin/internal/singleflight"
	"github.com/IvanBrykalov/treebin/internal/util"
)

// maxShardBuckets is the largest table a shard map grows to.
const maxShardBuckets = 1 << 30

var (
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrClosed is returned by GetOrLoad after Close.
	ErrClosed = errors.New("cache: closed")
)

// cache is a sharded in-memory KV store with LRU eviction.
// All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool

	opt Options[K, V]

	// resident entries and table buckets across shards, fed by shardMetrics
	size    atomic.Int64
	buckets atomic.Int64

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf        singleflight.Group[K, V]
	loads     util.PaddedAtomicUint64
	coalesced util.PaddedAtomicUint64
}

// New constructs a cache with the provided Options.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - Shards <= 0  -> auto, rounded up to the next power of two
//
// New panics if Capacity <= 0.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("Capacity must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	// number of shards -> power of two, never more shards than entries
	sh := opt.Shards
	if sh <= 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}
	for sh > 1 && sh > opt.Capacity {
		sh >>= 1
	}

	c := &cache[K, V]{
		hash: util.Hash64[K],
		opt:  opt,
	}
	c.shards = make([]*shard[K, V], sh)
	perShardCap := (opt.Capacity + sh - 1) / sh // split capacity evenly (ceil)
	// each shard map starts with this many buckets
	tableSize := util.TableSizeFor(perShardCap, maxShardBuckets)
	for i := range c.shards {
		met := &shardMetrics{
			Metrics: opt.Metrics,
			total:   &c.size,
			buckets: &c.buckets,
			lastCap: tableSize,
		}
		c.buckets.Add(int64(tableSize))
		c.shards[i] = newShard(perShardCap, met, opt)
	}

	// return pointer-to-impl as the interface (avoids unexported-return lint)
	return c
}

// ---- Cache[K,V] implementation ----

// Add inserts k→v only if absent.
// Returns false if the key already exists or the cache is closed.
func (c *cache[K, V]) Add(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	return c.getShard(k).Add(k, v)
}

// Set inserts or updates k→v and promotes the entry to MRU.
func (c *cache[K, V]) Set(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.getShard(k).Set(k, v)
}

// Get returns the value for k and a presence flag.
// On hit, the entry is promoted to MRU.
func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.getShard(k).Get(k)
}

// Peek returns the value for k without promoting it.
func (c *cache[K, V]) Peek(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.getShard(k).Peek(k)
}

// Remove deletes k if present and returns true on success.
func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.getShard(k).Remove(k)
}

// Len returns the total number of resident entries across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Stats sums the per-shard counters. The snapshot is not atomic across shards.
func (c *cache[K, V]) Stats() Stats {
	st := Stats{
		Loads:     c.loads.Load(),
		Coalesced: c.coalesced.Load(),
	}
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Evictions += s.evicts.Load()
	}
	return st
}

// Close marks the cache as closed. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
// A failed load is not cached.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}

	// singleflight: exactly one real load for the key
	v, err, shared := c.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok := c.getShard(k).Peek(k); ok {
			return v, nil
		}
		c.loads.Add(1)
		v, err := c.opt.Loader(ctx, k)
		if err == nil {
			c.Set(k, v)
		}
		return v, err
	})
	if shared {
		c.coalesced.Add(1)
	}
	return v, err
}

// ---- helpers ----

// getShard picks a shard from the top bits of the key hash.
// len(c.shards) is guaranteed to be a power of two.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}
