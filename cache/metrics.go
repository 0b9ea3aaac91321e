package cache

import (
	"sync/atomic"

	"github.com/IvanBrykalov/treebin/hashmap"
)

// Metrics is the observability hook shared with the shard maps: hits,
// misses, evictions, resizes, bucket conversions and size.
type Metrics = hashmap.Metrics

// NoopMetrics is the default Metrics implementation and does nothing.
type NoopMetrics = hashmap.NoopMetrics

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}

// shardMetrics forwards a shard map's signals, turning the shard-local Size
// and Resize into cache-wide entry and bucket counts. It is only called
// under its shard lock.
type shardMetrics struct {
	Metrics
	total   *atomic.Int64
	buckets *atomic.Int64
	last    int
	lastCap int
}

func (m *shardMetrics) Size(n int) {
	t := m.total.Add(int64(n - m.last))
	m.last = n
	m.Metrics.Size(int(t))
}

func (m *shardMetrics) Resize(n int) {
	t := m.buckets.Add(int64(n - m.lastCap))
	m.lastCap = n
	m.Metrics.Resize(int(t))
}
