package prom

import (
	"github.com/IvanBrykalov/treebin/hashmap"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements hashmap.Metrics (and therefore cache.Metrics) and
// exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evicts      prometheus.Counter
	resizes     prometheus.Counter
	capacity    prometheus.Gauge
	conversions *prometheus.CounterVec
	size        prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:     counter("hits_total", "Lookups that found the key"),
		misses:   counter("misses_total", "Lookups that did not find the key"),
		evicts:   counter("evictions_total", "Entries removed by the eviction policy"),
		resizes:  counter("resizes_total", "Bucket table doublings"),
		capacity: gauge("table_buckets", "Bucket count after the most recent resize, summed over cache shards"),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "bin_conversions_total",
				Help:        "Bucket conversions between chains and red-black trees",
				ConstLabels: constLabels,
			},
			[]string{"kind"},
		),
		size: gauge("size_entries", "Number of resident entries"),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.resizes, a.capacity, a.conversions, a.size)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Resize counts a table doubling and records the new bucket count. A cache
// reports the sum over its shards.
func (a *Adapter) Resize(capacity int) {
	a.resizes.Inc()
	a.capacity.Set(float64(capacity))
}

// Treeify counts a chain converted into a tree bin.
func (a *Adapter) Treeify() { a.conversions.WithLabelValues("treeify").Inc() }

// Untreeify counts a tree bin flattened back into a chain.
func (a *Adapter) Untreeify() { a.conversions.WithLabelValues("untreeify").Inc() }

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) { a.size.Set(float64(entries)) }

// Compile-time check: ensure Adapter implements hashmap.Metrics.
var _ hashmap.Metrics = (*Adapter)(nil)
