package hashmap

// Metrics exposes map-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	// Resize reports the new bucket count after the table doubled.
	Resize(capacity int)
	Treeify()
	Untreeify()
	// Size reports the entry count after a structural change.
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()       {}
func (NoopMetrics) Miss()      {}
func (NoopMetrics) Evict()     {}
func (NoopMetrics) Resize(int) {}
func (NoopMetrics) Treeify()   {}
func (NoopMetrics) Untreeify() {}
func (NoopMetrics) Size(int)   {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
