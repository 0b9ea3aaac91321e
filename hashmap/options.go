package hashmap

import "github.com/IvanBrykalov/treebin/policy"

// Order selects how the ordering overlay sequences entries.
type Order int

const (
	// Unordered keeps no overlay; iteration follows table order.
	Unordered Order = iota
	// InsertionOrder iterates from the eldest insertion to the newest.
	// Re-putting an existing key does not change its position.
	InsertionOrder
	// AccessOrder iterates from the least to the most recently used entry.
	// Get, Put on an existing key and the compute family count as use.
	AccessOrder
)

// Options configures a Map. Zero values are safe; defaults are applied in New:
//   - InitialCapacity == 0 => 16 buckets, allocated on the first insert
//   - LoadFactor == 0      => DefaultLoadFactor (0.75)
//   - nil Hasher           => util.Hash32 (xxhash for strings, maphash fallback)
//   - nil Compare          => built-in ordering for ordered kinds only
//   - nil ValueEqual       => == for comparable values, reflect.DeepEqual otherwise
//   - nil Metrics          => NoopMetrics
//   - Policy set on an Unordered map => InsertionOrder
type Options[K comparable, V any] struct {
	// InitialCapacity is rounded up to the next power of two.
	// Negative values are rejected.
	InitialCapacity int

	// LoadFactor is the size/capacity ratio that triggers a resize.
	// 0 means DefaultLoadFactor; any other value must be positive and finite.
	LoadFactor float64

	// Order selects the ordering overlay.
	Order Order

	// Policy decides after every insertion whether the eldest entry is evicted.
	Policy policy.Policy[K, V]

	// Hasher returns the raw 32-bit hash of a key. The map spreads it with
	// h ^ (h >> 16) before indexing.
	Hasher func(K) uint32

	// Compare orders keys that share a hash inside a tree bin.
	// Return 0 when the keys are not mutually comparable.
	Compare func(a, b K) int

	// ValueEqual compares values for ContainsValue, CompareAndRemove and
	// CompareAndReplace.
	ValueEqual func(a, b V) bool

	// OnEvict is called after the policy evicted an entry.
	OnEvict func(k K, v V)

	Metrics Metrics
}
