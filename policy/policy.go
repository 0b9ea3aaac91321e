// Package policy defines the eviction contract between an ordered
// hashmap.Map and the strategy that bounds it.
package policy

// Entry is a read-only view of a resident map entry.
// It is only valid for the duration of the callback that received it.
type Entry[K comparable, V any] interface {
	Key() K
	Value() V
}

// Hooks expose the map's ordering overlay to a policy.
// Eldest is the head of the overlay: the oldest insertion in insertion
// order, the least recently used entry in access order.
type Hooks[K comparable, V any] interface {
	Len() int
	Eldest() (Entry[K, V], bool)
	Newest() (Entry[K, V], bool)
}

// MapPolicy is a per-map policy instance bound to the map's hooks.
//
// Semantics:
//   - OnInsert runs after every insertion of a new key, once the entry is
//     linked as newest and any resize is done. Returning true removes the
//     eldest entry; at most one entry is evicted per insertion.
//   - OnAccess runs after an existing entry was read or updated.
//   - OnRemove runs after an entry left the map, including evictions.
type MapPolicy[K comparable, V any] interface {
	OnInsert(eldest Entry[K, V]) (evict bool)
	OnAccess(Entry[K, V])
	OnRemove(Entry[K, V])
}

// Policy is a factory that creates map-local policy instances.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) MapPolicy[K, V]
}

// Func adapts a plain predicate into a Policy. It is called on every
// insertion with the eldest entry and the current size.
type Func[K comparable, V any] func(eldest Entry[K, V], size int) bool

// New implements Policy.
func (f Func[K, V]) New(h Hooks[K, V]) MapPolicy[K, V] {
	return funcPolicy[K, V]{fn: f, h: h}
}

type funcPolicy[K comparable, V any] struct {
	fn Func[K, V]
	h  Hooks[K, V]
}

func (p funcPolicy[K, V]) OnInsert(eldest Entry[K, V]) bool { return p.fn(eldest, p.h.Len()) }
func (p funcPolicy[K, V]) OnAccess(Entry[K, V])             {}
func (p funcPolicy[K, V]) OnRemove(Entry[K, V])             {}
