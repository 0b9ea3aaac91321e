package hashmap

// handle addresses an entry in the map's arena. Handles are stable for the
// lifetime of an entry: resize, treeify and untreeify relink entries but
// never move or recreate them. The zero handle is reserved as "nil".
type handle uint32

const nilHandle handle = 0

// binKind tags which structure currently owns an entry.
type binKind uint8

const (
	chainBin binKind = iota
	treeBin
)

// entry is a key/value record with the links used by every structure that
// can own it.
//
// In chain mode only next is meaningful. In tree mode parent/left/right/red
// form the red-black tree, while next/prev thread the bucket's nodes in a
// doubly linked list that survives rotations and is used to flatten the bin
// back into a chain. before/after belong to the ordering overlay and are
// independent of the bucket structure.
type entry[K comparable, V any] struct {
	hash  uint32
	key   K
	value V
	next  handle
	kind  binKind

	// tree bin only
	parent handle
	left   handle
	right  handle
	prev   handle
	red    bool

	// ordering overlay: before = older, after = newer
	before handle
	after  handle
}

// arena is an array-backed entry store addressed by handles. Slot 0 is a
// zero sentinel that is never written, so reading a field through nilHandle
// yields the zero value (a nil link, a black color).
type arena[K comparable, V any] struct {
	nodes []entry[K, V]
	free  handle // head of the free list, chained through next
}

func (a *arena[K, V]) init(capacity int) {
	a.nodes = make([]entry[K, V], 1, capacity+1)
	a.free = nilHandle
}

// alloc returns a fresh entry. The backing slice may be reallocated, so
// callers must not hold *entry pointers across a call to alloc.
func (a *arena[K, V]) alloc(hash uint32, key K, value V, next handle) handle {
	var h handle
	if a.free != nilHandle {
		h = a.free
		a.free = a.nodes[h].next
	} else {
		if len(a.nodes) == 0 {
			a.nodes = make([]entry[K, V], 1, 16)
		}
		h = handle(len(a.nodes))
		a.nodes = append(a.nodes, entry[K, V]{})
	}
	a.nodes[h] = entry[K, V]{hash: hash, key: key, value: value, next: next}
	return h
}

// peek reports the handle the next alloc will return.
func (a *arena[K, V]) peek() handle {
	if a.free != nilHandle {
		return a.free
	}
	if len(a.nodes) == 0 {
		return 1
	}
	return handle(len(a.nodes))
}

// release returns h to the free list and drops its key/value references.
func (a *arena[K, V]) release(h handle) {
	a.nodes[h] = entry[K, V]{next: a.free}
	a.free = h
}

// reset drops every entry but keeps the allocated storage.
func (a *arena[K, V]) reset() {
	clear(a.nodes)
	if len(a.nodes) > 0 {
		a.nodes = a.nodes[:1]
	}
	a.free = nilHandle
}
