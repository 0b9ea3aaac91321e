package hashmap

import "github.com/IvanBrykalov/treebin/policy"

// The ordering overlay is an intrusive doubly linked list over all entries,
// head = eldest, tail = newest. It is maintained only when the map is
// ordered; bucket relinking (resize, treeify) never touches it.

// linkLast appends h as the newest entry.
func (m *Map[K, V]) linkLast(h handle) {
	if m.order == Unordered {
		return
	}
	last := m.tail
	m.tail = h
	if last == nilHandle {
		m.head = h
		return
	}
	m.nodes[h].before = last
	m.nodes[last].after = h
}

// unlinkOrder detaches h from the overlay in O(1).
func (m *Map[K, V]) unlinkOrder(h handle) {
	ns := m.nodes
	b, a := ns[h].before, ns[h].after
	ns[h].before, ns[h].after = nilHandle, nilHandle
	if b == nilHandle {
		m.head = a
	} else {
		ns[b].after = a
	}
	if a == nilHandle {
		m.tail = b
	} else {
		ns[a].before = b
	}
}

// moveToLast promotes h to the newest position in O(1).
func (m *Map[K, V]) moveToLast(h handle) {
	if m.tail == h {
		return
	}
	m.unlinkOrder(h)
	m.linkLast(h)
}

// ---- extension points ----

// afterAccess runs when an existing entry was read or updated. Reordering
// in AccessOrder counts as a structural modification for iterators.
func (m *Map[K, V]) afterAccess(h handle) {
	if m.order == AccessOrder && m.tail != h {
		m.moveToLast(h)
		m.modCount++
	}
	if m.pol != nil {
		m.pol.OnAccess(entryRef[K, V]{m: m, h: h})
	}
}

// afterInsert runs once a new entry is linked and any resize is done.
// The policy may evict the eldest entry; evict=false skips it.
func (m *Map[K, V]) afterInsert(evict bool) {
	if !evict || m.pol == nil || m.head == nilHandle {
		return
	}
	eldest := m.head
	if !m.pol.OnInsert(entryRef[K, V]{m: m, h: eldest}) {
		return
	}
	k, v := m.removeEntry(eldest, true)
	m.opt.Metrics.Evict()
	if m.opt.OnEvict != nil {
		m.opt.OnEvict(k, v)
	}
}

// afterRemove runs while h is unlinked from its bucket but not yet released.
func (m *Map[K, V]) afterRemove(h handle) {
	if m.order != Unordered {
		m.unlinkOrder(h)
	}
	if m.pol != nil {
		m.pol.OnRemove(entryRef[K, V]{m: m, h: h})
	}
}

// Eldest returns the head of the ordering overlay: the oldest insertion, or
// the least recently used entry in AccessOrder. It does not count as an
// access. ok is false for an empty or Unordered map.
func (m *Map[K, V]) Eldest() (k K, v V, ok bool) {
	if m.head == nilHandle {
		return k, v, false
	}
	e := &m.nodes[m.head]
	return e.key, e.value, true
}

// Newest returns the tail of the ordering overlay.
func (m *Map[K, V]) Newest() (k K, v V, ok bool) {
	if m.tail == nilHandle {
		return k, v, false
	}
	e := &m.nodes[m.tail]
	return e.key, e.value, true
}

// ---- policy adapters ----

// entryRef is the policy.Entry view of a resident entry.
type entryRef[K comparable, V any] struct {
	m *Map[K, V]
	h handle
}

func (e entryRef[K, V]) Key() K   { return e.m.nodes[e.h].key }
func (e entryRef[K, V]) Value() V { return e.m.nodes[e.h].value }

// hooks adapts the map's overlay to policy.Hooks.
type hooks[K comparable, V any] struct{ m *Map[K, V] }

func (h hooks[K, V]) Len() int { return h.m.size }

func (h hooks[K, V]) Eldest() (policy.Entry[K, V], bool) {
	if h.m.head == nilHandle {
		return nil, false
	}
	return entryRef[K, V]{m: h.m, h: h.m.head}, true
}

func (h hooks[K, V]) Newest() (policy.Entry[K, V], bool) {
	if h.m.tail == nilHandle {
		return nil, false
	}
	return entryRef[K, V]{m: h.m, h: h.m.tail}, true
}

var (
	_ policy.Entry[string, int] = entryRef[string, int]{}
	_ policy.Hooks[string, int] = hooks[string, int]{}
)
