package hashmap

import "iter"

// Iterator walks a Map in iteration order: overlay order for ordered maps,
// table order otherwise. It is fail-fast: a structural modification made
// through anything but the iterator itself stops it with
// ErrConcurrentModification, reported by Err. Detection is best-effort.
//
//	for it := m.Iter(); it.Next(); {
//	    use(it.Key(), it.Value())
//	}
type Iterator[K comparable, V any] struct {
	m        *Map[K, V]
	expected uint64
	current  handle
	next     handle
	slot     int // next table slot to scan (Unordered only)
	err      error
}

// Iter returns an iterator positioned before the first entry.
func (m *Map[K, V]) Iter() *Iterator[K, V] {
	it := &Iterator[K, V]{m: m, expected: m.modCount}
	if m.order != Unordered {
		it.next = m.head
	} else {
		it.next = it.scan()
	}
	return it
}

// scan returns the head of the next non-empty bucket.
func (it *Iterator[K, V]) scan() handle {
	tab := it.m.table
	for it.slot < len(tab) {
		h := tab[it.slot]
		it.slot++
		if h != nilHandle {
			return h
		}
	}
	return nilHandle
}

// Next advances to the next entry and reports whether there is one.
func (it *Iterator[K, V]) Next() bool {
	it.current = nilHandle
	if it.err != nil {
		return false
	}
	if it.m.modCount != it.expected {
		it.err = ErrConcurrentModification
		return false
	}
	if it.next == nilHandle {
		return false
	}
	it.current = it.next
	e := &it.m.nodes[it.current]
	switch {
	case it.m.order != Unordered:
		it.next = e.after
	case e.next != nilHandle:
		it.next = e.next
	default:
		it.next = it.scan()
	}
	return true
}

// Key returns the current key.
func (it *Iterator[K, V]) Key() K { return it.m.nodes[it.current].key }

// Value returns the current value.
func (it *Iterator[K, V]) Value() V { return it.m.nodes[it.current].value }

// Err returns ErrConcurrentModification if iteration stopped early.
func (it *Iterator[K, V]) Err() error { return it.err }

// SetValue replaces the current entry's value in place.
func (it *Iterator[K, V]) SetValue(v V) error {
	if it.current == nilHandle {
		return ErrNoCurrent
	}
	it.m.nodes[it.current].value = v
	return nil
}

// Remove deletes the current entry without disturbing the rest of the
// iteration: tree bins keep their head, and the iterator resynchronises
// with the map's revision.
func (it *Iterator[K, V]) Remove() error {
	if it.current == nilHandle {
		return ErrNoCurrent
	}
	if it.m.modCount != it.expected {
		return ErrConcurrentModification
	}
	it.m.removeEntry(it.current, false)
	it.current = nilHandle
	it.expected = it.m.modCount
	return nil
}

// Range calls fn for every entry until fn returns false.
func (m *Map[K, V]) Range(fn func(k K, v V) bool) error {
	if fn == nil {
		return ErrNilFunc
	}
	it := m.Iter()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			return nil
		}
	}
	return it.Err()
}

// All returns a range-over-func sequence of the entries.
// It panics with ErrConcurrentModification if the map is structurally
// modified during the loop.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := m.Iter()
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
		if err := it.Err(); err != nil {
			panic(err)
		}
	}
}

// ReplaceAll replaces every value with fn(key, value).
func (m *Map[K, V]) ReplaceAll(fn func(k K, v V) V) error {
	if fn == nil {
		return ErrNilFunc
	}
	it := m.Iter()
	for it.Next() {
		it.m.nodes[it.current].value = fn(it.Key(), it.Value())
	}
	return it.Err()
}

// Keys returns a snapshot of the keys in iteration order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, m.size)
	m.each(func(h handle) bool {
		out = append(out, m.nodes[h].key)
		return true
	})
	return out
}

// Values returns a snapshot of the values in iteration order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, m.size)
	m.each(func(h handle) bool {
		out = append(out, m.nodes[h].value)
		return true
	})
	return out
}
