package hashmap

// The compute family derives a value from a caller-supplied function. A
// function result with ok == false means "no value": the key is removed (or
// not inserted). Each operation returns the value now mapped and whether
// the key is present afterwards. A nil function fails with ErrNilFunc
// before any mutation; a function that structurally modifies the map makes
// the operation fail with ErrConcurrentModification without applying its
// result.

// ComputeIfAbsent returns the existing value for key, or inserts fn(key).
func (m *Map[K, V]) ComputeIfAbsent(key K, fn func(key K) (V, bool)) (V, bool, error) {
	var zero V
	if fn == nil {
		return zero, false, ErrNilFunc
	}
	hash := m.hash(key)
	if h := m.getNode(hash, key); h != nilHandle {
		m.afterAccess(h)
		return m.nodes[h].value, true, nil
	}
	mc := m.modCount
	v, ok := fn(key)
	if mc != m.modCount {
		return zero, false, ErrConcurrentModification
	}
	if !ok {
		return zero, false, nil
	}
	m.putVal(hash, key, v, false, true)
	return v, true, nil
}

// ComputeIfPresent replaces the value of an existing key with fn(key, old),
// removing the key when fn reports no value.
func (m *Map[K, V]) ComputeIfPresent(key K, fn func(key K, old V) (V, bool)) (V, bool, error) {
	var zero V
	if fn == nil {
		return zero, false, ErrNilFunc
	}
	h := m.getNode(m.hash(key), key)
	if h == nilHandle {
		return zero, false, nil
	}
	mc := m.modCount
	v, ok := fn(key, m.nodes[h].value)
	if mc != m.modCount {
		return zero, false, ErrConcurrentModification
	}
	if !ok {
		m.removeEntry(h, true)
		return zero, false, nil
	}
	m.nodes[h].value = v
	m.afterAccess(h)
	return v, true, nil
}

// Compute maps key to fn(key, old, loaded), where loaded reports whether
// key was present. The key is removed (or left absent) when fn reports no
// value.
func (m *Map[K, V]) Compute(key K, fn func(key K, old V, loaded bool) (V, bool)) (V, bool, error) {
	var zero V
	if fn == nil {
		return zero, false, ErrNilFunc
	}
	hash := m.hash(key)
	h := m.getNode(hash, key)
	var old V
	if h != nilHandle {
		old = m.nodes[h].value
	}
	mc := m.modCount
	v, ok := fn(key, old, h != nilHandle)
	if mc != m.modCount {
		return zero, false, ErrConcurrentModification
	}
	switch {
	case h != nilHandle && ok:
		m.nodes[h].value = v
		m.afterAccess(h)
		return v, true, nil
	case h != nilHandle:
		m.removeEntry(h, true)
		return zero, false, nil
	case ok:
		m.putVal(hash, key, v, false, true)
		return v, true, nil
	}
	return zero, false, nil
}

// Merge inserts value for an absent key; otherwise it maps key to
// fn(old, value), removing the key when fn reports no value.
func (m *Map[K, V]) Merge(key K, value V, fn func(old, value V) (V, bool)) (V, bool, error) {
	var zero V
	if fn == nil {
		return zero, false, ErrNilFunc
	}
	hash := m.hash(key)
	h := m.getNode(hash, key)
	if h == nilHandle {
		m.putVal(hash, key, value, false, true)
		return value, true, nil
	}
	mc := m.modCount
	v, ok := fn(m.nodes[h].value, value)
	if mc != m.modCount {
		return zero, false, ErrConcurrentModification
	}
	if !ok {
		m.removeEntry(h, true)
		return zero, false, nil
	}
	m.nodes[h].value = v
	m.afterAccess(h)
	return v, true, nil
}
