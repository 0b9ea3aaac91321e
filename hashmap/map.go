package hashmap

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/IvanBrykalov/treebin/internal/util"
	"github.com/IvanBrykalov/treebin/policy"
)

// DefaultLoadFactor is the load factor used when Options.LoadFactor is 0.
const DefaultLoadFactor = 0.75

const (
	defaultInitialCapacity = 16
	maximumCapacity        = 1 << 30

	// A chain is converted to a tree when an insertion appends its 9th entry
	// (the chain already held treeifyThreshold entries) and the table has at
	// least minTreeifyCapacity buckets; smaller tables grow instead.
	treeifyThreshold   = 8
	untreeifyThreshold = 6
	minTreeifyCapacity = 64
)

// Map is a hash map whose buckets are singly linked chains that turn into
// red-black trees once they grow long, with an optional ordering overlay
// (insertion or access order) and an eviction policy hook.
//
// Map is not safe for concurrent use. Wrap it with a mutex, or use the
// cache package, when goroutines share it.
type Map[K comparable, V any] struct {
	arena[K, V]

	table      []handle
	size       int
	threshold  int
	initCap    int // bucket count of the first allocation
	maxCap     int // the table never grows past this many buckets
	loadFactor float64
	modCount   uint64

	// ordering overlay
	order Order
	head  handle // eldest
	tail  handle // newest
	pol   policy.MapPolicy[K, V]

	hasher     func(K) uint32
	compare    func(a, b K) int
	valEqual   func(a, b V) bool
	keyIsIface bool

	opt Options[K, V]
}

// New constructs an empty Map. The table is allocated lazily on the first
// insertion. New fails with an error wrapping ErrInvalidConfig for a negative
// InitialCapacity or a negative, NaN or infinite LoadFactor.
func New[K comparable, V any](opt Options[K, V]) (*Map[K, V], error) {
	if opt.InitialCapacity < 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrInvalidCapacity, opt.InitialCapacity)
	}
	if opt.LoadFactor == 0 {
		opt.LoadFactor = DefaultLoadFactor
	}
	if opt.LoadFactor < 0 || math.IsNaN(opt.LoadFactor) || math.IsInf(opt.LoadFactor, 0) {
		return nil, fmt.Errorf("%w: %w: %v", ErrInvalidConfig, ErrInvalidLoadFactor, opt.LoadFactor)
	}
	if opt.Hasher == nil {
		opt.Hasher = util.Hash32[K]
	}
	if opt.Compare == nil {
		opt.Compare = util.Compare[K]
	}
	if opt.ValueEqual == nil {
		opt.ValueEqual = util.EqualFunc[V]()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy != nil && opt.Order == Unordered {
		opt.Order = InsertionOrder
	}

	m := &Map[K, V]{
		initCap:    defaultInitialCapacity,
		maxCap:     maximumCapacity,
		loadFactor: opt.LoadFactor,
		order:      opt.Order,
		hasher:     opt.Hasher,
		compare:    opt.Compare,
		valEqual:   opt.ValueEqual,
		keyIsIface: reflect.TypeFor[K]().Kind() == reflect.Interface,
		opt:        opt,
	}
	if opt.InitialCapacity > 0 {
		m.initCap = util.TableSizeFor(opt.InitialCapacity, maximumCapacity)
	}
	if opt.Policy != nil {
		m.pol = opt.Policy.New(hooks[K, V]{m: m})
	}
	return m, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[K comparable, V any](opt Options[K, V]) *Map[K, V] {
	m, err := New(opt)
	if err != nil {
		panic(err)
	}
	return m
}

// NewFromMap constructs a Map holding the entries of src. The table is
// presized from len(src) and the eviction policy is not consulted while
// loading.
func NewFromMap[K comparable, V any](src map[K]V, opt Options[K, V]) (*Map[K, V], error) {
	m, err := New(opt)
	if err != nil {
		return nil, err
	}
	m.presize(len(src))
	for k, v := range src {
		m.putVal(m.hash(k), k, v, false, false)
	}
	return m, nil
}

// hash spreads the raw hash so that high bits take part in bucket indexing.
// A nil interface key always hashes to 0.
func (m *Map[K, V]) hash(k K) uint32 {
	if m.keyIsIface && any(k) == nil {
		return 0
	}
	h := m.hasher(k)
	return h ^ (h >> 16)
}

// ---- Map operations ----

// Get returns the value for key and whether it was present.
// In AccessOrder the entry becomes the most recently used.
func (m *Map[K, V]) Get(key K) (V, bool) {
	h := m.getNode(m.hash(key), key)
	if h == nilHandle {
		m.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	m.opt.Metrics.Hit()
	m.afterAccess(h)
	return m.nodes[h].value, true
}

// GetOrDefault returns the value for key, or def when key is absent.
func (m *Map[K, V]) GetOrDefault(key K, def V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}

// Peek returns the value for key without counting as an access: the
// ordering overlay, the policy and the hit/miss metrics are left alone.
func (m *Map[K, V]) Peek(key K) (V, bool) {
	h := m.getNode(m.hash(key), key)
	if h == nilHandle {
		var zero V
		return zero, false
	}
	return m.nodes[h].value, true
}

// ContainsKey reports whether key is present. It does not count as an access.
func (m *Map[K, V]) ContainsKey(key K) bool {
	return m.getNode(m.hash(key), key) != nilHandle
}

// ContainsValue reports whether any entry holds value. It scans every entry.
func (m *Map[K, V]) ContainsValue(value V) bool {
	found := false
	m.each(func(h handle) bool {
		found = m.valEqual(m.nodes[h].value, value)
		return !found
	})
	return found
}

// Put maps key to value and returns the previous value, if any.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool) {
	return m.putVal(m.hash(key), key, value, false, true)
}

// PutIfAbsent maps key to value only if key is absent. It returns the
// existing value and true when the key was already present.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (existing V, loaded bool) {
	return m.putVal(m.hash(key), key, value, true, true)
}

// Remove deletes key and returns the removed value.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	return m.removeNode(m.hash(key), key, *new(V), false, true)
}

// CompareAndRemove deletes key only if it is mapped to value.
func (m *Map[K, V]) CompareAndRemove(key K, value V) bool {
	_, ok := m.removeNode(m.hash(key), key, value, true, true)
	return ok
}

// Replace sets the value of an existing key and returns the previous one.
// Nothing happens when key is absent.
func (m *Map[K, V]) Replace(key K, value V) (prev V, replaced bool) {
	h := m.getNode(m.hash(key), key)
	if h == nilHandle {
		return prev, false
	}
	e := &m.nodes[h]
	prev, e.value = e.value, value
	m.afterAccess(h)
	return prev, true
}

// CompareAndReplace sets key to newValue only if it is mapped to oldValue.
func (m *Map[K, V]) CompareAndReplace(key K, oldValue, newValue V) bool {
	h := m.getNode(m.hash(key), key)
	if h == nilHandle || !m.valEqual(m.nodes[h].value, oldValue) {
		return false
	}
	m.nodes[h].value = newValue
	m.afterAccess(h)
	return true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.size }

// Clear removes every entry. The table keeps its capacity.
func (m *Map[K, V]) Clear() {
	m.modCount++
	if m.size > 0 {
		clear(m.table)
		m.size = 0
	}
	m.arena.reset()
	m.head, m.tail = nilHandle, nilHandle
	m.opt.Metrics.Size(0)
}

// PutMap copies every entry of src, presizing the table first.
func (m *Map[K, V]) PutMap(src map[K]V) {
	m.presize(len(src))
	for k, v := range src {
		m.putVal(m.hash(k), k, v, false, true)
	}
}

// PutAll copies every entry of src in src's iteration order, presizing the
// table first. It returns ErrConcurrentModification if src changed
// structurally while being copied (e.g. src == m in AccessOrder).
func (m *Map[K, V]) PutAll(src *Map[K, V]) error {
	m.presize(src.Len())
	it := src.Iter()
	for it.Next() {
		k, v := it.Key(), it.Value()
		m.putVal(m.hash(k), k, v, false, true)
	}
	return it.Err()
}

// Clone returns a shallow copy with the same options. Entries are copied in
// iteration order and the eviction policy is not consulted while copying;
// the clone gets its own policy instance.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := MustNew(m.opt)
	c.presize(m.size)
	m.each(func(h handle) bool {
		e := &m.nodes[h]
		c.putVal(e.hash, e.key, e.value, false, false)
		return true
	})
	return c
}

// String formats the map as map[k1:v1 k2:v2] in iteration order.
func (m *Map[K, V]) String() string {
	var b strings.Builder
	b.WriteString("map[")
	first := true
	m.each(func(h handle) bool {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%v:%v", m.nodes[h].key, m.nodes[h].value)
		return true
	})
	b.WriteByte(']')
	return b.String()
}

// ---- table internals ----

// presize grows the table ahead of a bulk load of s entries.
func (m *Map[K, V]) presize(s int) {
	if s <= 0 {
		return
	}
	if len(m.table) == 0 {
		ft := float64(s)/m.loadFactor + 1
		t := m.maxCap
		if ft < float64(m.maxCap) {
			t = int(ft)
		}
		if c := util.TableSizeFor(t, m.maxCap); c > m.initCap {
			m.initCap = c
		}
		return
	}
	for s > m.threshold && len(m.table) < m.maxCap {
		m.resize()
	}
}

// getNode locates the entry for key. The first entry of a bucket is checked
// directly; the rest is a chain scan or a tree search.
func (m *Map[K, V]) getNode(hash uint32, key K) handle {
	n := len(m.table)
	if n == 0 {
		return nilHandle
	}
	first := m.table[int(hash)&(n-1)]
	if first == nilHandle {
		return nilHandle
	}
	e := &m.nodes[first]
	if e.hash == hash && e.key == key {
		return first
	}
	if e.kind == treeBin {
		return m.findTree(m.treeRoot(first), hash, key)
	}
	for h := e.next; h != nilHandle; h = m.nodes[h].next {
		if c := &m.nodes[h]; c.hash == hash && c.key == key {
			return h
		}
	}
	return nilHandle
}

// putVal inserts or updates key. onlyIfAbsent keeps an existing value;
// evict=false suppresses the eviction policy (bulk construction).
func (m *Map[K, V]) putVal(hash uint32, key K, value V, onlyIfAbsent, evict bool) (prev V, existed bool) {
	if len(m.table) == 0 {
		m.resize()
	}
	i := int(hash) & (len(m.table) - 1)

	var found, created handle
	first := m.table[i]
	switch {
	case first == nilHandle:
		created = m.alloc(hash, key, value, nilHandle)
		m.table[i] = created
	case m.nodes[first].hash == hash && m.nodes[first].key == key:
		found = first
	case m.nodes[first].kind == treeBin:
		found, created = m.putTreeVal(i, first, hash, key, value)
	default:
		for p, binCount := first, 0; ; binCount++ {
			next := m.nodes[p].next
			if next == nilHandle {
				created = m.alloc(hash, key, value, nilHandle)
				m.nodes[p].next = created
				if binCount >= treeifyThreshold-1 {
					m.treeifyBin(hash)
				}
				break
			}
			if c := &m.nodes[next]; c.hash == hash && c.key == key {
				found = next
				break
			}
			p = next
		}
	}

	if found != nilHandle {
		e := &m.nodes[found]
		prev = e.value
		if !onlyIfAbsent {
			e.value = value
		}
		m.afterAccess(found)
		return prev, true
	}

	m.linkLast(created)
	m.modCount++
	m.size++
	if m.size > m.threshold {
		m.resize()
	}
	m.opt.Metrics.Size(m.size)
	m.afterInsert(evict)
	return prev, false
}

// removeNode deletes key, optionally only when its value equals value.
func (m *Map[K, V]) removeNode(hash uint32, key K, value V, matchValue, movable bool) (V, bool) {
	h := m.getNode(hash, key)
	if h == nilHandle || (matchValue && !m.valEqual(m.nodes[h].value, value)) {
		var zero V
		return zero, false
	}
	_, v := m.removeEntry(h, movable)
	return v, true
}

// removeEntry detaches h from its bucket and the ordering overlay, then
// releases it. movable=false keeps the bucket head in place so an iterator
// walking the bucket is not disturbed.
func (m *Map[K, V]) removeEntry(h handle, movable bool) (K, V) {
	e := &m.nodes[h]
	i := int(e.hash) & (len(m.table) - 1)
	switch {
	case e.kind == treeBin:
		m.removeTreeNode(i, h, movable)
	case m.table[i] == h:
		m.table[i] = e.next
	default:
		p := m.table[i]
		for m.nodes[p].next != h {
			p = m.nodes[p].next
		}
		m.nodes[p].next = e.next
	}
	m.modCount++
	m.size--
	m.afterRemove(h)

	k, v := m.nodes[h].key, m.nodes[h].value
	m.release(h)
	m.opt.Metrics.Size(m.size)
	return k, v
}

// each visits entries in iteration order until fn returns false.
func (m *Map[K, V]) each(fn func(h handle) bool) {
	if m.order != Unordered {
		for h := m.head; h != nilHandle; h = m.nodes[h].after {
			if !fn(h) {
				return
			}
		}
		return
	}
	for _, first := range m.table {
		for h := first; h != nilHandle; h = m.nodes[h].next {
			if !fn(h) {
				return
			}
		}
	}
}
