package hashmap

import "math"

// resize allocates the initial table or doubles the current one. Entries
// are relinked, never recreated. At the maximum capacity the threshold is pinned
// to math.MaxInt and the table stops growing.
func (m *Map[K, V]) resize() {
	oldTab := m.table
	oldCap := len(oldTab)

	var newCap int
	if oldCap > 0 {
		if oldCap >= m.maxCap {
			m.threshold = math.MaxInt
			return
		}
		newCap = oldCap << 1
	} else {
		newCap = m.initCap
	}

	m.threshold = math.MaxInt
	if ft := float64(newCap) * m.loadFactor; newCap < m.maxCap && ft < float64(m.maxCap) {
		m.threshold = int(ft)
	}

	newTab := make([]handle, newCap)
	m.table = newTab
	if oldCap == 0 {
		return
	}

	mask := newCap - 1
	for j, first := range oldTab {
		if first == nilHandle {
			continue
		}
		switch e := &m.nodes[first]; {
		case e.next == nilHandle:
			newTab[int(e.hash)&mask] = first
		case e.kind == treeBin:
			m.split(j, oldCap, first)
		default:
			m.splitChain(j, oldCap, first)
		}
	}
	m.opt.Metrics.Resize(newCap)
}

// splitChain partitions the chain of old bucket j by the bit that became
// significant. Relative order is preserved within each half; the low half
// stays at j and the high half moves to j+bit.
func (m *Map[K, V]) splitChain(j, bit int, first handle) {
	ns := m.nodes
	var loHead, loTail, hiHead, hiTail handle
	for e := first; e != nilHandle; {
		next := ns[e].next
		if int(ns[e].hash)&bit == 0 {
			if loTail == nilHandle {
				loHead = e
			} else {
				ns[loTail].next = e
			}
			loTail = e
		} else {
			if hiTail == nilHandle {
				hiHead = e
			} else {
				ns[hiTail].next = e
			}
			hiTail = e
		}
		e = next
	}
	if loTail != nilHandle {
		ns[loTail].next = nilHandle
		m.table[j] = loHead
	}
	if hiTail != nilHandle {
		ns[hiTail].next = nilHandle
		m.table[j+bit] = hiHead
	}
}

// split partitions the tree bin of old bucket j along its thread. A half
// with at most untreeifyThreshold nodes becomes a chain; a larger half is
// re-treeified, unless the other half is empty, in which case the existing
// tree is kept as is.
func (m *Map[K, V]) split(j, bit int, first handle) {
	ns := m.nodes
	var loHead, loTail, hiHead, hiTail handle
	lc, hc := 0, 0
	for e := first; e != nilHandle; {
		next := ns[e].next
		ns[e].next = nilHandle
		if int(ns[e].hash)&bit == 0 {
			ns[e].prev = loTail
			if loTail == nilHandle {
				loHead = e
			} else {
				ns[loTail].next = e
			}
			loTail = e
			lc++
		} else {
			ns[e].prev = hiTail
			if hiTail == nilHandle {
				hiHead = e
			} else {
				ns[hiTail].next = e
			}
			hiTail = e
			hc++
		}
		e = next
	}

	if loHead != nilHandle {
		m.table[j] = loHead
		if lc <= untreeifyThreshold {
			m.untreeify(loHead)
		} else if hiHead != nilHandle {
			m.treeify(j, loHead)
		}
	}
	if hiHead != nilHandle {
		m.table[j+bit] = hiHead
		if hc <= untreeifyThreshold {
			m.untreeify(hiHead)
		} else if loHead != nilHandle {
			m.treeify(j+bit, hiHead)
		}
	}
}

// treeifyBin converts the bucket holding hash into a tree, or grows the
// table instead while it is smaller than minTreeifyCapacity.
func (m *Map[K, V]) treeifyBin(hash uint32) {
	n := len(m.table)
	if n < minTreeifyCapacity {
		m.resize()
		return
	}
	i := int(hash) & (n - 1)
	first := m.table[i]
	if first == nilHandle {
		return
	}
	ns := m.nodes
	tl := nilHandle
	for h := first; h != nilHandle; h = ns[h].next {
		ns[h].kind = treeBin
		ns[h].prev = tl
		tl = h
	}
	m.treeify(i, first)
}
