package hashmap

import (
	"strings"

	"github.com/IvanBrykalov/treebin/internal/util"
)

// Tree bins are red-black trees ordered by hash, then by the key's natural
// ordering (Options.Compare), then by a tie-break on the dynamic type name
// and the entry handle. Next to the tree links every node keeps its place in
// the bucket thread (next/prev), which the fixups below never touch.
//
// All functions here take handles into m.nodes and never allocate, except
// putTreeVal, which reloads the slice after its single alloc.

// treeRoot walks up from any node of a tree bin to its root.
func (m *Map[K, V]) treeRoot(h handle) handle {
	ns := m.nodes
	for ns[h].parent != nilHandle {
		h = ns[h].parent
	}
	return h
}

// tieBreak orders two keys that share a hash and are not comparable.
// It never returns 0, so insertion always picks a side.
func (m *Map[K, V]) tieBreak(a K, ah handle, b K, bh handle) int {
	if m.keyIsIface {
		if d := strings.Compare(util.TypeName(any(a)), util.TypeName(any(b))); d != 0 {
			return d
		}
	}
	if ah <= bh {
		return -1
	}
	return 1
}

// findTree searches the subtree rooted at p. When the comparator cannot
// order two keys with equal hashes both subtrees are searched: the right
// one recursively, the left one iteratively.
func (m *Map[K, V]) findTree(p handle, hash uint32, key K) handle {
	ns := m.nodes
	for p != nilHandle {
		e := &ns[p]
		pl, pr := e.left, e.right
		switch {
		case e.hash > hash:
			p = pl
		case e.hash < hash:
			p = pr
		case e.key == key:
			return p
		case pl == nilHandle:
			p = pr
		case pr == nilHandle:
			p = pl
		default:
			if dir := m.compare(key, e.key); dir != 0 {
				if dir < 0 {
					p = pl
				} else {
					p = pr
				}
			} else if q := m.findTree(pr, hash, key); q != nilHandle {
				return q
			} else {
				p = pl
			}
		}
	}
	return nilHandle
}

// putTreeVal returns the existing entry for key, or inserts a new node
// (threaded right after its tree parent) and returns it as created.
func (m *Map[K, V]) putTreeVal(i int, first handle, hash uint32, key K, value V) (existing, created handle) {
	root := m.treeRoot(first)
	self := m.peek()
	searched := false
	for p := root; ; {
		pe := &m.nodes[p]
		var dir int
		switch {
		case pe.hash > hash:
			dir = -1
		case pe.hash < hash:
			dir = 1
		case pe.key == key:
			return p, nilHandle
		default:
			if dir = m.compare(key, pe.key); dir == 0 {
				if !searched {
					searched = true
					if q := m.findTree(pe.left, hash, key); q != nilHandle {
						return q, nilHandle
					}
					if q := m.findTree(pe.right, hash, key); q != nilHandle {
						return q, nilHandle
					}
				}
				dir = m.tieBreak(key, self, pe.key, p)
			}
		}

		child := pe.right
		if dir <= 0 {
			child = pe.left
		}
		if child != nilHandle {
			p = child
			continue
		}

		xp, xpn := p, pe.next
		x := m.alloc(hash, key, value, xpn)
		ns := m.nodes
		ns[x].kind = treeBin
		if dir <= 0 {
			ns[xp].left = x
		} else {
			ns[xp].right = x
		}
		ns[xp].next = x
		ns[x].parent = xp
		ns[x].prev = xp
		if xpn != nilHandle {
			ns[xpn].prev = x
		}
		m.moveRootToFront(i, m.balanceInsertion(root, x))
		return nilHandle, x
	}
}

// treeify builds a red-black tree over the bucket thread starting at first.
// Every node must already be tagged treeBin with its prev link set.
func (m *Map[K, V]) treeify(i int, first handle) {
	ns := m.nodes
	root := nilHandle
	for x := first; x != nilHandle; x = ns[x].next {
		ns[x].left, ns[x].right = nilHandle, nilHandle
		if root == nilHandle {
			ns[x].parent = nilHandle
			ns[x].red = false
			root = x
			continue
		}
		k, h := ns[x].key, ns[x].hash
		for p := root; ; {
			var dir int
			switch ph := ns[p].hash; {
			case ph > h:
				dir = -1
			case ph < h:
				dir = 1
			default:
				if dir = m.compare(k, ns[p].key); dir == 0 {
					dir = m.tieBreak(k, x, ns[p].key, p)
				}
			}
			xp := p
			if dir <= 0 {
				p = ns[p].left
			} else {
				p = ns[p].right
			}
			if p == nilHandle {
				ns[x].parent = xp
				if dir <= 0 {
					ns[xp].left = x
				} else {
					ns[xp].right = x
				}
				root = m.balanceInsertion(root, x)
				break
			}
		}
	}
	m.moveRootToFront(i, root)
	m.opt.Metrics.Treeify()
}

// untreeify turns the bin threaded from first back into a chain. The chain
// keeps the thread order.
func (m *Map[K, V]) untreeify(first handle) {
	ns := m.nodes
	for h := first; h != nilHandle; h = ns[h].next {
		e := &ns[h]
		e.kind = chainBin
		e.parent, e.left, e.right, e.prev = nilHandle, nilHandle, nilHandle, nilHandle
		e.red = false
	}
	m.opt.Metrics.Untreeify()
}

// binLenAtMost reports whether the thread starting at first holds at most
// n entries. It stops after n+1 links.
func (m *Map[K, V]) binLenAtMost(first handle, n int) bool {
	c := 0
	for h := first; h != nilHandle; h = m.nodes[h].next {
		if c++; c > n {
			return false
		}
	}
	return true
}

// moveRootToFront makes root the head of bucket i's thread, so the slot
// always points at the tree root.
func (m *Map[K, V]) moveRootToFront(i int, root handle) {
	first := m.table[i]
	if root == nilHandle || root == first {
		return
	}
	ns := m.nodes
	m.table[i] = root
	rp, rn := ns[root].prev, ns[root].next
	if rn != nilHandle {
		ns[rn].prev = rp
	}
	if rp != nilHandle {
		ns[rp].next = rn
	}
	if first != nilHandle {
		ns[first].prev = root
	}
	ns[root].next = first
	ns[root].prev = nilHandle
}

// removeTreeNode unlinks p from bucket i. The thread is fixed first; if six
// or fewer nodes remain the bin is flattened instead of rebalanced.
func (m *Map[K, V]) removeTreeNode(i int, p handle, movable bool) {
	ns := m.nodes
	first := m.table[i]
	succ, pred := ns[p].next, ns[p].prev
	if pred == nilHandle {
		m.table[i] = succ
		first = succ
	} else {
		ns[pred].next = succ
	}
	if succ != nilHandle {
		ns[succ].prev = pred
	}
	if first == nilHandle {
		return
	}
	if m.binLenAtMost(first, untreeifyThreshold) {
		m.untreeify(first)
		return
	}

	root := m.treeRoot(first)
	pl, pr := ns[p].left, ns[p].right
	var replacement handle
	switch {
	case pl != nilHandle && pr != nilHandle:
		// Swap p with its in-order successor s, colors included.
		s := pr
		for ns[s].left != nilHandle {
			s = ns[s].left
		}
		ns[s].red, ns[p].red = ns[p].red, ns[s].red
		sr := ns[s].right
		pp := ns[p].parent
		if s == pr {
			ns[p].parent = s
			ns[s].right = p
		} else {
			sp := ns[s].parent
			ns[p].parent = sp
			if sp != nilHandle {
				if s == ns[sp].left {
					ns[sp].left = p
				} else {
					ns[sp].right = p
				}
			}
			ns[s].right = pr
			ns[pr].parent = s
		}
		ns[p].left = nilHandle
		ns[p].right = sr
		if sr != nilHandle {
			ns[sr].parent = p
		}
		ns[s].left = pl
		ns[pl].parent = s
		ns[s].parent = pp
		switch {
		case pp == nilHandle:
			root = s
		case p == ns[pp].left:
			ns[pp].left = s
		default:
			ns[pp].right = s
		}
		if sr != nilHandle {
			replacement = sr
		} else {
			replacement = p
		}
	case pl != nilHandle:
		replacement = pl
	case pr != nilHandle:
		replacement = pr
	default:
		replacement = p
	}

	if replacement != p {
		pp := ns[p].parent
		ns[replacement].parent = pp
		switch {
		case pp == nilHandle:
			root = replacement
		case p == ns[pp].left:
			ns[pp].left = replacement
		default:
			ns[pp].right = replacement
		}
		ns[p].left, ns[p].right, ns[p].parent = nilHandle, nilHandle, nilHandle
	}

	r := root
	if !ns[p].red {
		r = m.balanceDeletion(root, replacement)
	}

	// p stood in for a missing child during the fixup; detach it now.
	if replacement == p {
		pp := ns[p].parent
		ns[p].parent = nilHandle
		if pp != nilHandle {
			if p == ns[pp].left {
				ns[pp].left = nilHandle
			} else if p == ns[pp].right {
				ns[pp].right = nilHandle
			}
		}
	}
	if movable {
		m.moveRootToFront(i, r)
	}
}

// ---- red-black balancing ----

func (m *Map[K, V]) rotateLeft(root, p handle) handle {
	ns := m.nodes
	if p == nilHandle || ns[p].right == nilHandle {
		return root
	}
	r := ns[p].right
	rl := ns[r].left
	ns[p].right = rl
	if rl != nilHandle {
		ns[rl].parent = p
	}
	pp := ns[p].parent
	ns[r].parent = pp
	switch {
	case pp == nilHandle:
		root = r
		ns[r].red = false
	case ns[pp].left == p:
		ns[pp].left = r
	default:
		ns[pp].right = r
	}
	ns[r].left = p
	ns[p].parent = r
	return root
}

func (m *Map[K, V]) rotateRight(root, p handle) handle {
	ns := m.nodes
	if p == nilHandle || ns[p].left == nilHandle {
		return root
	}
	l := ns[p].left
	lr := ns[l].right
	ns[p].left = lr
	if lr != nilHandle {
		ns[lr].parent = p
	}
	pp := ns[p].parent
	ns[l].parent = pp
	switch {
	case pp == nilHandle:
		root = l
		ns[l].red = false
	case ns[pp].right == p:
		ns[pp].right = l
	default:
		ns[pp].left = l
	}
	ns[l].right = p
	ns[p].parent = l
	return root
}

// balanceInsertion restores the red-black invariants after x was linked as
// a leaf and returns the (possibly new) root.
func (m *Map[K, V]) balanceInsertion(root, x handle) handle {
	ns := m.nodes
	ns[x].red = true
	for {
		xp := ns[x].parent
		if xp == nilHandle {
			ns[x].red = false
			return x
		}
		xpp := ns[xp].parent
		if !ns[xp].red || xpp == nilHandle {
			return root
		}
		if xppl := ns[xpp].left; xp == xppl {
			if xppr := ns[xpp].right; xppr != nilHandle && ns[xppr].red {
				ns[xppr].red = false
				ns[xp].red = false
				ns[xpp].red = true
				x = xpp
				continue
			}
			if x == ns[xp].right {
				x = xp
				root = m.rotateLeft(root, x)
				xp = ns[x].parent
				xpp = ns[xp].parent
			}
			if xp != nilHandle {
				ns[xp].red = false
				if xpp != nilHandle {
					ns[xpp].red = true
					root = m.rotateRight(root, xpp)
				}
			}
		} else {
			if xppl != nilHandle && ns[xppl].red {
				ns[xppl].red = false
				ns[xp].red = false
				ns[xpp].red = true
				x = xpp
				continue
			}
			if x == ns[xp].left {
				x = xp
				root = m.rotateRight(root, x)
				xp = ns[x].parent
				xpp = ns[xp].parent
			}
			if xp != nilHandle {
				ns[xp].red = false
				if xpp != nilHandle {
					ns[xpp].red = true
					root = m.rotateLeft(root, xpp)
				}
			}
		}
	}
}

// balanceDeletion restores the red-black invariants after a black node was
// spliced out above x and returns the (possibly new) root.
func (m *Map[K, V]) balanceDeletion(root, x handle) handle {
	ns := m.nodes
	for {
		if x == nilHandle || x == root {
			return root
		}
		xp := ns[x].parent
		if xp == nilHandle {
			ns[x].red = false
			return x
		}
		if ns[x].red {
			ns[x].red = false
			return root
		}

		if xpl := ns[xp].left; xpl == x {
			xpr := ns[xp].right
			if xpr != nilHandle && ns[xpr].red {
				ns[xpr].red = false
				ns[xp].red = true
				root = m.rotateLeft(root, xp)
				xp = ns[x].parent
				xpr = ns[xp].right
			}
			if xpr == nilHandle {
				x = xp
				continue
			}
			sl, sr := ns[xpr].left, ns[xpr].right
			if !ns[sr].red && !ns[sl].red {
				ns[xpr].red = true
				x = xp
				continue
			}
			if !ns[sr].red {
				if sl != nilHandle {
					ns[sl].red = false
				}
				ns[xpr].red = true
				root = m.rotateRight(root, xpr)
				xp = ns[x].parent
				xpr = ns[xp].right
			}
			if xpr != nilHandle {
				ns[xpr].red = xp != nilHandle && ns[xp].red
				if sr = ns[xpr].right; sr != nilHandle {
					ns[sr].red = false
				}
			}
			if xp != nilHandle {
				ns[xp].red = false
				root = m.rotateLeft(root, xp)
			}
			x = root
		} else {
			if xpl != nilHandle && ns[xpl].red {
				ns[xpl].red = false
				ns[xp].red = true
				root = m.rotateRight(root, xp)
				xp = ns[x].parent
				xpl = ns[xp].left
			}
			if xpl == nilHandle {
				x = xp
				continue
			}
			sl, sr := ns[xpl].left, ns[xpl].right
			if !ns[sl].red && !ns[sr].red {
				ns[xpl].red = true
				x = xp
				continue
			}
			if !ns[sl].red {
				if sr != nilHandle {
					ns[sr].red = false
				}
				ns[xpl].red = true
				root = m.rotateLeft(root, xpl)
				xp = ns[x].parent
				xpl = ns[xp].left
			}
			if xpl != nilHandle {
				ns[xpl].red = xp != nilHandle && ns[xp].red
				if sl = ns[xpl].left; sl != nilHandle {
					ns[sl].red = false
				}
			}
			if xp != nilHandle {
				ns[xp].red = false
				root = m.rotateRight(root, xp)
			}
			x = root
		}
	}
}
