package hashmap

import (
	"testing"

	"github.com/IvanBrykalov/treebin/internal/util"
)

// checkInvariants walks every structure of m and fails the test on the first
// broken invariant: bucket placement, thread links, red-black shape,
// tree/thread agreement, size accounting and overlay links.
func checkInvariants[K comparable, V any](t testing.TB, m *Map[K, V]) {
	t.Helper()
	n := len(m.table)
	if n != 0 && !util.IsPowerOfTwo(uint64(n)) {
		t.Fatalf("capacity %d is not a power of two", n)
	}

	total := 0
	for i, first := range m.table {
		if first == nilHandle {
			continue
		}
		kind := m.nodes[first].kind
		bin := 0
		prev := nilHandle
		for h := first; h != nilHandle; h = m.nodes[h].next {
			e := &m.nodes[h]
			if got := int(e.hash) & (n - 1); got != i {
				t.Fatalf("entry %v in bucket %d, belongs to %d", e.key, i, got)
			}
			if e.kind != kind {
				t.Fatalf("bucket %d mixes chain and tree entries", i)
			}
			if kind == treeBin && e.prev != prev {
				t.Fatalf("bucket %d: broken prev link at %v", i, e.key)
			}
			prev = h
			bin++
		}
		total += bin
		if kind == chainBin {
			continue
		}

		if bin <= untreeifyThreshold {
			t.Fatalf("bucket %d: tree bin with only %d entries", i, bin)
		}
		root := m.treeRoot(first)
		if m.nodes[root].red {
			t.Fatalf("bucket %d: red root", i)
		}

		nodes := 0
		var walk func(h, parent handle, lo, hi uint32) int
		walk = func(h, parent handle, lo, hi uint32) int {
			if h == nilHandle {
				return 1
			}
			e := &m.nodes[h]
			if e.parent != parent {
				t.Fatalf("bucket %d: bad parent link at %v", i, e.key)
			}
			if e.kind != treeBin {
				t.Fatalf("bucket %d: chain entry %v inside a tree", i, e.key)
			}
			if e.hash < lo || e.hash > hi {
				t.Fatalf("bucket %d: hash order violated at %v", i, e.key)
			}
			if e.red && (m.nodes[e.left].red || m.nodes[e.right].red) {
				t.Fatalf("bucket %d: red node %v has a red child", i, e.key)
			}
			nodes++
			lh := walk(e.left, h, lo, e.hash)
			rh := walk(e.right, h, e.hash, hi)
			if lh != rh {
				t.Fatalf("bucket %d: black height %d != %d under %v", i, lh, rh, e.key)
			}
			if !e.red {
				lh++
			}
			return lh
		}
		walk(root, nilHandle, 0, ^uint32(0))
		if nodes != bin {
			t.Fatalf("bucket %d: tree holds %d nodes, thread holds %d", i, nodes, bin)
		}
	}
	if total != m.size {
		t.Fatalf("table holds %d entries, size is %d", total, m.size)
	}

	if m.order == Unordered {
		if m.head != nilHandle || m.tail != nilHandle {
			t.Fatalf("unordered map has an overlay")
		}
		return
	}
	count := 0
	before := nilHandle
	for h := m.head; h != nilHandle; h = m.nodes[h].after {
		if m.nodes[h].before != before {
			t.Fatalf("overlay: broken before link at %v", m.nodes[h].key)
		}
		before = h
		count++
	}
	if before != m.tail {
		t.Fatalf("overlay: tail mismatch")
	}
	if count != m.size {
		t.Fatalf("overlay holds %d entries, size is %d", count, m.size)
	}
}
