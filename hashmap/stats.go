package hashmap

// Stats is a snapshot of the bucket table layout.
type Stats struct {
	Capacity     int // bucket count (0 before the first insert)
	Threshold    int // size that triggers the next resize
	Size         int
	EmptyBins    int
	ChainBins    int
	TreeBins     int
	LongestChain int // longest chain-mode bucket
	LargestTree  int // entry count of the largest tree bin
}

// Stats walks the table and reports its layout. It is O(capacity + size).
func (m *Map[K, V]) Stats() Stats {
	s := Stats{Capacity: len(m.table), Threshold: m.threshold, Size: m.size}
	for _, first := range m.table {
		if first == nilHandle {
			s.EmptyBins++
			continue
		}
		n := 0
		for h := first; h != nilHandle; h = m.nodes[h].next {
			n++
		}
		if m.nodes[first].kind == treeBin {
			s.TreeBins++
			s.LargestTree = max(s.LargestTree, n)
		} else {
			s.ChainBins++
			s.LongestChain = max(s.LongestChain, n)
		}
	}
	return s
}
