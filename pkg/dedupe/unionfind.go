package dedupe

// unionFind is a disjoint-set structure over integer indices into a record
// batch. Clusters are built over indices rather than object graphs so the
// resulting clusters serialize trivially and carry no back-references.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find returns the root of i with path compression.
func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// union merges the sets containing i and j by rank.
func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	switch {
	case uf.rank[ri] < uf.rank[rj]:
		uf.parent[ri] = rj
	case uf.rank[ri] > uf.rank[rj]:
		uf.parent[rj] = ri
	default:
		uf.parent[rj] = ri
		uf.rank[ri]++
	}
}
