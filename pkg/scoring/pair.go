package scoring

import "sort"

// ScoredPair is a candidate pair after scoring: the two source keys, their
// batch indices, the composite score, and the per-field breakdown.
// ScoredPairs are ephemeral; they exist only within one run.
type ScoredPair struct {
	AKey   string
	BKey   string
	AIndex int
	BIndex int

	Score         float64
	Contributions map[string]Contribution
}

// SortPairs orders pairs by score descending, then by the lexicographic
// order of the concatenated keys. The tie-break guarantees byte-identical
// output across runs with identical input, which the resolver's sequential
// commit pass depends on.
func SortPairs(pairs []ScoredPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		return pairKey(pairs[i]) < pairKey(pairs[j])
	})
}

func pairKey(p ScoredPair) string {
	return p.AKey + "\x00" + p.BKey
}
