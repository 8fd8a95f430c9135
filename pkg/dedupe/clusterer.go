// Package dedupe groups near-duplicate records within one side into
// clusters believed to represent a single real-world entity. Candidate
// pairs come from the same blocker used for cross-side matching, scored by
// the same pairwise scorer, and are unioned when they clear the duplicate
// threshold (typically stricter than the match threshold).
package dedupe

import (
	"sort"

	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
)

// DefaultThreshold is the default duplicate score threshold, stricter
// than the default match threshold.
const DefaultThreshold = 0.92

// PairScore records one scored same-side pair that justified a grouping.
type PairScore struct {
	KeyA  string
	KeyB  string
	Score float64
}

// Cluster is a set of same-side record keys believed to represent one
// real-world entity, with a designated canonical key. Clusters within one
// run are disjoint and always have at least two members.
type Cluster struct {
	Side         record.Side
	Keys         []string
	CanonicalKey string
	Scores       []PairScore
}

// Size returns the number of records in the cluster.
func (c Cluster) Size() int {
	return len(c.Keys)
}

// Clusterer groups same-side records by transitive duplicate links.
type Clusterer struct {
	threshold float64
}

// New creates a Clusterer. A non-positive threshold uses DefaultThreshold.
func New(threshold float64) *Clusterer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Clusterer{threshold: threshold}
}

// Cluster unions records whose pairwise score clears the duplicate
// threshold and returns each connected component of size two or more as a
// Cluster. Singleton components are dropped, not emitted. pairs must be
// same-side pairs with indices into recs; self-pairs are excluded upstream
// by the blocker.
func (c *Clusterer) Cluster(recs []record.Normalized, pairs []scoring.ScoredPair) []Cluster {
	if len(recs) == 0 {
		return nil
	}

	uf := newUnionFind(len(recs))
	edges := make(map[int][]PairScore)

	for _, p := range pairs {
		if p.Score < c.threshold {
			continue
		}
		uf.union(p.AIndex, p.BIndex)
		root := uf.find(p.AIndex)
		edges[root] = append(edges[root], PairScore{KeyA: p.AKey, KeyB: p.BKey, Score: p.Score})
	}

	// Union operations can re-root components after edges were recorded,
	// so regroup members and edges by final root.
	members := make(map[int][]int)
	for i := range recs {
		members[uf.find(i)] = append(members[uf.find(i)], i)
	}
	justifications := make(map[int][]PairScore)
	for root, scores := range edges {
		justifications[uf.find(root)] = append(justifications[uf.find(root)], scores...)
	}

	var clusters []Cluster
	for root, indices := range members {
		if len(indices) < 2 {
			continue
		}

		keys := make([]string, len(indices))
		for i, idx := range indices {
			keys[i] = recs[idx].Key
		}
		sort.Strings(keys)

		scores := justifications[root]
		sort.SliceStable(scores, func(i, j int) bool {
			if scores[i].KeyA != scores[j].KeyA {
				return scores[i].KeyA < scores[j].KeyA
			}
			return scores[i].KeyB < scores[j].KeyB
		})

		clusters = append(clusters, Cluster{
			Side:         recs[indices[0]].Side,
			Keys:         keys,
			CanonicalKey: canonicalKey(recs, indices),
			Scores:       scores,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Keys[0] < clusters[j].Keys[0]
	})
	return clusters
}

// canonicalKey selects the record that stands for the cluster: fewest
// null/empty fields first, then most recent update timestamp when present,
// then lowest source key. The selection is deterministic for identical
// input.
func canonicalKey(recs []record.Normalized, indices []int) string {
	best := indices[0]
	for _, idx := range indices[1:] {
		if betterCanonical(&recs[idx], &recs[best]) {
			best = idx
		}
	}
	return recs[best].Key
}

func betterCanonical(candidate, current *record.Normalized) bool {
	ce, be := candidate.EmptyFieldCount(), current.EmptyFieldCount()
	if ce != be {
		return ce < be
	}

	ct, cok := candidate.UpdatedAt()
	bt, bok := current.UpdatedAt()
	switch {
	case cok && !bok:
		return true
	case !cok && bok:
		return false
	case cok && bok && !ct.Equal(bt):
		return ct.After(bt)
	}

	return candidate.Key < current.Key
}
