// Package resolve turns scored candidate pairs into a globally consistent
// match assignment. Under the default one-to-one policy each source key on
// either side commits to at most one match; keys that had qualifying
// candidates but lost them all to higher-scoring pairs are surfaced as
// AMBIGUOUS, a data-quality state distinct from a true non-match.
package resolve

import (
	"sort"

	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
)

// Status is the resolved state of a source key.
type Status string

const (
	// StatusMatched means the key committed to a pair.
	StatusMatched Status = "MATCHED"
	// StatusAmbiguous means the key had qualifying candidates but every
	// one was claimed by a higher-scoring pair.
	StatusAmbiguous Status = "AMBIGUOUS"
	// StatusUnmatched means the key had no qualifying candidate at all.
	StatusUnmatched Status = "UNMATCHED"
)

// Assignment is the resolved relationship for one source key. Matched
// assignments carry the paired key from the other side; ambiguous
// assignments carry the best score the key saw before losing its
// candidates.
type Assignment struct {
	Side       record.Side
	Key        string
	Status     Status
	Confidence float64
	PairedKey  string
}

// Resolver commits scored pairs using stable greedy bipartite matching.
type Resolver struct {
	threshold      float64
	allowOneToMany bool
}

// New creates a Resolver. threshold is the minimum qualifying score;
// allowOneToMany relaxes the bipartite exclusivity constraint so every
// qualifying pair commits, for domains where several side-A records
// legitimately map to one side-B record.
func New(threshold float64, allowOneToMany bool) *Resolver {
	return &Resolver{threshold: threshold, allowOneToMany: allowOneToMany}
}

// Resolve produces one assignment per key on each side. keysA and keysB
// are the full key universes of their batches; keys that never appear in
// a qualifying pair are UNMATCHED.
//
// The commit pass is inherently sequential: pairs are processed in the
// globally sorted order established by scoring.SortPairs, and a pair
// commits only if neither key is already claimed. Assignments are returned
// sorted by side then key.
func (r *Resolver) Resolve(pairs []scoring.ScoredPair, keysA, keysB []string) []Assignment {
	qualifying := make([]scoring.ScoredPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Score >= r.threshold {
			qualifying = append(qualifying, p)
		}
	}
	scoring.SortPairs(qualifying)

	committedA := make(map[string]commitment)
	committedB := make(map[string]commitment)

	// bestSeen tracks the best qualifying score per key so AMBIGUOUS
	// assignments can report how close the key came.
	bestSeenA := make(map[string]float64)
	bestSeenB := make(map[string]float64)

	var extra []Assignment // one-to-many commitments beyond the first

	for _, p := range qualifying {
		if p.Score > bestSeenA[p.AKey] {
			bestSeenA[p.AKey] = p.Score
		}
		if p.Score > bestSeenB[p.BKey] {
			bestSeenB[p.BKey] = p.Score
		}

		_, aClaimed := committedA[p.AKey]
		_, bClaimed := committedB[p.BKey]

		if r.allowOneToMany {
			// Every qualifying pair commits. The first commitment per key
			// becomes its primary assignment; later ones are emitted as
			// additional matched assignments.
			if !aClaimed {
				committedA[p.AKey] = commitment{pairedKey: p.BKey, confidence: p.Score}
			} else {
				extra = append(extra, Assignment{
					Side: record.SideA, Key: p.AKey, Status: StatusMatched,
					Confidence: p.Score, PairedKey: p.BKey,
				})
			}
			if !bClaimed {
				committedB[p.BKey] = commitment{pairedKey: p.AKey, confidence: p.Score}
			} else {
				extra = append(extra, Assignment{
					Side: record.SideB, Key: p.BKey, Status: StatusMatched,
					Confidence: p.Score, PairedKey: p.AKey,
				})
			}
			continue
		}

		if aClaimed || bClaimed {
			continue
		}
		committedA[p.AKey] = commitment{pairedKey: p.BKey, confidence: p.Score}
		committedB[p.BKey] = commitment{pairedKey: p.AKey, confidence: p.Score}
	}

	assignments := make([]Assignment, 0, len(keysA)+len(keysB)+len(extra))
	assignments = append(assignments, assignSide(record.SideA, keysA, committedA, bestSeenA)...)
	assignments = append(assignments, assignSide(record.SideB, keysB, committedB, bestSeenB)...)
	assignments = append(assignments, extra...)

	sort.SliceStable(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.PairedKey < b.PairedKey
	})
	return assignments
}

// commitment records the committed partner for one key.
type commitment struct {
	pairedKey  string
	confidence float64
}

func assignSide(side record.Side, keys []string, committed map[string]commitment, bestSeen map[string]float64) []Assignment {
	out := make([]Assignment, 0, len(keys))
	for _, key := range keys {
		if c, ok := committed[key]; ok {
			out = append(out, Assignment{
				Side: side, Key: key, Status: StatusMatched,
				Confidence: c.confidence, PairedKey: c.pairedKey,
			})
			continue
		}
		if best, ok := bestSeen[key]; ok {
			out = append(out, Assignment{
				Side: side, Key: key, Status: StatusAmbiguous, Confidence: best,
			})
			continue
		}
		out = append(out, Assignment{Side: side, Key: key, Status: StatusUnmatched})
	}
	return out
}
