// Package blocking partitions normalized records into candidate buckets so
// that only plausibly matching pairs reach the pairwise scorer. Two records
// become a candidate pair when they share at least one blocking token.
//
// The blocker enforces a ceiling on average block size: a blocking scheme
// that degenerates toward the full cross product is a configuration error,
// reported before any pair is scored.
package blocking

import (
	"fmt"
	"sort"

	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

// DefaultMaxBlockSize is the default ceiling on average block size.
const DefaultMaxBlockSize = 5000

// Pair is a candidate pair of batch indices. For cross-side blocking A
// indexes the side-A batch and B the side-B batch; for same-side blocking
// both index the same batch with A < B.
type Pair struct {
	A int
	B int
}

// Blocker generates candidate pairs from blocking tokens.
type Blocker struct {
	maxBlockSize int
}

// New creates a Blocker with the given average-block-size ceiling.
// A non-positive ceiling uses DefaultMaxBlockSize.
func New(maxBlockSize int) *Blocker {
	if maxBlockSize <= 0 {
		maxBlockSize = DefaultMaxBlockSize
	}
	return &Blocker{maxBlockSize: maxBlockSize}
}

// index maps each blocking token to the batch indices carrying it.
type index map[string][]int

func buildIndex(recs []record.Normalized, diag *record.Diagnostics) index {
	idx := make(index)
	for i := range recs {
		toks := recs[i].AllTokens()
		if len(toks) == 0 {
			if diag != nil {
				diag.MarkUnblockable(recs[i].Side, recs[i].Key)
			}
			continue
		}
		for _, t := range toks {
			idx[t] = append(idx[t], i)
		}
	}
	return idx
}

// guard rejects a blocking scheme whose average block size exceeds the
// ceiling. This bounds worst-case run time: without it a degenerate scheme
// silently turns blocking into a quadratic comparison.
func (b *Blocker) guard(blocks map[string]int) error {
	if len(blocks) == 0 {
		return nil
	}
	total := 0
	for _, size := range blocks {
		total += size
	}
	avg := total / len(blocks)
	if avg > b.maxBlockSize {
		return errors.NewConfigError("blocker",
			fmt.Sprintf("average block size %d exceeds ceiling %d; choose more selective blocking fields", avg, b.maxBlockSize), nil)
	}
	return nil
}

// Cross generates the deduplicated candidate pairs between two sides:
// every (a, b) pair sharing at least one blocking token. Records without
// tokens are reported unblockable through diag and excluded. Cost is
// O(sum of block sizes squared), never O(|A|*|B|).
func (b *Blocker) Cross(recsA, recsB []record.Normalized, diag *record.Diagnostics) ([]Pair, error) {
	idxA := buildIndex(recsA, diag)
	idxB := buildIndex(recsB, diag)

	blocks := make(map[string]int)
	for tok, members := range idxA {
		blocks[tok] += len(members)
	}
	for tok, members := range idxB {
		blocks[tok] += len(members)
	}
	if err := b.guard(blocks); err != nil {
		return nil, err
	}

	seen := make(map[Pair]struct{})
	var pairs []Pair
	for tok, membersA := range idxA {
		membersB, ok := idxB[tok]
		if !ok {
			continue
		}
		for _, ia := range membersA {
			for _, ib := range membersB {
				p := Pair{A: ia, B: ib}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				pairs = append(pairs, p)
			}
		}
	}

	sortPairs(pairs)
	return pairs, nil
}

// Same generates the deduplicated candidate pairs within one side, with
// A < B so a record is never paired with itself.
func (b *Blocker) Same(recs []record.Normalized, diag *record.Diagnostics) ([]Pair, error) {
	idx := buildIndex(recs, diag)

	blocks := make(map[string]int, len(idx))
	for tok, members := range idx {
		blocks[tok] = len(members)
	}
	if err := b.guard(blocks); err != nil {
		return nil, err
	}

	seen := make(map[Pair]struct{})
	var pairs []Pair
	for _, members := range idx {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				p := Pair{A: members[i], B: members[j]}
				if p.A > p.B {
					p.A, p.B = p.B, p.A
				}
				if p.A == p.B {
					continue
				}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				pairs = append(pairs, p)
			}
		}
	}

	sortPairs(pairs)
	return pairs, nil
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}
