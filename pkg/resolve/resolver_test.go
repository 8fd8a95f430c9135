package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
)

func pair(aKey, bKey string, score float64) scoring.ScoredPair {
	return scoring.ScoredPair{AKey: aKey, BKey: bKey, Score: score}
}

func byKey(assignments []Assignment, side record.Side) map[string]Assignment {
	out := make(map[string]Assignment)
	for _, a := range assignments {
		if a.Side == side {
			out[a.Key] = a
		}
	}
	return out
}

func TestResolveBasicMatch(t *testing.T) {
	r := New(0.8, false)
	got := r.Resolve(
		[]scoring.ScoredPair{pair("a1", "b1", 0.95)},
		[]string{"a1"}, []string{"b1"},
	)

	require.Len(t, got, 2)
	a := byKey(got, record.SideA)["a1"]
	assert.Equal(t, StatusMatched, a.Status)
	assert.Equal(t, "b1", a.PairedKey)
	assert.Equal(t, 0.95, a.Confidence)

	b := byKey(got, record.SideB)["b1"]
	assert.Equal(t, StatusMatched, b.Status)
	assert.Equal(t, "a1", b.PairedKey)
}

func TestResolveOneToOneInvariant(t *testing.T) {
	// Three side-A records all courting the same side-B record. Only the
	// best pair commits; the losers had qualifying candidates, so they are
	// ambiguous rather than unmatched.
	r := New(0.8, false)
	got := r.Resolve(
		[]scoring.ScoredPair{
			pair("a1", "b1", 0.91),
			pair("a2", "b1", 0.85),
			pair("a3", "b1", 0.80),
		},
		[]string{"a1", "a2", "a3"}, []string{"b1"},
	)

	aSide := byKey(got, record.SideA)
	assert.Equal(t, StatusMatched, aSide["a1"].Status)
	assert.Equal(t, StatusAmbiguous, aSide["a2"].Status)
	assert.Equal(t, StatusAmbiguous, aSide["a3"].Status)
	assert.Equal(t, 0.85, aSide["a2"].Confidence, "ambiguous keys report their best score")
	assert.Equal(t, 0.80, aSide["a3"].Confidence)

	bSide := byKey(got, record.SideB)
	assert.Equal(t, "a1", bSide["b1"].PairedKey)

	// No key may appear in two matched pairs.
	pairedB := map[string]int{}
	for _, a := range got {
		if a.Side == record.SideA && a.Status == StatusMatched {
			pairedB[a.PairedKey]++
		}
	}
	for b, n := range pairedB {
		assert.Equal(t, 1, n, "side-B key %s matched more than once", b)
	}
}

func TestResolveBelowThresholdIsUnmatched(t *testing.T) {
	r := New(0.8, false)
	got := r.Resolve(
		[]scoring.ScoredPair{pair("a1", "b1", 0.79)},
		[]string{"a1"}, []string{"b1"},
	)

	assert.Equal(t, StatusUnmatched, byKey(got, record.SideA)["a1"].Status,
		"sub-threshold candidates do not qualify")
	assert.Equal(t, StatusUnmatched, byKey(got, record.SideB)["b1"].Status)
}

func TestResolveKeysWithoutCandidates(t *testing.T) {
	r := New(0.8, false)
	got := r.Resolve(nil, []string{"a1", "a2"}, []string{"b1"})

	require.Len(t, got, 3, "every key gets exactly one assignment")
	for _, a := range got {
		assert.Equal(t, StatusUnmatched, a.Status)
	}
}

func TestResolveScoreTieBreaksOnKeys(t *testing.T) {
	// Equal scores competing for b1: the lexicographically first pair wins,
	// every run.
	r := New(0.8, false)
	for i := 0; i < 10; i++ {
		got := r.Resolve(
			[]scoring.ScoredPair{
				pair("a2", "b1", 0.9),
				pair("a1", "b1", 0.9),
			},
			[]string{"a1", "a2"}, []string{"b1"},
		)
		assert.Equal(t, StatusMatched, byKey(got, record.SideA)["a1"].Status)
		assert.Equal(t, StatusAmbiguous, byKey(got, record.SideA)["a2"].Status)
	}
}

func TestResolveOneToMany(t *testing.T) {
	r := New(0.8, true)
	got := r.Resolve(
		[]scoring.ScoredPair{
			pair("a1", "b1", 0.95),
			pair("a2", "b1", 0.90),
		},
		[]string{"a1", "a2"}, []string{"b1"},
	)

	matchedA := 0
	for _, a := range got {
		if a.Side == record.SideA && a.Status == StatusMatched {
			matchedA++
			assert.Equal(t, "b1", a.PairedKey)
		}
	}
	assert.Equal(t, 2, matchedA, "one-to-many commits every qualifying pair")
}

func TestResolveAssignmentsSorted(t *testing.T) {
	r := New(0.8, false)
	got := r.Resolve(
		[]scoring.ScoredPair{pair("a2", "b2", 0.9), pair("a1", "b1", 0.9)},
		[]string{"a2", "a1"}, []string{"b2", "b1"},
	)

	require.Len(t, got, 4)
	assert.Equal(t, record.SideA, got[0].Side)
	assert.Equal(t, "a1", got[0].Key)
	assert.Equal(t, "a2", got[1].Key)
	assert.Equal(t, record.SideB, got[2].Side)
	assert.Equal(t, "b1", got[2].Key)
}
