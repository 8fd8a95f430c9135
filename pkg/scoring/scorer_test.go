package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

func normalized(key string, fields map[string]string) *record.Normalized {
	return &record.Normalized{Key: key, Canonical: fields}
}

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "acme corp", "acme corp", 1, 1},
		{"case insensitive", "ACME", "acme", 1, 1},
		{"near match", "acme inc", "acme inc.", 0.9, 1},
		{"typo", "widget works", "widget wroks", 0.85, 1},
		{"unrelated", "acme", "zzgluborp", 0, 0.55},
		{"one empty", "acme", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min, "similarity(%q,%q)", tt.a, tt.b)
			assert.LessOrEqual(t, got, tt.max, "similarity(%q,%q)", tt.a, tt.b)
		})
	}
}

func TestTextSimilarityMultibyte(t *testing.T) {
	// Every rune differs, so the edit distance equals the rune count and
	// the Levenshtein term contributes nothing. Normalizing by byte length
	// would halve the apparent distance for two-byte runes and inflate the
	// score above the unrelated-pair ceiling.
	assert.LessOrEqual(t, TextSimilarity("ααα", "βββ"), 0.5)

	assert.Equal(t, 1.0, TextSimilarity("Café Müller", "café müller"))
}

func TestTextSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"acme inc", "acme inc."},
		{"smith", "smyth"},
		{"widget", "gadget"},
	}
	for _, p := range pairs {
		assert.InDelta(t, TextSimilarity(p[0], p[1]), TextSimilarity(p[1], p[0]), 1e-12)
	}
}

func TestScoreCompositeBounds(t *testing.T) {
	s := New(nil, nil)
	a := normalized("a1", map[string]string{"name": "acme", "city": "springfield"})
	b := normalized("b1", map[string]string{"name": "acme co", "city": "shelbyville"})

	score := s.Score(a, b)
	assert.GreaterOrEqual(t, score.Composite, 0.0)
	assert.LessOrEqual(t, score.Composite, 1.0)
	assert.Len(t, score.Contributions, 2)
}

func TestScoreMissingFieldCarriesNoWeight(t *testing.T) {
	s := New(map[string]float64{"name": 1.0, "ein": 1.0}, nil)

	// ein is present on only one side; it must not drag the composite down.
	a := normalized("a1", map[string]string{"name": "acme", "ein": "123456789"})
	b := normalized("b1", map[string]string{"name": "acme"})

	score := s.Score(a, b)
	assert.InDelta(t, 1.0, score.Composite, 1e-9,
		"a field absent on one side contributes no weight, not a zero similarity")
	_, hasEIN := score.Contributions["ein"]
	assert.False(t, hasEIN)
}

func TestScoreNoSharedFields(t *testing.T) {
	s := New(nil, nil)
	a := normalized("a1", map[string]string{"name": "acme"})
	b := normalized("b1", map[string]string{"city": "springfield"})

	score := s.Score(a, b)
	assert.Zero(t, score.Composite)
	assert.Empty(t, score.Contributions)
}

func TestScoreIdentifierExactMatch(t *testing.T) {
	s := New(map[string]float64{"tax_id": 1.0}, map[string]FieldKind{"tax_id": KindIdentifier})

	same := s.Score(
		normalized("a", map[string]string{"tax_id": "12-3456789"}),
		normalized("b", map[string]string{"tax_id": "12-3456789"}),
	)
	diff := s.Score(
		normalized("a", map[string]string{"tax_id": "12-3456789"}),
		normalized("b", map[string]string{"tax_id": "12-3456780"}),
	)

	assert.Equal(t, 1.0, same.Composite)
	assert.Equal(t, 0.0, diff.Composite, "identifiers are exact-match, never fuzzy")
}

func TestScoreNumericCloseness(t *testing.T) {
	s := New(map[string]float64{"revenue": 1.0}, map[string]FieldKind{"revenue": KindNumeric})

	close := s.Score(
		normalized("a", map[string]string{"revenue": "1000"}),
		normalized("b", map[string]string{"revenue": "990"}),
	)
	far := s.Score(
		normalized("a", map[string]string{"revenue": "1000"}),
		normalized("b", map[string]string{"revenue": "10"}),
	)

	assert.Greater(t, close.Composite, 0.98)
	assert.Less(t, far.Composite, 0.05)
	assert.Greater(t, close.Composite, far.Composite)
}

func TestGuessKind(t *testing.T) {
	tests := []struct {
		field string
		want  FieldKind
	}{
		{"tax_id", KindIdentifier},
		{"zip", KindIdentifier},
		{"phone", KindIdentifier},
		{"annual_revenue", KindNumeric},
		{"case_count", KindNumeric},
		{"name", KindText},
		{"city", KindText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, guessKind(tt.field), "field %q", tt.field)
	}
}

func TestSortPairsDeterministic(t *testing.T) {
	pairs := []ScoredPair{
		{AKey: "a2", BKey: "b1", Score: 0.9},
		{AKey: "a1", BKey: "b2", Score: 0.9},
		{AKey: "a3", BKey: "b3", Score: 0.95},
	}
	SortPairs(pairs)

	require.Equal(t, "a3", pairs[0].AKey, "highest score first")
	assert.Equal(t, "a1", pairs[1].AKey, "ties break lexicographically on keys")
	assert.Equal(t, "a2", pairs[2].AKey)
}
