// Package scoring computes pairwise similarity between normalized records.
// A composite score in [0,1] is a weighted sum of per-field similarities,
// normalized by the total weight of fields present on both sides; a field
// missing on either side contributes no weight rather than a zero score,
// so sparse records are not punished as if they disagreed.
//
// The scorer never declares a winner. Ties and one-to-many ambiguity are
// the resolver's concern.
package scoring

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

// Field weights applied when no explicit weight map is configured.
const (
	DefaultIdentifierWeight = 1.0
	DefaultFieldWeight      = 0.5
)

// Relative weights of the Jaro-Winkler and Levenshtein components of the
// text metric.
const (
	jaroWinklerWeight = 0.7
	levenshteinWeight = 0.3
)

// FieldKind selects the similarity metric for a field.
type FieldKind string

const (
	// KindAuto derives the kind from the field name.
	KindAuto FieldKind = "auto"
	// KindIdentifier compares with exact-match boolean similarity.
	KindIdentifier FieldKind = "identifier"
	// KindText compares with blended Jaro-Winkler and normalized
	// Levenshtein similarity.
	KindText FieldKind = "text"
	// KindNumeric compares with relative numeric closeness.
	KindNumeric FieldKind = "numeric"
)

// Contribution is one field's share of a composite score.
type Contribution struct {
	Similarity float64
	Weight     float64
}

// Score is the result of scoring one candidate pair.
type Score struct {
	// Composite is the weighted similarity in [0,1]. Zero when no weighted
	// field is present on both sides.
	Composite float64

	// Contributions breaks the composite down by field. Only fields that
	// carried weight appear.
	Contributions map[string]Contribution
}

// PairScorer scores one candidate pair. Implemented by Scorer; the engine
// accepts the interface so tests can observe scoring calls.
type PairScorer interface {
	Score(a, b *record.Normalized) Score
}

// Scorer computes composite pair scores. It is read-only after
// construction and safe for concurrent use from parallel block workers.
type Scorer struct {
	weights map[string]float64
	kinds   map[string]FieldKind
}

// New creates a Scorer. weights maps field name to weight; when empty,
// identifier-kind fields default to weight 1.0 and all others to 0.5.
// kinds overrides the per-field metric; unnamed fields use name
// heuristics.
func New(weights map[string]float64, kinds map[string]FieldKind) *Scorer {
	w := make(map[string]float64, len(weights))
	for field, weight := range weights {
		w[field] = weight
	}
	k := make(map[string]FieldKind, len(kinds))
	for field, kind := range kinds {
		k[field] = kind
	}
	return &Scorer{weights: w, kinds: k}
}

// Score computes the composite similarity for a candidate pair.
func (s *Scorer) Score(a, b *record.Normalized) Score {
	fields := s.scorableFields(a, b)

	contributions := make(map[string]Contribution, len(fields))
	var weighted, totalWeight float64

	for _, field := range fields {
		va, okA := a.Canonical[field]
		vb, okB := b.Canonical[field]
		// Absent or empty on either side: the field carries no weight,
		// not a zero similarity.
		if !okA || !okB || va == "" || vb == "" {
			continue
		}

		weight := s.weightFor(field)
		if weight <= 0 {
			continue
		}

		sim := s.similarity(field, va, vb)
		contributions[field] = Contribution{Similarity: sim, Weight: weight}
		weighted += sim * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return Score{Contributions: contributions}
	}
	return Score{
		Composite:     weighted / totalWeight,
		Contributions: contributions,
	}
}

// scorableFields returns the sorted union of weighted fields, or of all
// non-key fields when no weights are configured.
func (s *Scorer) scorableFields(a, b *record.Normalized) []string {
	set := make(map[string]struct{})
	if len(s.weights) > 0 {
		for field := range s.weights {
			set[field] = struct{}{}
		}
	} else {
		for field := range a.Canonical {
			set[field] = struct{}{}
		}
		for field := range b.Canonical {
			set[field] = struct{}{}
		}
	}

	fields := make([]string, 0, len(set))
	for field := range set {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (s *Scorer) weightFor(field string) float64 {
	if len(s.weights) > 0 {
		return s.weights[field]
	}
	if s.kindFor(field) == KindIdentifier {
		return DefaultIdentifierWeight
	}
	return DefaultFieldWeight
}

func (s *Scorer) kindFor(field string) FieldKind {
	if kind, ok := s.kinds[field]; ok && kind != KindAuto {
		return kind
	}
	return guessKind(field)
}

// guessKind classifies a field by name when no explicit kind is
// configured.
func guessKind(field string) FieldKind {
	f := strings.ToLower(field)
	for _, marker := range []string{"id", "code", "key", "sku", "ein", "zip", "postal", "phone", "email"} {
		if strings.Contains(f, marker) {
			return KindIdentifier
		}
	}
	for _, marker := range []string{"amount", "price", "qty", "quantity", "revenue", "volume", "total", "count", "cases"} {
		if strings.Contains(f, marker) {
			return KindNumeric
		}
	}
	return KindText
}

// similarity applies the kind-appropriate metric.
func (s *Scorer) similarity(field, a, b string) float64 {
	switch s.kindFor(field) {
	case KindIdentifier:
		if a == b {
			return 1
		}
		return 0
	case KindNumeric:
		return numericSimilarity(a, b)
	default:
		return TextSimilarity(a, b)
	}
}

// TextSimilarity blends Jaro-Winkler and normalized Levenshtein
// similarity, case-insensitively. Identical strings score 1.
func TextSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	jw := smetrics.JaroWinkler(a, b, 0.7, 4)

	// ComputeDistance counts runes, so the normalizing length must too.
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	lev := 1 - float64(dist)/float64(maxLen)

	score := jaroWinklerWeight*jw + levenshteinWeight*lev
	return clamp01(score)
}

// numericSimilarity measures relative closeness of two numeric values.
// Values that fail to parse as numbers fall back to text similarity.
func numericSimilarity(a, b string) float64 {
	na, okA := record.Number(a)
	nb, okB := record.Number(b)
	if !okA || !okB {
		return TextSimilarity(a, b)
	}
	if na == nb {
		return 1
	}
	denom := math.Max(math.Abs(na), math.Abs(nb))
	if denom == 0 {
		return 1
	}
	return clamp01(1 - math.Abs(na-nb)/denom)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
