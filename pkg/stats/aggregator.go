// Package stats reduces resolver and clusterer output into the aggregate
// match-rate and data-quality metrics the dashboard renders: per-side
// counts and rates, per-field agreement among matched pairs, per-segment
// alignment rows, and the blended health score.
package stats

import (
	"math"
	"sort"

	"github.com/cosmo-lgtm/ops-command-center/pkg/dedupe"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
	"github.com/cosmo-lgtm/ops-command-center/pkg/resolve"
)

// Health score component weights and status bands, mirroring the
// dashboard's data-quality page.
const (
	healthMatchWeight     = 0.35
	healthAlignmentWeight = 0.40
	healthDuplicateWeight = 0.25

	// HealthyThreshold is the minimum health score considered healthy.
	HealthyThreshold = 90
	// WarningThreshold is the minimum health score considered a warning
	// rather than critical.
	WarningThreshold = 70
)

// SideStats holds the per-side counts and match rate.
type SideStats struct {
	Total     int
	Matched   int
	Ambiguous int
	Unmatched int

	// MatchRate is Matched / Total, and 0 when the side is empty.
	MatchRate float64
}

// FieldRate is the agreement rate for one field among matched pairs.
type FieldRate struct {
	Field      string
	Agreements int
	Pairs      int
	Rate       float64
}

// SegmentRow compares both sides within one segment value, mirroring the
// dashboard's alignment rows.
type SegmentRow struct {
	Segment   string
	CountA    int
	CountB    int
	Matched   int
	Delta     int
	MatchRate float64
}

// Consolidation summarizes duplicate clustering for one side.
type Consolidation struct {
	Clusters int
	// KeysConsolidated is the number of source keys absorbed into a
	// canonical record: sum of (cluster size - 1).
	KeysConsolidated int
}

// Summary is the aggregate view of one reconciliation run.
type Summary struct {
	SideA SideStats
	SideB SideStats

	// FieldRates reports, per field, the fraction of matched pairs whose
	// canonical values agree exactly. Surfaces systematic field-level
	// drift separately from the entity-level match rate.
	FieldRates []FieldRate

	// Segments holds per-segment alignment rows, sorted by segment value.
	// Empty unless a segment field was configured.
	Segments []SegmentRow

	ConsolidationA Consolidation
	ConsolidationB Consolidation
}

// Aggregate reduces a run's outputs into a Summary. segmentField selects
// the canonical field used for alignment rows; empty disables them.
func Aggregate(assignments []resolve.Assignment, clustersA, clustersB []dedupe.Cluster,
	recsA, recsB []record.Normalized, segmentField string) Summary {

	s := Summary{
		SideA: SideStats{Total: len(recsA)},
		SideB: SideStats{Total: len(recsB)},
	}

	byKeyA := indexByKey(recsA)
	byKeyB := indexByKey(recsB)

	// Distinct keys per status keep one-to-many runs from inflating rates
	// above 1.
	matchedA := make(map[string]struct{})
	matchedB := make(map[string]struct{})

	type matchedPair struct{ aKey, bKey string }
	var pairs []matchedPair

	for _, a := range assignments {
		switch a.Status {
		case resolve.StatusMatched:
			if a.Side == record.SideA {
				matchedA[a.Key] = struct{}{}
				pairs = append(pairs, matchedPair{aKey: a.Key, bKey: a.PairedKey})
			} else {
				matchedB[a.Key] = struct{}{}
			}
		case resolve.StatusAmbiguous:
			if a.Side == record.SideA {
				s.SideA.Ambiguous++
			} else {
				s.SideB.Ambiguous++
			}
		case resolve.StatusUnmatched:
			if a.Side == record.SideA {
				s.SideA.Unmatched++
			} else {
				s.SideB.Unmatched++
			}
		}
	}

	s.SideA.Matched = len(matchedA)
	s.SideB.Matched = len(matchedB)
	s.SideA.MatchRate = rate(s.SideA.Matched, s.SideA.Total)
	s.SideB.MatchRate = rate(s.SideB.Matched, s.SideB.Total)

	// Per-field agreement among matched pairs.
	agreements := make(map[string]*FieldRate)
	for _, p := range pairs {
		ra, okA := byKeyA[p.aKey]
		rb, okB := byKeyB[p.bKey]
		if !okA || !okB {
			continue
		}
		for field, va := range ra.Canonical {
			vb, ok := rb.Canonical[field]
			if !ok || va == "" || vb == "" {
				continue
			}
			fr := agreements[field]
			if fr == nil {
				fr = &FieldRate{Field: field}
				agreements[field] = fr
			}
			fr.Pairs++
			if va == vb {
				fr.Agreements++
			}
		}
	}
	for _, fr := range agreements {
		fr.Rate = rate(fr.Agreements, fr.Pairs)
		s.FieldRates = append(s.FieldRates, *fr)
	}
	sort.Slice(s.FieldRates, func(i, j int) bool { return s.FieldRates[i].Field < s.FieldRates[j].Field })

	if segmentField != "" {
		s.Segments = segmentRows(segmentField, recsA, recsB, matchedA)
	}

	s.ConsolidationA = consolidation(clustersA)
	s.ConsolidationB = consolidation(clustersB)

	return s
}

// HealthScore blends match quality (35%), cross-system alignment (40%),
// and duplicate pressure (25%) into a 0-100 score.
func (s Summary) HealthScore() float64 {
	alignment := (s.SideA.MatchRate + s.SideB.MatchRate) / 2
	if len(s.Segments) > 0 {
		total := 0.0
		for _, row := range s.Segments {
			total += row.MatchRate
		}
		alignment = total / float64(len(s.Segments))
	}

	totalRecords := s.SideA.Total + s.SideB.Total
	duplicateHealth := 1.0
	if totalRecords > 0 {
		consolidated := s.ConsolidationA.KeysConsolidated + s.ConsolidationB.KeysConsolidated
		duplicateHealth = 1 - float64(consolidated)/float64(totalRecords)
	}

	score := 100 * (healthMatchWeight*s.SideA.MatchRate +
		healthAlignmentWeight*alignment +
		healthDuplicateWeight*duplicateHealth)
	return math.Max(0, math.Min(100, score))
}

// HealthStatus bands the health score the way the dashboard badges do.
func (s Summary) HealthStatus() string {
	score := s.HealthScore()
	switch {
	case score >= HealthyThreshold:
		return "healthy"
	case score >= WarningThreshold:
		return "warning"
	default:
		return "critical"
	}
}

func segmentRows(field string, recsA, recsB []record.Normalized, matchedA map[string]struct{}) []SegmentRow {
	rows := make(map[string]*SegmentRow)

	segment := func(rec *record.Normalized) string {
		if v, ok := rec.Canonical[field]; ok && v != "" {
			return v
		}
		return "(none)"
	}
	row := func(seg string) *SegmentRow {
		r, ok := rows[seg]
		if !ok {
			r = &SegmentRow{Segment: seg}
			rows[seg] = r
		}
		return r
	}

	for i := range recsA {
		r := row(segment(&recsA[i]))
		r.CountA++
		if _, ok := matchedA[recsA[i].Key]; ok {
			r.Matched++
		}
	}
	for i := range recsB {
		row(segment(&recsB[i])).CountB++
	}

	out := make([]SegmentRow, 0, len(rows))
	for _, r := range rows {
		r.Delta = r.CountB - r.CountA
		r.MatchRate = rate(r.Matched, r.CountA)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Segment < out[j].Segment })
	return out
}

func consolidation(clusters []dedupe.Cluster) Consolidation {
	c := Consolidation{Clusters: len(clusters)}
	for _, cluster := range clusters {
		c.KeysConsolidated += cluster.Size() - 1
	}
	return c
}

func indexByKey(recs []record.Normalized) map[string]*record.Normalized {
	byKey := make(map[string]*record.Normalized, len(recs))
	for i := range recs {
		byKey[recs[i].Key] = &recs[i]
	}
	return byKey
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
