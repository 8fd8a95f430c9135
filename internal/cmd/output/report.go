package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/cosmo-lgtm/ops-command-center/pkg/dedupe"
	"github.com/cosmo-lgtm/ops-command-center/pkg/reconcile"
	"github.com/cosmo-lgtm/ops-command-center/pkg/resolve"
)

// ReconcileReport converts a run result into renderable table sections:
// the summary, per-field agreement, segment alignment when configured,
// and duplicate consolidation.
func ReconcileReport(res *reconcile.Result) []Data {
	sections := []Data{summarySection(res)}

	if len(res.Summary.FieldRates) > 0 {
		sections = append(sections, fieldRateSection(res))
	}
	if len(res.Summary.Segments) > 0 {
		sections = append(sections, segmentSection(res))
	}
	if len(res.ClustersA) > 0 || len(res.ClustersB) > 0 {
		sections = append(sections, ClusterSection("Duplicates (side A)", res.ClustersA))
		sections = append(sections, ClusterSection("Duplicates (side B)", res.ClustersB))
	}

	return sections
}

// AssignmentSection lists non-matched assignments for review. Matched
// assignments are summarized by the counts; the interesting rows are the
// ambiguous and unmatched ones.
func AssignmentSection(res *reconcile.Result) Data {
	data := Data{
		Title:   "Unresolved records",
		Headers: []string{"SIDE", "KEY", "STATUS", "BEST SCORE"},
	}
	for _, a := range res.Assignments {
		if a.Status == resolve.StatusMatched {
			continue
		}
		best := ""
		if a.Status == resolve.StatusAmbiguous {
			best = fmt.Sprintf("%.3f", a.Confidence)
		}
		data.Rows = append(data.Rows, []string{string(a.Side), a.Key, string(a.Status), best})
	}
	return data
}

// ClusterSection renders duplicate clusters for one side.
func ClusterSection(title string, clusters []dedupe.Cluster) Data {
	data := Data{
		Title:   title,
		Headers: []string{"CANONICAL", "SIZE", "MEMBERS"},
	}
	for _, c := range clusters {
		data.Rows = append(data.Rows, []string{
			c.CanonicalKey,
			fmt.Sprintf("%d", c.Size()),
			strings.Join(c.Keys, ", "),
		})
	}
	return data
}

func summarySection(res *reconcile.Result) Data {
	s := res.Summary
	return Data{
		Title:   fmt.Sprintf("Run %s (%s)", res.Metadata.RunID, res.Metadata.Duration.Round(time.Millisecond)),
		Headers: []string{"METRIC", "SIDE A", "SIDE B"},
		Rows: [][]string{
			{"Records", fmt.Sprintf("%d", s.SideA.Total), fmt.Sprintf("%d", s.SideB.Total)},
			{"Matched", fmt.Sprintf("%d", s.SideA.Matched), fmt.Sprintf("%d", s.SideB.Matched)},
			{"Ambiguous", fmt.Sprintf("%d", s.SideA.Ambiguous), fmt.Sprintf("%d", s.SideB.Ambiguous)},
			{"Unmatched", fmt.Sprintf("%d", s.SideA.Unmatched), fmt.Sprintf("%d", s.SideB.Unmatched)},
			{"Match rate", percent(s.SideA.MatchRate), percent(s.SideB.MatchRate)},
			{"Duplicate clusters", fmt.Sprintf("%d", s.ConsolidationA.Clusters), fmt.Sprintf("%d", s.ConsolidationB.Clusters)},
			{"Health", fmt.Sprintf("%.0f (%s)", res.HealthScore(), res.HealthStatus()), ""},
		},
	}
}

func fieldRateSection(res *reconcile.Result) Data {
	data := Data{
		Title:   "Field agreement among matched pairs",
		Headers: []string{"FIELD", "AGREE", "PAIRS", "RATE"},
	}
	for _, fr := range res.Summary.FieldRates {
		data.Rows = append(data.Rows, []string{
			fr.Field,
			fmt.Sprintf("%d", fr.Agreements),
			fmt.Sprintf("%d", fr.Pairs),
			percent(fr.Rate),
		})
	}
	return data
}

func segmentSection(res *reconcile.Result) Data {
	data := Data{
		Title:   "Segment alignment",
		Headers: []string{"SEGMENT", "SIDE A", "SIDE B", "MATCHED", "DELTA", "RATE"},
	}
	for _, row := range res.Summary.Segments {
		data.Rows = append(data.Rows, []string{
			row.Segment,
			fmt.Sprintf("%d", row.CountA),
			fmt.Sprintf("%d", row.CountB),
			fmt.Sprintf("%d", row.Matched),
			fmt.Sprintf("%+d", row.Delta),
			percent(row.MatchRate),
		})
	}
	return data
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", 100*v)
}
