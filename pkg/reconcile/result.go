package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cosmo-lgtm/ops-command-center/pkg/dedupe"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
	"github.com/cosmo-lgtm/ops-command-center/pkg/resolve"
	"github.com/cosmo-lgtm/ops-command-center/pkg/stats"
)

// Result is the terminal artifact of a reconciliation run: assignments,
// duplicate clusters, aggregate statistics, and the diagnostics that
// enumerate every excluded or unblockable record. It is a plain nested
// structure suitable for direct tabular rendering.
type Result struct {
	// Summary holds counts, match rates, per-field agreement, segment
	// alignment, and consolidation statistics.
	Summary stats.Summary

	// Assignments lists the resolved status of every source key on both
	// sides, sorted by side then key.
	Assignments []resolve.Assignment

	// ClustersA and ClustersB are the duplicate clusters found within
	// each side.
	ClustersA []dedupe.Cluster
	ClustersB []dedupe.Cluster

	// Diagnostics enumerates excluded records, unblockable records, and
	// batch warnings. Never nil.
	Diagnostics *record.Diagnostics

	// Metadata describes the run itself.
	Metadata Metadata
}

// Metadata identifies a run for tracing and reporting.
type Metadata struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration

	MatchThreshold     float64
	DuplicateThreshold float64
	AllowOneToMany     bool
}

func newResult(cfg Config) *Result {
	return &Result{
		Diagnostics: record.NewDiagnostics(),
		Metadata: Metadata{
			RunID:              uuid.NewString(),
			StartedAt:          time.Now(),
			MatchThreshold:     cfg.MatchThreshold,
			DuplicateThreshold: cfg.DuplicateThreshold,
			AllowOneToMany:     cfg.AllowOneToMany,
		},
	}
}

// finalize stamps completion and orders diagnostics deterministically.
func (r *Result) finalize() {
	r.Metadata.CompletedAt = time.Now()
	r.Metadata.Duration = r.Metadata.CompletedAt.Sub(r.Metadata.StartedAt)
	r.Diagnostics.Sort()
}

// HealthScore returns the blended 0-100 data-quality score.
func (r *Result) HealthScore() float64 {
	return r.Summary.HealthScore()
}

// HealthStatus returns the banded health status: healthy, warning, or
// critical.
func (r *Result) HealthStatus() string {
	return r.Summary.HealthStatus()
}

// String returns a one-line human-readable summary.
func (r *Result) String() string {
	return fmt.Sprintf("reconciled %d x %d records: %d matched (%.1f%% / %.1f%%), %d clusters, health %.0f (%s)",
		r.Summary.SideA.Total, r.Summary.SideB.Total,
		r.Summary.SideA.Matched,
		100*r.Summary.SideA.MatchRate, 100*r.Summary.SideB.MatchRate,
		len(r.ClustersA)+len(r.ClustersB),
		r.HealthScore(), r.HealthStatus())
}
