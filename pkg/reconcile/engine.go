// Package reconcile orchestrates the full entity-resolution pipeline:
// normalization, blocking, parallel pairwise scoring, match resolution,
// duplicate clustering, and aggregation. It is the only package the
// dashboard layer needs to import.
//
// A run is a pure batch computation: identical inputs and configuration
// produce identical outputs, and nothing persists between runs.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cosmo-lgtm/ops-command-center/pkg/blocking"
	"github.com/cosmo-lgtm/ops-command-center/pkg/dedupe"
	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
	"github.com/cosmo-lgtm/ops-command-center/pkg/logging"
	"github.com/cosmo-lgtm/ops-command-center/pkg/normalize"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
	"github.com/cosmo-lgtm/ops-command-center/pkg/resolve"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
	"github.com/cosmo-lgtm/ops-command-center/pkg/stats"
)

// Engine runs reconciliation and duplicate-detection jobs. An Engine is
// stateless between runs and safe for concurrent use.
type Engine struct {
	workers       int
	scorerFactory ScorerFactory
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		workers:       o.workers,
		scorerFactory: o.scorerFactory,
	}, nil
}

// Reconcile links the side-A batch against the side-B batch and returns
// the full result: per-key assignments, per-side duplicate clusters,
// aggregate statistics, and diagnostics.
//
// Configuration errors abort the run before any pair is scored. Data
// problems on individual records never abort the run; the affected
// records are excluded with recorded diagnostics.
func (e *Engine) Reconcile(ctx context.Context, recordsA, recordsB []record.Record, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := newResult(cfg)
	ctx = logging.WithRunID(ctx, result.Metadata.RunID)
	log := logging.FromContext(ctx)

	log.Info().
		Int("records_a", len(recordsA)).
		Int("records_b", len(recordsB)).
		Float64("match_threshold", cfg.MatchThreshold).
		Bool("one_to_many", cfg.AllowOneToMany).
		Msg("starting reconciliation run")

	normalizer, err := normalize.New(cfg.Normalizers, cfg.BlockingFields)
	if err != nil {
		return nil, err
	}

	normA := normalizer.Batch(record.SideA, recordsA, result.Diagnostics)
	normB := normalizer.Batch(record.SideB, recordsB, result.Diagnostics)
	warnEmptySides(result.Diagnostics, normA, normB)

	if err := checkCanceled(ctx, "normalization"); err != nil {
		return nil, err
	}

	blocker := blocking.New(cfg.MaxBlockSize)
	candidates, err := blocker.Cross(normA, normB, result.Diagnostics)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("candidate_pairs", len(candidates)).Msg("blocking complete")

	scorer := e.scorerFactory(cfg.FieldWeights, cfg.FieldKinds)
	scored, err := e.scorePairs(ctx, scorer, normA, normB, candidates)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(cfg.MatchThreshold, cfg.AllowOneToMany)
	result.Assignments = resolver.Resolve(scored, keysOf(normA), keysOf(normB))

	if err := checkCanceled(ctx, "resolution"); err != nil {
		return nil, err
	}

	// Same-side clustering reuses the blocker and scorer. Unblockable
	// records were already reported during cross-side blocking, so the
	// same-side passes run without diagnostics.
	clusterer := dedupe.New(cfg.DuplicateThreshold)
	result.ClustersA, err = e.clusterSide(ctx, scorer, blocker, clusterer, normA, nil)
	if err != nil {
		return nil, err
	}
	result.ClustersB, err = e.clusterSide(ctx, scorer, blocker, clusterer, normB, nil)
	if err != nil {
		return nil, err
	}

	result.Summary = stats.Aggregate(result.Assignments, result.ClustersA, result.ClustersB,
		normA, normB, cfg.SegmentField)
	result.finalize()

	log.Info().
		Int("matched_a", result.Summary.SideA.Matched).
		Int("ambiguous_a", result.Summary.SideA.Ambiguous).
		Int("clusters", len(result.ClustersA)+len(result.ClustersB)).
		Float64("health_score", result.HealthScore()).
		Str("health_status", result.HealthStatus()).
		Dur("duration", result.Metadata.Duration).
		Msg("reconciliation run complete")

	return result, nil
}

// FindDuplicates runs duplicate detection on a single batch without any
// cross-side matching.
func (e *Engine) FindDuplicates(ctx context.Context, records []record.Record, cfg DuplicateConfig) ([]dedupe.Cluster, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	normalizer, err := normalize.New(cfg.Normalizers, cfg.BlockingFields)
	if err != nil {
		return nil, err
	}

	diag := record.NewDiagnostics()
	normalized := normalizer.Batch(record.SideA, records, diag)

	if err := checkCanceled(ctx, "normalization"); err != nil {
		return nil, err
	}

	scorer := e.scorerFactory(cfg.FieldWeights, cfg.FieldKinds)
	blocker := blocking.New(cfg.MaxBlockSize)
	clusterer := dedupe.New(cfg.DuplicateThreshold)

	clusters, err := e.clusterSide(ctx, scorer, blocker, clusterer, normalized, diag)
	if err != nil {
		return nil, err
	}

	// The return type carries only clusters, so excluded and unblockable
	// records surface through the run logger instead.
	diag.Sort()
	log := logging.FromContext(ctx)
	for _, w := range diag.Warnings {
		log.Warn().
			Str("kind", string(w.Kind)).
			Str("key", w.Key).
			Str("field", w.Field).
			Msg(w.Message)
	}

	log.Debug().
		Int("records", len(records)).
		Int("clusters", len(clusters)).
		Int("warnings", len(diag.Warnings)).
		Msg("duplicate detection complete")
	return clusters, nil
}

// clusterSide blocks, scores, and clusters one side's batch. diag may be
// nil when unblockable records were already reported by an earlier pass.
func (e *Engine) clusterSide(ctx context.Context, scorer scoring.PairScorer, blocker *blocking.Blocker,
	clusterer *dedupe.Clusterer, recs []record.Normalized, diag *record.Diagnostics) ([]dedupe.Cluster, error) {

	pairs, err := blocker.Same(recs, diag)
	if err != nil {
		return nil, err
	}
	scored, err := e.scorePairs(ctx, scorer, recs, recs, pairs)
	if err != nil {
		return nil, err
	}
	return clusterer.Cluster(recs, scored), nil
}

// scorePairs scores candidate pairs across a bounded worker pool. Each
// worker writes into its own slice segment, so the output order is the
// candidate order regardless of scheduling.
func (e *Engine) scorePairs(ctx context.Context, scorer scoring.PairScorer,
	recsA, recsB []record.Normalized, pairs []blocking.Pair) ([]scoring.ScoredPair, error) {

	if len(pairs) == 0 {
		return nil, nil
	}

	scored := make([]scoring.ScoredPair, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	chunk := (len(pairs) + e.workers - 1) / e.workers
	for start := 0; start < len(pairs); start += chunk {
		start := start
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := checkCanceled(ctx, "scoring"); err != nil {
					return err
				}
				p := pairs[i]
				a, b := &recsA[p.A], &recsB[p.B]
				s := scorer.Score(a, b)
				scored[i] = scoring.ScoredPair{
					AKey:          a.Key,
					BKey:          b.Key,
					AIndex:        p.A,
					BIndex:        p.B,
					Score:         s.Composite,
					Contributions: s.Contributions,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

func keysOf(recs []record.Normalized) []string {
	keys := make([]string, len(recs))
	for i := range recs {
		keys[i] = recs[i].Key
	}
	sort.Strings(keys)
	return keys
}

func warnEmptySides(diag *record.Diagnostics, normA, normB []record.Normalized) {
	if len(normA) == 0 && len(normB) > 0 {
		diag.Warn(record.WarnEmptyBatch, record.SideA, "", "", "side A batch is empty")
	}
	if len(normB) == 0 && len(normA) > 0 {
		diag.Warn(record.WarnEmptyBatch, record.SideB, "", "", "side B batch is empty")
	}
}

func checkCanceled(ctx context.Context, phase string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run canceled during %s: %w", phase, errors.ErrCanceled)
	}
	return nil
}
