// Package opscenter reconciles records between two systems that describe
// the same real-world entities but share no reliable common key. It links
// an inventory batch against a CRM batch through normalization, blocking,
// fuzzy pairwise scoring, and one-to-one match resolution, finds duplicate
// records within each system, and reduces the outcome to the match-rate
// and data-quality statistics a reporting dashboard renders.
//
// The package is a thin facade over pkg/reconcile, which hosts the engine
// and its configuration. Typical use:
//
//	result, err := opscenter.Reconcile(ctx, inventory, crm, reconcile.Config{
//		BlockingFields: []string{"name", "zip"},
//		Normalizers:    map[string]string{"name": "strip_legal_suffix_lowercase"},
//	})
package opscenter

import (
	"context"

	"github.com/cosmo-lgtm/ops-command-center/pkg/dedupe"
	"github.com/cosmo-lgtm/ops-command-center/pkg/reconcile"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

// Reconcile links the side-A batch against the side-B batch and returns
// assignments, duplicate clusters, statistics, and diagnostics. Runs are
// deterministic: identical inputs and configuration produce identical
// results.
func Reconcile(ctx context.Context, recordsA, recordsB []record.Record, cfg reconcile.Config, opts ...reconcile.Option) (*reconcile.Result, error) {
	engine, err := reconcile.New(opts...)
	if err != nil {
		return nil, err
	}
	return engine.Reconcile(ctx, recordsA, recordsB, cfg)
}

// FindDuplicates detects duplicate clusters within a single batch without
// any cross-system matching.
func FindDuplicates(ctx context.Context, records []record.Record, cfg reconcile.DuplicateConfig, opts ...reconcile.Option) ([]dedupe.Cluster, error) {
	engine, err := reconcile.New(opts...)
	if err != nil {
		return nil, err
	}
	return engine.FindDuplicates(ctx, records, cfg)
}
