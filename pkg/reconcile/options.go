package reconcile

import (
	"runtime"

	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
)

// ScorerFactory builds the pair scorer for a run from the configured
// weights and kinds.
type ScorerFactory func(weights map[string]float64, kinds map[string]scoring.FieldKind) scoring.PairScorer

// options configures an Engine.
type options struct {
	workers       int
	scorerFactory ScorerFactory
}

func defaultOptions() *options {
	return &options{
		workers: runtime.NumCPU(),
		scorerFactory: func(weights map[string]float64, kinds map[string]scoring.FieldKind) scoring.PairScorer {
			return scoring.New(weights, kinds)
		},
	}
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns engine options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithWorkers sets the number of parallel scoring workers.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: "must be at least 1",
			}
		}
		o.workers = n
		return nil
	}
}

// WithScorerFactory overrides how the pair scorer is constructed.
// Primarily useful for tests that observe or stub scoring.
func WithScorerFactory(factory ScorerFactory) Option {
	return func(o *options) error {
		if factory == nil {
			return &errors.ValidationError{
				Field:   "scorerFactory",
				Message: "cannot be nil",
			}
		}
		o.scorerFactory = factory
		return nil
	}
}
