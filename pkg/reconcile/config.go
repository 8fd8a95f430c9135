package reconcile

import (
	"fmt"

	"github.com/cosmo-lgtm/ops-command-center/pkg/blocking"
	"github.com/cosmo-lgtm/ops-command-center/pkg/dedupe"
	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
	"github.com/cosmo-lgtm/ops-command-center/pkg/normalize"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
)

// DefaultMatchThreshold is the minimum composite score for a candidate
// pair to qualify for match resolution.
const DefaultMatchThreshold = 0.80

// Config controls one reconciliation run. The zero value is usable: every
// field falls back to its stated default.
type Config struct {
	// FieldWeights maps field name to scoring weight. When empty,
	// identifier-like fields weigh 1.0 and all others 0.5. Weights need
	// not sum to 1; composites are normalized by the weight present on
	// both sides of each pair.
	FieldWeights map[string]float64

	// FieldKinds overrides the similarity metric per field. Fields not
	// listed are classified by name.
	FieldKinds map[string]scoring.FieldKind

	// MatchThreshold is the minimum qualifying score for cross-side
	// matching. Default 0.80.
	MatchThreshold float64

	// DuplicateThreshold is the minimum score for same-side duplicate
	// clustering. Default 0.92, stricter than the match threshold.
	DuplicateThreshold float64

	// BlockingFields lists the fields blocking tokens are generated for.
	BlockingFields []string

	// MaxBlockSize caps the average blocking bucket size. Default 5000.
	MaxBlockSize int

	// AllowOneToMany relaxes the one-to-one match constraint so every
	// qualifying pair commits as matched.
	AllowOneToMany bool

	// Normalizers maps field name to canonicalizer name. Unknown names
	// are a configuration error.
	Normalizers map[string]string

	// SegmentField selects the canonical field used for per-segment
	// alignment rows. Empty disables segmentation.
	SegmentField string
}

// withDefaults returns a copy with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.MatchThreshold == 0 {
		c.MatchThreshold = DefaultMatchThreshold
	}
	if c.DuplicateThreshold == 0 {
		c.DuplicateThreshold = dedupe.DefaultThreshold
	}
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = blocking.DefaultMaxBlockSize
	}
	return c
}

// Validate checks the configuration before any record is touched.
// Violations are ConfigErrors and abort the run.
func (c Config) Validate() error {
	if err := validateThreshold("matchThreshold", c.MatchThreshold); err != nil {
		return err
	}
	if err := validateThreshold("duplicateThreshold", c.DuplicateThreshold); err != nil {
		return err
	}
	if c.MaxBlockSize < 0 {
		return errors.NewConfigError("reconcile",
			fmt.Sprintf("maxBlockSize must not be negative, got %d", c.MaxBlockSize), nil)
	}
	for field, weight := range c.FieldWeights {
		if weight < 0 {
			return errors.NewConfigError("reconcile",
				fmt.Sprintf("field weight for %q must not be negative, got %g", field, weight), nil)
		}
	}
	for _, name := range c.Normalizers {
		if _, err := normalize.Parse(name); err != nil {
			return err
		}
	}
	for field, kind := range c.FieldKinds {
		switch kind {
		case scoring.KindAuto, scoring.KindIdentifier, scoring.KindText, scoring.KindNumeric:
		default:
			return errors.NewConfigError("reconcile",
				fmt.Sprintf("unknown field kind %q for field %q", kind, field), nil)
		}
	}
	return nil
}

// DuplicateConfig controls a standalone duplicate-detection run. It
// mirrors Config without the cross-side matching knobs.
type DuplicateConfig struct {
	FieldWeights       map[string]float64
	FieldKinds         map[string]scoring.FieldKind
	DuplicateThreshold float64
	BlockingFields     []string
	MaxBlockSize       int
	Normalizers        map[string]string
}

func (c DuplicateConfig) withDefaults() DuplicateConfig {
	if c.DuplicateThreshold == 0 {
		c.DuplicateThreshold = dedupe.DefaultThreshold
	}
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = blocking.DefaultMaxBlockSize
	}
	return c
}

// Validate checks the duplicate configuration.
func (c DuplicateConfig) Validate() error {
	return Config{
		FieldWeights:       c.FieldWeights,
		FieldKinds:         c.FieldKinds,
		MatchThreshold:     DefaultMatchThreshold,
		DuplicateThreshold: c.DuplicateThreshold,
		MaxBlockSize:       c.MaxBlockSize,
		Normalizers:        c.Normalizers,
	}.Validate()
}

func validateThreshold(name string, v float64) error {
	if v <= 0 || v > 1 {
		return errors.NewConfigError("reconcile",
			fmt.Sprintf("%s must be in (0, 1], got %g", name, v), nil)
	}
	return nil
}
