package ingest

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cosmo-lgtm/ops-command-center/pkg/reconcile"
	"github.com/cosmo-lgtm/ops-command-center/pkg/scoring"
)

// RuleFile is the YAML shape of a reconciliation rule document.
//
//	key_column: sku
//	blocking_fields: [name, zip]
//	normalizers:
//	  name: strip_legal_suffix_lowercase
//	  zip: zip5
//	weights:
//	  name: 1.0
//	  city: 0.5
//	match_threshold: 0.85
type RuleFile struct {
	KeyColumn string `yaml:"key_column"`

	BlockingFields []string           `yaml:"blocking_fields"`
	Normalizers    map[string]string  `yaml:"normalizers"`
	Weights        map[string]float64 `yaml:"weights"`
	Kinds          map[string]string  `yaml:"kinds"`

	MatchThreshold     float64 `yaml:"match_threshold"`
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
	MaxBlockSize       int     `yaml:"max_block_size"`
	AllowOneToMany     bool    `yaml:"allow_one_to_many"`
	SegmentField       string  `yaml:"segment_field"`
}

// LoadRules reads and parses a rule file.
func LoadRules(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return &rf, nil
}

// Config converts the rule file into an engine configuration. Zero-valued
// thresholds fall back to the engine defaults.
func (rf *RuleFile) Config() reconcile.Config {
	return reconcile.Config{
		FieldWeights:       rf.Weights,
		FieldKinds:         rf.fieldKinds(),
		MatchThreshold:     rf.MatchThreshold,
		DuplicateThreshold: rf.DuplicateThreshold,
		BlockingFields:     rf.BlockingFields,
		MaxBlockSize:       rf.MaxBlockSize,
		AllowOneToMany:     rf.AllowOneToMany,
		Normalizers:        rf.Normalizers,
		SegmentField:       rf.SegmentField,
	}
}

// DuplicateConfig converts the rule file into a duplicate-detection
// configuration.
func (rf *RuleFile) DuplicateConfig() reconcile.DuplicateConfig {
	return reconcile.DuplicateConfig{
		FieldWeights:       rf.Weights,
		FieldKinds:         rf.fieldKinds(),
		DuplicateThreshold: rf.DuplicateThreshold,
		BlockingFields:     rf.BlockingFields,
		MaxBlockSize:       rf.MaxBlockSize,
		Normalizers:        rf.Normalizers,
	}
}

func (rf *RuleFile) fieldKinds() map[string]scoring.FieldKind {
	if len(rf.Kinds) == 0 {
		return nil
	}
	kinds := make(map[string]scoring.FieldKind, len(rf.Kinds))
	for field, kind := range rf.Kinds {
		kinds[field] = scoring.FieldKind(kind)
	}
	return kinds
}
