package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	input := `sku,name,zip
sku-1,Acme Inc.,90210
sku-2,Widget Works,10001
`
	recs, err := ReadCSV(strings.NewReader(input), "sku")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "sku-1", recs[0].Key)
	assert.Equal(t, "Acme Inc.", recs[0].Fields["name"])
	assert.Equal(t, "sku-1", recs[0].Fields["sku"], "the key column is carried as a field too")
	assert.Equal(t, "10001", recs[1].Fields["zip"])
}

func TestReadCSVMissingKeyColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"), "sku")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "sku,name,zip\nsku-1,Acme\n"
	recs, err := ReadCSV(strings.NewReader(input), "sku")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, hasZip := recs[0].Fields["zip"]
	assert.False(t, hasZip, "short rows simply omit trailing fields")
}

func TestReadCSVEmpty(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(""), "sku")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
key_column: sku
blocking_fields: [name, zip]
normalizers:
  name: strip_legal_suffix_lowercase
  zip: zip5
weights:
  name: 1.0
  city: 0.5
kinds:
  zip: identifier
match_threshold: 0.85
allow_one_to_many: true
segment_field: region
`), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "sku", rules.KeyColumn)

	cfg := rules.Config()
	assert.Equal(t, []string{"name", "zip"}, cfg.BlockingFields)
	assert.Equal(t, 0.85, cfg.MatchThreshold)
	assert.True(t, cfg.AllowOneToMany)
	assert.Equal(t, "region", cfg.SegmentField)
	assert.Equal(t, "identifier", string(cfg.FieldKinds["zip"]))

	dup := rules.DuplicateConfig()
	assert.Equal(t, []string{"name", "zip"}, dup.BlockingFields)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules("/does/not/exist.yaml")
	assert.Error(t, err)
}
