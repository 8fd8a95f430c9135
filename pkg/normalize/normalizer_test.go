package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

func TestCanonicalizers(t *testing.T) {
	tests := []struct {
		name  string
		canon Canonicalizer
		input string
		want  string
	}{
		{"identity passes through", CanonIdentity, "  Acme  Inc. ", "  Acme  Inc. "},
		{"lowercase collapses", CanonLowercase, "  Acme  CORP ", "acme corp"},
		{"strip legal suffix", CanonStripLegalSuffixLowercase, "Acme Inc.", "acme"},
		{"strip legal suffix keeps core", CanonStripLegalSuffixLowercase, "Widget Works, LLC", "widget works"},
		{"digits only", CanonDigitsOnly, "(555) 123-4567", "5551234567"},
		{"zip5 truncates", CanonZip5, "90210-1234", "90210"},
		{"zip5 short", CanonZip5, "902", "902"},
		{"ascii fold", CanonASCIIFold, "Café Müller", "cafe muller"},
		{"upper code", CanonUpperCode, "ab-12 x", "AB12X"},
		{"empty is total", CanonLowercase, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.canon.Apply(tt.input))
		})
	}
}

func TestParseUnknownCanonicalizer(t *testing.T) {
	_, err := Parse("does_not_exist")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err), "unknown canonicalizer should be a config error")
	assert.Contains(t, err.Error(), "does_not_exist")

	c, err := Parse("zip5")
	require.NoError(t, err)
	assert.Equal(t, CanonZip5, c)
}

func TestNewRejectsUnknownRule(t *testing.T) {
	_, err := New(map[string]string{"name": "nope"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestNormalizeRecord(t *testing.T) {
	n, err := New(map[string]string{
		"name": "strip_legal_suffix_lowercase",
		"zip":  "zip5",
	}, []string{"name", "zip"})
	require.NoError(t, err)

	norm := n.Record(record.Record{
		Side: record.SideA,
		Key:  "sku-1",
		Fields: map[string]any{
			"name": "Acme Inc.",
			"zip":  "90210-1234",
			"city": "Springfield",
		},
	}, 0)

	assert.Equal(t, "acme", norm.Canonical["name"])
	assert.Equal(t, "90210", norm.Canonical["zip"])
	assert.Equal(t, "Springfield", norm.Canonical["city"], "unruled fields pass through")

	require.NotEmpty(t, norm.Tokens["name"], "text field should produce phonetic tokens")
	for _, tok := range norm.Tokens["name"] {
		assert.True(t, strings.HasPrefix(tok, "name:"), "tokens are namespaced by field: %s", tok)
	}
	assert.Equal(t, []string{"zip:num:902"}, norm.Tokens["zip"], "numeric field produces digit-prefix token")
}

func TestNormalizePhoneticTokens(t *testing.T) {
	n, err := New(nil, []string{"name"})
	require.NoError(t, err)

	// Spelling variants of the same name should share a phonetic token.
	a := n.Record(record.Record{Key: "1", Fields: map[string]any{"name": "Smith"}}, 0)
	b := n.Record(record.Record{Key: "2", Fields: map[string]any{"name": "Smyth"}}, 1)

	shared := false
	for _, ta := range a.AllTokens() {
		for _, tb := range b.AllTokens() {
			if ta == tb {
				shared = true
			}
		}
	}
	assert.True(t, shared, "Smith and Smyth should share at least one blocking token")
}

func TestBatchExcludesKeylessRecords(t *testing.T) {
	n, err := New(nil, []string{"name"})
	require.NoError(t, err)

	diag := record.NewDiagnostics()
	out := n.Batch(record.SideA, []record.Record{
		{Key: "a1", Fields: map[string]any{"name": "Acme"}},
		{Key: "", Fields: map[string]any{"name": "Ghost"}},
		{Key: "a2", Fields: map[string]any{"name": "Widget"}},
	}, diag)

	require.Len(t, out, 2, "keyless record should be excluded, not fatal")
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, 1, out[1].Index)
	assert.Len(t, diag.Excluded[record.SideA], 1)
	assert.Equal(t, record.SideA, out[0].Side)
}

func TestBatchWarnsConfiguredFieldAbsent(t *testing.T) {
	n, err := New(map[string]string{"ein": "digits_only"}, nil)
	require.NoError(t, err)

	diag := record.NewDiagnostics()
	n.Batch(record.SideB, []record.Record{
		{Key: "b1", Fields: map[string]any{"name": "Acme"}},
	}, diag)

	found := false
	for _, w := range diag.Warnings {
		if w.Kind == record.WarnUnknownField && w.Field == "ein" {
			found = true
		}
	}
	assert.True(t, found, "configured field missing from the whole batch should warn")
}

func TestBatchWarnsUnruledFields(t *testing.T) {
	n, err := New(map[string]string{"name": "lowercase"}, nil)
	require.NoError(t, err)

	diag := record.NewDiagnostics()
	n.Batch(record.SideA, []record.Record{
		{Key: "a1", Fields: map[string]any{"name": "Acme", "mystery_col": "x"}},
		{Key: "a2", Fields: map[string]any{"name": "Widget", "mystery_col": "y"}},
	}, diag)

	warned := 0
	for _, w := range diag.Warnings {
		if w.Kind == record.WarnUnknownField && w.Field == "mystery_col" {
			warned++
		}
	}
	assert.Equal(t, 1, warned, "a field with no rule passes through with exactly one warning per batch")

	for _, w := range diag.Warnings {
		assert.NotEqual(t, "name", w.Field, "ruled fields present in the batch warrant no warning")
	}
}

func TestBlockingTokensShortDigits(t *testing.T) {
	n, err := New(nil, []string{"zip"})
	require.NoError(t, err)

	norm := n.Record(record.Record{Key: "1", Fields: map[string]any{"zip": "12"}}, 0)
	assert.Empty(t, norm.Tokens, "fewer than three digits generates no token")
}
