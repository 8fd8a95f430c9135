// Package normalize canonicalizes raw record fields into comparable forms
// and generates the blocking tokens the blocker partitions on.
//
// Canonicalizers form a closed, named enumeration dispatched by string key
// from configuration. An unknown canonicalizer name is a configuration
// error at construction time, never a crash mid-run.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/cosmo-lgtm/ops-command-center/internal/textutil"
	"github.com/cosmo-lgtm/ops-command-center/pkg/errors"
)

// Canonicalizer names a canonicalization rule applicable to a field.
type Canonicalizer string

const (
	// CanonIdentity passes the value through unchanged.
	CanonIdentity Canonicalizer = "identity"
	// CanonLowercase lowercases and collapses whitespace.
	CanonLowercase Canonicalizer = "lowercase"
	// CanonStripLegalSuffixLowercase removes trailing legal-entity
	// designators (Inc, LLC, Ltd, ...) then lowercases. Intended for
	// company-name fields.
	CanonStripLegalSuffixLowercase Canonicalizer = "strip_legal_suffix_lowercase"
	// CanonDigitsOnly keeps only digits. Intended for phone numbers.
	CanonDigitsOnly Canonicalizer = "digits_only"
	// CanonZip5 keeps the first five digits. Intended for postal codes.
	CanonZip5 Canonicalizer = "zip5"
	// CanonASCIIFold strips diacritics and transliterates to ASCII,
	// then lowercases.
	CanonASCIIFold Canonicalizer = "ascii_fold"
	// CanonCollapseWhitespace trims and collapses internal whitespace
	// without changing case.
	CanonCollapseWhitespace Canonicalizer = "collapse_whitespace"
	// CanonUpperCode uppercases and removes whitespace and punctuation.
	// Intended for short identifier codes.
	CanonUpperCode Canonicalizer = "upper_code"
)

// canonicalizers is the closed set of recognized rules.
var canonicalizers = map[Canonicalizer]func(string) string{
	CanonIdentity: func(s string) string { return s },
	CanonLowercase: func(s string) string {
		return strings.ToLower(textutil.CollapseWhitespace(s))
	},
	CanonStripLegalSuffixLowercase: func(s string) string {
		s = textutil.CollapseWhitespace(s)
		s = textutil.StripLegalSuffix(s)
		s = textutil.StripPunctuation(s)
		return strings.ToLower(textutil.CollapseWhitespace(s))
	},
	CanonDigitsOnly: func(s string) string {
		return textutil.DigitsOnly(s)
	},
	CanonZip5: func(s string) string {
		digits := textutil.DigitsOnly(s)
		if len(digits) > 5 {
			return digits[:5]
		}
		return digits
	},
	CanonASCIIFold: func(s string) string {
		s = textutil.RemoveDiacritics(s)
		s = unidecode.Unidecode(s)
		return strings.ToLower(textutil.CollapseWhitespace(s))
	},
	CanonCollapseWhitespace: func(s string) string {
		return textutil.CollapseWhitespace(s)
	},
	CanonUpperCode: func(s string) string {
		s = textutil.StripPunctuation(s)
		s = strings.ToUpper(s)
		return strings.Join(strings.Fields(s), "")
	},
}

// Parse validates a canonicalizer name from configuration.
// Unknown names return a ConfigError listing the recognized set.
func Parse(name string) (Canonicalizer, error) {
	c := Canonicalizer(name)
	if _, ok := canonicalizers[c]; !ok {
		return "", errors.NewConfigError("normalizer",
			fmt.Sprintf("unknown canonicalizer %q (recognized: %s)", name, strings.Join(Names(), ", ")), nil)
	}
	return c, nil
}

// Apply runs the canonicalizer over a raw value. Canonicalization is total:
// every input, including the empty string, maps to a defined canonical
// value.
func (c Canonicalizer) Apply(value string) string {
	fn, ok := canonicalizers[c]
	if !ok {
		return value
	}
	return fn(value)
}

// Names returns the sorted list of recognized canonicalizer names.
func Names() []string {
	names := make([]string, 0, len(canonicalizers))
	for c := range canonicalizers {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}
