// Package textutil provides the shared text cleanup helpers used by the
// normalizer and the pairwise scorer.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are trailing company designators stripped by the
// strip_legal_suffix_lowercase canonicalizer. Order does not matter; the
// match is against the final tokens of the name.
var legalSuffixes = map[string]struct{}{
	"inc":          {},
	"incorporated": {},
	"llc":          {},
	"llp":          {},
	"lp":           {},
	"ltd":          {},
	"limited":      {},
	"corp":         {},
	"corporation":  {},
	"co":           {},
	"company":      {},
	"plc":          {},
	"gmbh":         {},
	"sa":           {},
	"srl":          {},
	"bv":           {},
}

var diacriticRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveDiacritics strips combining marks from a string, so "Café" becomes
// "Cafe". Characters without a decomposed form pass through unchanged.
func RemoveDiacritics(s string) string {
	out, _, err := transform.String(diacriticRemover, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseWhitespace trims the string and replaces runs of whitespace with
// a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripPunctuation removes punctuation and symbol runes, keeping letters,
// digits, and spaces.
func StripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DigitsOnly removes every rune that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripLegalSuffix removes trailing legal-entity designators from a company
// name. Punctuation attached to the suffix ("Inc.") is ignored when
// matching. Stripping repeats so "Acme Holdings Co Ltd" loses both
// designators.
func StripLegalSuffix(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 1 {
		last := strings.ToLower(strings.Trim(tokens[len(tokens)-1], ".,;"))
		if _, ok := legalSuffixes[last]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// FirstAlphaToken returns the first whitespace-separated token consisting
// of letters, or the empty string when none exists.
func FirstAlphaToken(s string) string {
	for _, tok := range strings.Fields(s) {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, tok)
		if cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// MostlyNumeric reports whether at least half of the string's non-space
// runes are digits. Used to decide whether a blocking field should produce
// a digit-prefix token or a phonetic token.
func MostlyNumeric(s string) bool {
	digits, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return total > 0 && digits*2 >= total
}
