package normalize

import (
	"fmt"
	"sort"

	"github.com/antzucaro/matchr"
	"github.com/mozillazg/go-unidecode"

	"github.com/cosmo-lgtm/ops-command-center/internal/textutil"
	"github.com/cosmo-lgtm/ops-command-center/pkg/record"
)

// Normalizer canonicalizes raw records and generates blocking tokens.
// It is deterministic and total: any raw value, including nil, maps to a
// defined canonical value. A Normalizer is read-only after construction
// and safe for concurrent use.
type Normalizer struct {
	rules          map[string]Canonicalizer
	blockingFields []string
}

// New builds a Normalizer from configuration. rules maps field name to
// canonicalizer name; blockingFields lists the fields tokens are generated
// for. An unknown canonicalizer name is a ConfigError.
func New(rules map[string]string, blockingFields []string) (*Normalizer, error) {
	parsed := make(map[string]Canonicalizer, len(rules))
	for field, name := range rules {
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		parsed[field] = c
	}

	fields := make([]string, len(blockingFields))
	copy(fields, blockingFields)
	sort.Strings(fields)

	return &Normalizer{
		rules:          parsed,
		blockingFields: fields,
	}, nil
}

// BlockingFields returns the configured blocking fields.
func (n *Normalizer) BlockingFields() []string {
	return n.blockingFields
}

// Record normalizes a single record. index is the record's position in its
// side's batch. Fields without a configured rule pass through unchanged;
// the caller records the pass-through warning once per field via Batch.
func (n *Normalizer) Record(rec record.Record, index int) *record.Normalized {
	canonical := make(map[string]string, len(rec.Fields))
	for field, raw := range rec.Fields {
		value := record.Stringify(raw)
		if rule, ok := n.rules[field]; ok {
			value = rule.Apply(value)
		}
		canonical[field] = value
	}

	tokens := make(map[string][]string, len(n.blockingFields))
	for _, field := range n.blockingFields {
		if toks := blockingTokens(field, canonical[field]); len(toks) > 0 {
			tokens[field] = toks
		}
	}

	return &record.Normalized{
		Side:      rec.Side,
		Key:       rec.Key,
		Canonical: canonical,
		Tokens:    tokens,
		Index:     index,
	}
}

// Batch normalizes a full side. Records without a source key are excluded
// with a recorded warning rather than aborting the run; fields without a
// canonicalizer rule and configured fields absent from the whole batch are
// each warned once.
func (n *Normalizer) Batch(side record.Side, recs []record.Record, diag *record.Diagnostics) []record.Normalized {
	out := make([]record.Normalized, 0, len(recs))
	seenFields := make(map[string]bool)

	for _, rec := range recs {
		if rec.Key == "" {
			diag.Exclude(side, "", "record has no source key")
			continue
		}
		rec.Side = side
		norm := n.Record(rec, len(out))
		for field := range rec.Fields {
			seenFields[field] = true
		}
		out = append(out, *norm)
	}

	if len(recs) > 0 {
		// Fields with no canonicalizer rule pass through unchanged; warn
		// once per field so the pass-through is never silent.
		for _, field := range sortedFields(seenFields) {
			if _, ok := n.rules[field]; !ok {
				diag.Warn(record.WarnUnknownField, side, "", field,
					fmt.Sprintf("field %q has no canonicalizer rule; values pass through unchanged", field))
			}
		}

		// Warn for configured fields absent from the entire batch. Applying
		// a rule to a field no record carries usually signals a renamed
		// column.
		for _, field := range sortedFields(ruleFields(n.rules)) {
			if !seenFields[field] {
				diag.Warn(record.WarnUnknownField, side, "", field,
					fmt.Sprintf("configured field %q not present on any side-%s record", field, side))
			}
		}
	}

	return out
}

func ruleFields(rules map[string]Canonicalizer) map[string]bool {
	fields := make(map[string]bool, len(rules))
	for field := range rules {
		fields[field] = true
	}
	return fields
}

func sortedFields(set map[string]bool) []string {
	fields := make([]string, 0, len(set))
	for field := range set {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// blockingTokens generates the tokens for one blocking field value.
// Numeric-looking values produce a digit-prefix token (first three digits,
// e.g. a truncated postal code); textual values produce a Soundex token
// and a Double Metaphone token of the first alphabetic word to increase
// recall across spelling variants. Tokens are namespaced by field so a
// phonetic code never collides with a postal prefix.
func blockingTokens(field, value string) []string {
	if value == "" {
		return nil
	}

	if textutil.MostlyNumeric(value) {
		digits := textutil.DigitsOnly(value)
		if len(digits) < 3 {
			return nil
		}
		return []string{field + ":num:" + digits[:3]}
	}

	// Soundex only handles ASCII letters, so transliterate first.
	word := textutil.FirstAlphaToken(unidecode.Unidecode(value))
	if word == "" {
		return nil
	}

	var toks []string
	if snd := matchr.Soundex(word); snd != "" {
		toks = append(toks, field+":snd:"+snd)
	}
	if primary, _ := matchr.DoubleMetaphone(word); primary != "" {
		toks = append(toks, field+":mp:"+primary)
	}
	return toks
}
