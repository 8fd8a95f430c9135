// Package record defines the data model shared by the reconciliation
// pipeline: raw records as supplied by the caller, their normalized forms
// owned by a single run, and the diagnostics that enumerate every record
// the pipeline excluded or could not block.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Side identifies which record system a record originates from.
// Side A is conventionally the vendor inventory platform and side B the CRM,
// but the engine treats them symmetrically.
type Side string

const (
	// SideA is the first record system in a reconciliation run.
	SideA Side = "A"
	// SideB is the second record system in a reconciliation run.
	SideB Side = "B"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Record is a raw row from one of the two record systems. It carries an
// opaque side marker, the stable primary key from its origin system, and
// the raw field values. Records are immutable once ingested.
type Record struct {
	Side   Side
	Key    string
	Fields map[string]any
}

// Field returns the raw value for a field name.
func (r Record) Field(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// StringField returns the raw value for a field rendered as a string.
// Nil values and absent fields render as the empty string.
func (r Record) StringField(name string) string {
	v, ok := r.Fields[name]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify renders a raw field value as a comparable string.
// Nil renders as the empty string; numbers render without an exponent;
// times render as RFC 3339.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Number extracts a numeric value from a raw field value.
// Numeric strings are parsed; currency symbols and thousands separators
// are tolerated.
func Number(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimLeft(s, "$€£")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Normalized is the canonical form of a Record produced by the normalizer.
// Identity is preserved; field values are replaced by canonical strings and
// each configured blocking field carries one or more blocking tokens.
// A Normalized record is owned by one pipeline run and never mutated after
// creation.
type Normalized struct {
	Side Side
	Key  string

	// Canonical maps field name to canonical value. Every field present on
	// the raw record appears here; empty canonicalizes to empty.
	Canonical map[string]string

	// Tokens maps blocking field name to the tokens generated for it.
	Tokens map[string][]string

	// Index is the record's position within its side's batch. The duplicate
	// clusterer unions over these indices rather than object references.
	Index int
}

// AllTokens returns the deduplicated union of all blocking tokens for the
// record, sorted for deterministic iteration.
func (n *Normalized) AllTokens() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, toks := range n.Tokens {
		for _, t := range toks {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// EmptyFieldCount returns the number of canonical fields with empty values.
// Used for canonical-record selection within duplicate clusters.
func (n *Normalized) EmptyFieldCount() int {
	count := 0
	for _, v := range n.Canonical {
		if v == "" {
			count++
		}
	}
	return count
}

// timestampFields are the field names checked, in order, when looking for a
// record's last-update timestamp.
var timestampFields = []string{"updated_at", "last_modified", "modified_at", "last_modified_date"}

// UpdatedAt returns the record's update timestamp when one of the
// recognized timestamp fields parses as a date.
func (n *Normalized) UpdatedAt() (time.Time, bool) {
	for _, name := range timestampFields {
		v, ok := n.Canonical[name]
		if !ok || v == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
