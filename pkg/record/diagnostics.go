package record

import "sort"

// WarningKind classifies a data-quality warning recorded during a run.
type WarningKind string

const (
	// WarnMissingKey marks a record excluded because it has no source key.
	WarnMissingKey WarningKind = "missing_key"
	// WarnUnblockable marks a record that generated no blocking tokens and
	// was therefore excluded from candidate generation.
	WarnUnblockable WarningKind = "unblockable"
	// WarnUnknownField marks a configured field name not present on any
	// record, or a field passed through without a canonicalizer rule.
	WarnUnknownField WarningKind = "unknown_field"
	// WarnEmptyBatch marks a side whose batch was empty while the other
	// side was not.
	WarnEmptyBatch WarningKind = "empty_batch"
)

// Warning records a single data-quality issue. No warning is silently
// swallowed: each excluded or unblockable record appears here so the caller
// can report pipeline data-quality issues alongside the match results.
type Warning struct {
	Kind    WarningKind
	Side    Side
	Key     string
	Field   string
	Message string
}

// Diagnostics accumulates warnings and exclusion lists for one run.
type Diagnostics struct {
	Warnings []Warning

	// Excluded lists source keys dropped per side (missing key).
	Excluded map[Side][]string

	// Unblockable lists source keys per side that produced no blocking
	// tokens and were reported rather than silently dropped.
	Unblockable map[Side][]string
}

// NewDiagnostics returns an empty diagnostics accumulator.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		Excluded:    make(map[Side][]string),
		Unblockable: make(map[Side][]string),
	}
}

// Warn appends a warning.
func (d *Diagnostics) Warn(kind WarningKind, side Side, key, field, message string) {
	d.Warnings = append(d.Warnings, Warning{
		Kind:    kind,
		Side:    side,
		Key:     key,
		Field:   field,
		Message: message,
	})
}

// Exclude records a record excluded from the run entirely.
func (d *Diagnostics) Exclude(side Side, key, message string) {
	d.Excluded[side] = append(d.Excluded[side], key)
	d.Warn(WarnMissingKey, side, key, "", message)
}

// MarkUnblockable records a record that generated no blocking tokens.
func (d *Diagnostics) MarkUnblockable(side Side, key string) {
	d.Unblockable[side] = append(d.Unblockable[side], key)
	d.Warn(WarnUnblockable, side, key, "", "record generated no blocking tokens")
}

// Sort orders all diagnostic lists deterministically.
func (d *Diagnostics) Sort() {
	for side := range d.Excluded {
		sort.Strings(d.Excluded[side])
	}
	for side := range d.Unblockable {
		sort.Strings(d.Unblockable[side])
	}
	sort.SliceStable(d.Warnings, func(i, j int) bool {
		a, b := d.Warnings[i], d.Warnings[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Field < b.Field
	})
}

// Merge folds another diagnostics set into this one.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Warnings = append(d.Warnings, other.Warnings...)
	for side, keys := range other.Excluded {
		d.Excluded[side] = append(d.Excluded[side], keys...)
	}
	for side, keys := range other.Unblockable {
		d.Unblockable[side] = append(d.Unblockable[side], keys...)
	}
}
