// =============================================================================
// flat2tab - Owner Lookup
// =============================================================================
//
// This module enriches decoded records with owner name and mailing address
// pulled from the billing database.
//
// LOOKUP VALUE FORMAT:
//   Each owner row is flattened into one fixed-width string. Every sub-field
//   is left-justified, space padded, and truncated to its width:
//
//   | Sub-field        | Width |
//   |------------------|-------|
//   | Owner name       | 30    |
//   | Address line 1   | 30    |
//   | Address line 2   | 30    |
//   | City/State/Zip   | 48    |
//   | Country code     | 4     |
//
//   Total width: 142 characters.
//
// MISSING KEYS:
//   A record whose join key is not in the table is left unchanged. The run
//   continues and the output column stays blank for that row.
//
// =============================================================================

package lookup

import (
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Widths are the sub-field widths of a formatted owner string, in order.
var Widths = [5]int{30, 30, 30, 48, 4}

// Owner is one row of the owner/address query.
type Owner struct {
	Account      string
	Name         string
	Address1     string
	Address2     string
	CityStateZip string
	Country      string
}

// Format flattens an owner into the fixed-width lookup string.
func Format(o Owner) string {
	parts := [5]string{o.Name, o.Address1, o.Address2, o.CityStateZip, o.Country}

	var b strings.Builder
	b.Grow(142)
	for i, p := range parts {
		b.WriteString(fit(p, Widths[i]))
	}
	return b.String()
}

// fit left-justifies s in a field of width characters, truncating if needed.
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// =============================================================================
// TABLE
// =============================================================================

// Table maps a join key (account number) to a formatted owner string.
type Table map[string]string

// Build creates a lookup table. Keys are trimmed; when an account appears
// more than once the last row wins.
func Build(owners []Owner) Table {
	t := make(Table, len(owners))
	for _, o := range owners {
		t[strings.TrimSpace(o.Account)] = Format(o)
	}
	return t
}

// Get returns the formatted string for key, trimming the key first so padded
// fixed-width values match.
func (t Table) Get(key string) (string, bool) {
	v, ok := t[strings.TrimSpace(key)]
	return v, ok
}

// Merge looks up rec[joinField] and, if found, sets outputField to the
// formatted owner string (appending it or overwriting an existing field).
//
// RETURNS:
//   - The same record, for chaining.
//   - Whether a match was found. A record without joinField, or whose key is
//     not in the table, is returned unchanged with false.
func Merge(rec *types.Record, t Table, joinField, outputField string) (*types.Record, bool) {
	key, ok := rec.Get(joinField)
	if !ok {
		return rec, false
	}
	value, ok := t.Get(key)
	if !ok {
		return rec, false
	}
	rec.Set(outputField, value)
	return rec, true
}
