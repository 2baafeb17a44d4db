// =============================================================================
// flat2tab - Fixed-Width Decoder
// =============================================================================
//
// This module slices a fixed-width line into a record using a layout.
//
// DECODING:
//   For each layout entry, in order, the field value is the line's characters
//   from the running start offset up to the entry's end offset. The running
//   start then moves to the entry's end offset, whatever the line length was.
//
//   Layout: acct=10, name=40, amt=50
//   Line:   "D0000000012      John Doe                         123.45"
//            |---------||-----------------------------||----------|
//            acct        name                          amt
//
// SHORT LINES:
//   Decoding never fails. A line shorter than an entry's end offset yields a
//   truncated value for that field and empty values for every later field.
//
// Offsets count characters (runes), not bytes, so multi-byte text in UTF-8
// input lines up with the layout the same way single-byte text does.
//
// =============================================================================

package fixedwidth

import (
	"unicode/utf8"

	"github.com/ginjaninja78/flat2tab/internal/layout"
	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Decode slices line into a record with exactly len(l) fields, in layout
// order. Values are not trimmed.
func Decode(line string, l layout.Layout) *types.Record {
	rec := types.NewRecord(len(l))
	if len(l) == 0 {
		return rec
	}

	chars := runes(line)

	start := 0
	for _, e := range l {
		rec.Set(e.Name, slice(chars, start, e.End))
		start = e.End
	}

	return rec
}

// slice returns chars[start:end] clamped to the line, or "" when the range is
// empty or starts past the end of the line.
func slice(chars []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(chars) {
		end = len(chars)
	}
	if start >= end {
		return ""
	}
	return string(chars[start:end])
}

// runes converts line to a rune slice, skipping the conversion cost for the
// common all-ASCII case.
func runes(line string) []rune {
	if utf8.RuneCountInString(line) == len(line) {
		out := make([]rune, len(line))
		for i := 0; i < len(line); i++ {
			out[i] = rune(line[i])
		}
		return out
	}
	return []rune(line)
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder binds a layout so callers can decode lines without passing it
// around.
type Decoder struct {
	layout layout.Layout
}

// New creates a decoder for l.
func New(l layout.Layout) *Decoder {
	return &Decoder{layout: l}
}

// Decode slices one line.
func (d *Decoder) Decode(line string) *types.Record {
	return Decode(line, d.layout)
}

