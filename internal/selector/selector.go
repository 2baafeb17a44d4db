// =============================================================================
// flat2tab - Record Selector
// =============================================================================
//
// This module decides which lines of a flat file are data records.
//
// CLASSIFICATION:
//   A line is a data line when its first character equals the marker
//   (default "D"). Every other line (headers "H", trailers "T", blank lines)
//   is skipped: not counted, not decoded, not forwarded.
//
// LEADING RECORDS:
//   Some extracts repeat a header record with the data marker. The first
//   Skip data lines are counted but not forwarded.
//
//   Input           Marker "D", Skip 1
//   H20240101   ->  skipped (not data)
//   D...first   ->  skipped (leading data record)
//   D...second  ->  forwarded
//   T000002     ->  skipped (not data)
//
// The file is read once, top to bottom; only the current line is held.
//
// =============================================================================

package selector

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// DefaultMarker is the first character of a data record.
const DefaultMarker = "D"

// maxLineSize bounds a single input line. Billing extracts are well under
// this, but the default bufio limit of 64 KiB is too tight for some.
const maxLineSize = 1 << 20

// Line is one selected data line.
type Line struct {
	// Number is the 1-based physical line number in the input.
	Number int

	// Text is the line without its terminator.
	Text string
}

// Stats counts what the selector saw.
type Stats struct {
	// Lines is the number of physical lines read.
	Lines int

	// DataLines is the number of lines carrying the marker.
	DataLines int

	// Skipped is the number of leading data lines excluded by Skip.
	Skipped int

	// Selected is the number of lines forwarded to the visitor.
	Selected int
}

// Selector classifies lines of a flat file.
type Selector struct {
	// Marker is the first character of a data line.
	Marker string

	// Skip is the number of leading data lines to exclude.
	Skip int
}

// New creates a selector. An empty marker means DefaultMarker; a negative
// skip means zero.
func New(marker string, skip int) *Selector {
	if marker == "" {
		marker = DefaultMarker
	}
	if skip < 0 {
		skip = 0
	}
	return &Selector{Marker: marker, Skip: skip}
}

// IsData reports whether line starts with the marker character.
func (s *Selector) IsData(line string) bool {
	if line == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line)
	m, _ := utf8.DecodeRuneInString(s.Marker)
	return r == m
}

// Scan reads r line by line and calls visit for each selected data line, in
// input order.
//
// PARAMETERS:
//   - r: The flat file contents.
//   - visit: Called once per selected line. Returning an error stops the scan
//     and the error is returned unchanged.
//
// RETURNS:
//   - Counts of lines read, data lines, skipped and selected lines.
//   - An ErrInputRead error if reading fails.
func (s *Selector) Scan(r io.Reader, visit func(Line) error) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		stats.Lines++
		text := strings.TrimSuffix(scanner.Text(), "\r")

		if !s.IsData(text) {
			continue
		}
		stats.DataLines++

		if stats.DataLines <= s.Skip {
			stats.Skipped++
			continue
		}

		stats.Selected++
		if err := visit(Line{Number: stats.Lines, Text: text}); err != nil {
			return stats, err
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, types.EAt(types.ErrInputRead, "selector.Scan", stats.Lines+1,
			fmt.Errorf("failed to read input: %w", err))
	}

	return stats, nil
}
