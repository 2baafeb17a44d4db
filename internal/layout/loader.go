// =============================================================================
// flat2tab - Layout Template Loader
// =============================================================================
//
// This module reads a layout from an XLSX template. The template is a sheet
// with one row per field:
//
//   | Column A    | Column B | Column C | Column D   |
//   |-------------|----------|----------|------------|
//   | Field label | (any)    | (any)    | End offset |
//   | ACCT_NO     | ...      | ...      | 10         |
//   | OWNER_NAME  | ...      | ...      | 40         |
//
// Only the label column and the end-offset column are read. Their positions
// are configurable via Options. Rows where either value is empty are skipped
// (headings, notes, blank separator rows).
//
// =============================================================================

package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Defaults matching the billing template.
const (
	DefaultSheet        = "Bill Print Detail"
	DefaultLabelColumn  = 1
	DefaultOffsetColumn = 4
)

// Options controls where in the template the layout is read from.
type Options struct {
	// Sheet is the worksheet name.
	// Default: "Bill Print Detail"
	Sheet string

	// LabelColumn is the 1-based column holding the field label.
	// Default: 1 (Column A)
	LabelColumn int

	// OffsetColumn is the 1-based column holding the cumulative end offset.
	// Default: 4 (Column D)
	OffsetColumn int
}

// DefaultOptions returns the options matching the billing template layout.
func DefaultOptions() Options {
	return Options{
		Sheet:        DefaultSheet,
		LabelColumn:  DefaultLabelColumn,
		OffsetColumn: DefaultOffsetColumn,
	}
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Sheet == "" {
		o.Sheet = d.Sheet
	}
	if o.LabelColumn <= 0 {
		o.LabelColumn = d.LabelColumn
	}
	if o.OffsetColumn <= 0 {
		o.OffsetColumn = d.OffsetColumn
	}
	return o
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads an XLSX template file and extracts the layout.
//
// PARAMETERS:
//   - templatePath: The path to the XLSX template file.
//   - opts: Sheet and column positions. Zero values take the defaults.
//
// RETURNS:
//   - The layout, in sheet row order.
//   - An ErrLayoutLoad error if the file cannot be opened, the sheet does not
//     exist, an offset is not an integer, or the layout is invalid.
func Load(templatePath string, opts Options) (Layout, error) {
	const op = "layout.Load"
	opts = opts.withDefaults()

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, types.E(types.ErrLayoutLoad, op, fmt.Errorf("failed to open template file: %w", err))
	}
	defer f.Close()

	l, err := FromWorkbook(f, opts)
	if err != nil {
		return nil, types.E(types.ErrLayoutLoad, op, fmt.Errorf("%s: %w", templatePath, err))
	}
	return l, nil
}

// FromWorkbook extracts the layout from an already open workbook.
func FromWorkbook(f *excelize.File, opts Options) (Layout, error) {
	opts = opts.withDefaults()

	if idx, err := f.GetSheetIndex(opts.Sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", opts.Sheet, strings.Join(f.GetSheetList(), ", "))
	}

	// Raw values: a "#,##0" offset cell would otherwise read as "1,200".
	rows, err := f.GetRows(opts.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return FromRows(rows, opts)
}

// FromRows builds a layout from raw sheet rows.
//
// rows[i] is sheet row i+1; cells are 0-indexed, so the 1-based columns in
// opts are shifted by one.
func FromRows(rows [][]string, opts Options) (Layout, error) {
	opts = opts.withDefaults()

	getCell := func(row []string, col int) string {
		if col-1 < len(row) {
			return strings.TrimSpace(row[col-1])
		}
		return ""
	}

	var l Layout
	for i, row := range rows {
		label := getCell(row, opts.LabelColumn)
		raw := getCell(row, opts.OffsetColumn)
		if label == "" || raw == "" {
			continue
		}

		end, err := parseOffset(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, label, err)
		}

		l = append(l, Entry{Name: label, End: end})
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}

	return l, nil
}

// parseOffset converts a cell value to an integer offset. Numeric cells can
// come back as "10" or "10.0" depending on the cell format; both are accepted
// as long as the value is integral.
func parseOffset(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	fv, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("end offset %q is not a number", raw)
	}
	if fv != math.Trunc(fv) {
		return 0, fmt.Errorf("end offset %q is not a whole number", raw)
	}
	return int(fv), nil
}
