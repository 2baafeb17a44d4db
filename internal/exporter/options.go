// =============================================================================
// flat2tab - Export Options
// =============================================================================
//
// QUOTING POLICY (CSV only):
//   | Policy     | Behavior                                                 |
//   |------------|----------------------------------------------------------|
//   | ALL        | Quote every field                                        |
//   | MINIMAL    | Quote only fields containing the delimiter, a quote,     |
//   |            | CR or LF (default)                                       |
//   | NONNUMERIC | Quote every field that is not a number                   |
//   | NONE       | Never quote; a field that needs escaping is an error     |
//
// TRIMMING:
//   Textual values are stripped of leading/trailing whitespace before they
//   are written. Non-textual values are written as-is. Spreadsheet output can
//   opt out of trimming with TrimSpreadsheet=false to reproduce older exports.
//
// =============================================================================

package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Quoting is the CSV quoting policy.
type Quoting int

const (
	QuoteMinimal Quoting = iota
	QuoteAll
	QuoteNonNumeric
	QuoteNone
)

// String returns the config spelling of the policy.
func (q Quoting) String() string {
	switch q {
	case QuoteAll:
		return "ALL"
	case QuoteNonNumeric:
		return "NONNUMERIC"
	case QuoteNone:
		return "NONE"
	default:
		return "MINIMAL"
	}
}

// ParseQuoting converts a config value to a policy. Matching is
// case-insensitive and an empty value means MINIMAL.
func ParseQuoting(value string) (Quoting, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "MINIMAL":
		return QuoteMinimal, nil
	case "ALL":
		return QuoteAll, nil
	case "NONNUMERIC":
		return QuoteNonNumeric, nil
	case "NONE":
		return QuoteNone, nil
	default:
		return QuoteMinimal, types.E(types.ErrConfig, "exporter.ParseQuoting",
			fmt.Errorf("unsupported quoting %q (use ALL, MINIMAL, NONNUMERIC or NONE)", value))
	}
}

// Format is the output file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor infers the format from the output file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// ParseFormat converts a config value to a format. An empty value infers the
// format from path.
func ParseFormat(value, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return FormatFor(path), nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", types.E(types.ErrConfig, "exporter.ParseFormat",
			fmt.Errorf("unsupported output format %q (use csv or xlsx)", value))
	}
}

// Options controls how rows are written.
type Options struct {
	// Format selects the sink. Default: inferred from the output path.
	Format Format

	// Quoting is the CSV quoting policy. Default: MINIMAL.
	Quoting Quoting

	// Delimiter is the CSV field separator. Default: ','.
	Delimiter rune

	// TrimSpreadsheet trims text values in XLSX output. Used as given: false
	// writes values as decoded. The config layer sets it unless
	// trim_spreadsheet is false. CSV output is always trimmed.
	TrimSpreadsheet bool

	// Sheet is the XLSX worksheet name. Default: "Sheet1".
	Sheet string
}

// =============================================================================
// VALUE CLEANING
// =============================================================================

// Clean returns a copy of row with every string value trimmed. Other values
// pass through unchanged.
func Clean(row types.ExportRow) types.ExportRow {
	out := make(types.ExportRow, len(row))
	for i, v := range row {
		if s, ok := v.(string); ok {
			out[i] = strings.TrimSpace(s)
			continue
		}
		out[i] = v
	}
	return out
}
