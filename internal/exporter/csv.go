package exporter

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// CSVWriter writes rows as delimited text with a "\n" line terminator.
//
// encoding/csv only knows one quoting rule, so fields are formatted here to
// support the full policy set.
type CSVWriter struct {
	w         *bufio.Writer
	delimiter rune
	quoting   Quoting
	row       int
}

// field is one formatted cell.
type field struct {
	text      string
	isNumeric bool
}

// NewCSVWriter wraps w. The caller must call Flush when done.
func NewCSVWriter(w io.Writer, delimiter rune, quoting Quoting) *CSVWriter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVWriter{w: bufio.NewWriter(w), delimiter: delimiter, quoting: quoting}
}

// WriteHeader writes the header row.
func (cw *CSVWriter) WriteHeader(header []string) error {
	row := make(types.ExportRow, len(header))
	for i, h := range header {
		row[i] = h
	}
	return cw.WriteRow(row)
}

// WriteRow writes one row. Values are written as given; trimming is the
// caller's job (see Clean).
func (cw *CSVWriter) WriteRow(row types.ExportRow) error {
	cw.row++

	fields := make([]field, len(row))
	for i, v := range row {
		fields[i] = toField(v)
	}

	var buf bytes.Buffer
	for i, f := range fields {
		if i > 0 {
			buf.WriteRune(cw.delimiter)
		}
		text, err := cw.formatField(f, len(fields))
		if err != nil {
			return fmt.Errorf("row %d, column %d: %w", cw.row, i+1, err)
		}
		buf.WriteString(text)
	}
	buf.WriteByte('\n')

	_, err := cw.w.Write(buf.Bytes())
	return err
}

// Flush writes any buffered data.
func (cw *CSVWriter) Flush() error {
	return cw.w.Flush()
}

func (cw *CSVWriter) formatField(f field, width int) (string, error) {
	if cw.quoting == QuoteNone {
		if cw.needsEscape(f.text) {
			return "", fmt.Errorf("value %q needs escaping but quoting is NONE", f.text)
		}
		return f.text, nil
	}
	if !cw.needsQuote(f, width) {
		return f.text, nil
	}
	return `"` + strings.ReplaceAll(f.text, `"`, `""`) + `"`, nil
}

func (cw *CSVWriter) needsEscape(text string) bool {
	return strings.ContainsRune(text, cw.delimiter) || strings.ContainsAny(text, "\"\r\n")
}

func (cw *CSVWriter) needsQuote(f field, width int) bool {
	switch cw.quoting {
	case QuoteAll:
		return true
	case QuoteNonNumeric:
		return !f.isNumeric
	default:
		// A row made of one empty field would otherwise read back as a blank
		// line.
		if width == 1 && f.text == "" {
			return true
		}
		return cw.needsEscape(f.text)
	}
}

// toField renders a value. Only Go numeric types count as numeric; numeric
// looking strings are still text.
func toField(v any) field {
	switch x := v.(type) {
	case nil:
		return field{}
	case string:
		return field{text: x}
	case int:
		return field{text: strconv.Itoa(x), isNumeric: true}
	case int8, int16, int32, int64:
		return field{text: fmt.Sprint(x), isNumeric: true}
	case uint, uint8, uint16, uint32, uint64:
		return field{text: fmt.Sprint(x), isNumeric: true}
	case float32:
		return field{text: strconv.FormatFloat(float64(x), 'f', -1, 32), isNumeric: true}
	case float64:
		return field{text: strconv.FormatFloat(x, 'f', -1, 64), isNumeric: true}
	case bool:
		if x {
			return field{text: "True"}
		}
		return field{text: "False"}
	case fmt.Stringer:
		return field{text: x.String()}
	default:
		return field{text: fmt.Sprint(x)}
	}
}
