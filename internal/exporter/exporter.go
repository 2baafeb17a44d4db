// =============================================================================
// flat2tab - Tabular Exporter
// =============================================================================
//
// Writes the header and the finished rows to a CSV or XLSX file.
//
// WRITE SEMANTICS:
//   Output is written to a temporary file next to the destination and renamed
//   into place only after everything was written. A failed export never
//   leaves a partial file behind, and an existing output file is untouched.
//
// =============================================================================

package exporter

import (
	"io"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Exporter writes one table to its destination.
type Exporter interface {
	Export(header []string, rows []types.ExportRow) error
}

// FileExporter writes a table to a file path in the configured format.
type FileExporter struct {
	path string
	opts Options
}

var _ Exporter = (*FileExporter)(nil)

// New returns an exporter for path. A zero Delimiter or Sheet takes its
// default and an empty Format is inferred from the path extension. Quoting
// and TrimSpreadsheet are used as given.
func New(path string, opts Options) *FileExporter {
	if opts.Format == "" {
		opts.Format = FormatFor(path)
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Sheet == "" {
		opts.Sheet = defaultSheet
	}
	return &FileExporter{path: path, opts: opts}
}

// Path returns the destination path.
func (e *FileExporter) Path() string {
	return e.path
}

// Options returns the effective options.
func (e *FileExporter) Options() Options {
	return e.opts
}

// Export writes header and rows to the destination.
//
// RETURNS:
//   - nil on success.
//   - An ErrExport error if formatting or any I/O step failed. The
//     destination is unchanged in that case.
func (e *FileExporter) Export(header []string, rows []types.ExportRow) error {
	err := writeAtomic(e.path, func(w io.Writer) error {
		if e.opts.Format == FormatXLSX {
			return writeXLSX(w, header, rows, e.opts)
		}
		return writeCSV(w, header, rows, e.opts)
	})
	if err != nil {
		return types.E(types.ErrExport, "exporter.Export", err)
	}
	return nil
}

// Write is shorthand for New(path, opts).Export(header, rows).
func Write(path string, header []string, rows []types.ExportRow, opts Options) error {
	return New(path, opts).Export(header, rows)
}

// writeCSV writes a trimmed CSV table.
func writeCSV(w io.Writer, header []string, rows []types.ExportRow, opts Options) error {
	cw := NewCSVWriter(w, opts.Delimiter, opts.Quoting)
	if err := cw.WriteHeader(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.WriteRow(Clean(row)); err != nil {
			return err
		}
	}
	return cw.Flush()
}
