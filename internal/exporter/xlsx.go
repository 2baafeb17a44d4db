package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

const defaultSheet = "Sheet1"

// writeXLSX streams header and rows into a new workbook and writes it to w.
// The header goes in row 1 in bold; data starts at row 2. Numeric Go values
// become numeric cells.
func writeXLSX(w io.Writer, header []string, rows []types.ExportRow, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(opts.Sheet)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	if len(header) > 0 {
		if err := sw.SetColWidth(1, len(header), 15); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		if opts.TrimSpreadsheet {
			row = Clean(row)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName trims name and falls back to Sheet1.
func sheetName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultSheet
	}
	return name
}
