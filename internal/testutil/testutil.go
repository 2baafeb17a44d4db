// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteTemplate saves an XLSX workbook with one sheet named sheet, filled
// with rows starting at A1, and returns its path.
func WriteTemplate(t *testing.T, dir, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// BillTemplateRows is the template used by the end-to-end scenario:
// acct [0,10), name [10,40), amt [40,50). It includes a heading row without
// an offset and a note row without a label, both of which the loader skips.
func BillTemplateRows() [][]any {
	return [][]any{
		{"Field", "Type", "Length", nil},
		{"acct", "N", 10, 10},
		{nil, "note: name is left aligned", nil, nil},
		{"name", "A", 30, 40},
		{"amt", "N", 10, 50},
	}
}

// ReadSheet returns all rows of a sheet in an XLSX file.
func ReadSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
