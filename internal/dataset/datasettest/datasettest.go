// Package datasettest writes spreadsheet fixtures for tests.
package datasettest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes a single-sheet workbook to dir/name and returns its path.
// Cells are written with their Go type, so ints and floats become numeric
// Excel cells and strings become text cells.
func WriteXLSX(t testing.TB, dir, name string, header []string, rows [][]any) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &headerRow))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteCSV writes header and records to dir/name and returns its path.
func WriteCSV(t testing.TB, dir, name string, header []string, records [][]string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, w.Error())
	return path
}
