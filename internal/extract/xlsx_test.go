package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXExtractor_ExtractsSheetAsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "damages.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Amount"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Lost wages"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "5000"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	e := &XLSXExtractor{}
	pages, err := e.ExtractPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Sheet: Sheet1")
	assert.Contains(t, pages[0].Text, "| Item | Amount |")
	assert.Contains(t, pages[0].Text, "| Lost wages | 5000 |")
}

func TestXLSXExtractor_MissingFileErrors(t *testing.T) {
	e := &XLSXExtractor{}
	_, err := e.ExtractPages(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
