package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/provenance"
)

// XLSXExtractor decodes a spreadsheet's sheets into pipe-delimited table
// text, one Page per sheet — schedules and financial exhibits attached to
// a case are commonly spreadsheets, not prose.
type XLSXExtractor struct{}

func (e *XLSXExtractor) SupportedExtensions() []string { return []string{".xlsx"} }

func (e *XLSXExtractor) Method() provenance.ExtractionMethod { return provenance.ExtractionNative }

func (e *XLSXExtractor) ExtractPages(path string) ([]Page, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeUnsupportedFormat, "opening XLSX", err)
	}
	defer f.Close()

	var pages []Page
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Sheet: %s\n", sheet)
		for _, row := range rows {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		pages = append(pages, Page{Number: i + 1, Text: strings.TrimSpace(b.String())})
	}
	return pages, nil
}
