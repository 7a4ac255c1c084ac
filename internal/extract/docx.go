package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/provenance"
)

// DOCXExtractor decodes word/document.xml out of the DOCX zip container.
// excelize targets spreadsheets, not word-processing documents, so there
// is no pack library for this format; the XML part-walking approach below
// is hand-written, grounded on the pack's own DOCX reader.
type DOCXExtractor struct{}

func (e *DOCXExtractor) SupportedExtensions() []string { return []string{".docx"} }

func (e *DOCXExtractor) Method() provenance.ExtractionMethod { return provenance.ExtractionNative }

// ExtractPages returns the whole document as a single page: DOCX carries
// no hard page boundaries in its XML (pagination is a rendering-time
// concern), so page 1 stands in for "the document" the way it does for
// plain text.
func (e *DOCXExtractor) ExtractPages(path string) ([]Page, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeUnsupportedFormat, "opening DOCX", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, caseerrors.New(caseerrors.ErrCodeUnsupportedFormat, "word/document.xml not found in DOCX", nil)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	text, err := parseDocxXML(data)
	if err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeUnsupportedFormat, "parsing DOCX XML", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return []Page{{Number: 1, Text: text}}, nil
}

// parseDocxXML joins each top-level paragraph's runs into one line, then
// appends every table row as a pipe-delimited line. Paragraphs and tables
// are not interleaved in document order: all paragraphs come first.
func parseDocxXML(data []byte) (string, error) {
	var doc docxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, para := range doc.Body.Paras {
		text := extractParaText(para)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}

	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				var cellText strings.Builder
				for _, p := range cell.Paras {
					if cellText.Len() > 0 {
						cellText.WriteString(" ")
					}
					cellText.WriteString(extractParaText(p))
				}
				cells = append(cells, cellText.String())
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |")
		}
	}

	return b.String(), nil
}

func extractParaText(para docxPara) string {
	var b strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// DOCX XML structures (simplified): only the paragraph/run/table shape
// needed for plain-text extraction, not styling or relationships.
type docxBody struct {
	XMLName xml.Name    `xml:"body"`
	Paras   []docxPara  `xml:"p"`
	Tables  []docxTable `xml:"tbl"`
}

type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxPara struct {
	XMLName xml.Name  `xml:"p"`
	Runs    []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paras []docxPara `xml:"p"`
}
