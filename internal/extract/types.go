// Package extract implements the document decoders spec.md §9 names as a
// small capability set — extract_pages(path) → Pages, supported_extensions()
// → Set — so internal/ingest can dispatch by detected type without knowing
// any format's internals.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/legalcase/caseintel/internal/casehandle"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/provenance"
)

// Page is one page of extracted plain text, 1-indexed to match
// provenance.Provenance.Page.
type Page struct {
	Number int
	Text   string
}

// PageExtractor is the capability set spec.md §9 names for a document
// format decoder.
type PageExtractor interface {
	ExtractPages(path string) ([]Page, error)
	SupportedExtensions() []string
	Method() provenance.ExtractionMethod
}

// Registry dispatches a file to the PageExtractor registered for its
// detected type.
type Registry struct {
	byType map[casehandle.DocumentType]PageExtractor
}

// NewRegistry builds a Registry with the decoders this package ships:
// plain text, PDF, DOCX, XLSX, and plain-text email.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[casehandle.DocumentType]PageExtractor)}
	r.Register(casehandle.DocTypeText, &TextExtractor{})
	r.Register(casehandle.DocTypePDF, &PDFExtractor{})
	r.Register(casehandle.DocTypeDOCX, &DOCXExtractor{})
	r.Register(casehandle.DocTypeXLSX, &XLSXExtractor{})
	r.Register(casehandle.DocTypeEmail, &EmailExtractor{})
	return r
}

// Register adds or replaces the extractor used for docType.
func (r *Registry) Register(docType casehandle.DocumentType, e PageExtractor) {
	r.byType[docType] = e
}

// ExtractPages dispatches path to the extractor registered for docType.
func (r *Registry) ExtractPages(docType casehandle.DocumentType, path string) ([]Page, provenance.ExtractionMethod, error) {
	e, ok := r.byType[docType]
	if !ok {
		return nil, "", caseerrors.New(caseerrors.ErrCodeUnsupportedFormat,
			"no extractor registered for document type "+string(docType), nil)
	}
	pages, err := e.ExtractPages(path)
	if err != nil {
		return nil, "", err
	}
	return pages, e.Method(), nil
}

// detectedExtension lower-cases and strips the leading dot from path's
// extension, for extractors that branch on a sub-format (e.g. .eml vs .msg).
func detectedExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// joinPages concatenates every page's text with a form-feed-free blank line,
// for extractors whose ingest.Request.Text is built from the full Pages set
// rather than consumed page-by-page.
func joinPages(pages []Page) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
