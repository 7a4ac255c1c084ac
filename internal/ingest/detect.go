package ingest

import (
	"path/filepath"
	"strings"

	"github.com/legalcase/caseintel/internal/casehandle"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// DetectType maps a filename's extension to the DocumentType that decides
// which extractor in internal/extract handles it.
func DetectType(filename string) (casehandle.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return casehandle.DocTypeText, nil
	case ".pdf":
		return casehandle.DocTypePDF, nil
	case ".docx":
		return casehandle.DocTypeDOCX, nil
	case ".xlsx":
		return casehandle.DocTypeXLSX, nil
	case ".eml", ".msg":
		return casehandle.DocTypeEmail, nil
	default:
		return "", caseerrors.New(caseerrors.ErrCodeUnsupportedFormat,
			"unsupported file extension: "+filepath.Ext(filename), nil).
			WithSuggestion("supported formats: .txt, .md, .pdf, .docx, .xlsx, .eml")
	}
}
