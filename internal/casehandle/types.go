// Package casehandle opens one case's store and owns it exclusively for the
// life of the handle, exposing typed CRUD over documents, chunks, entities,
// citations, and embeddings, per spec.md §4.E.
package casehandle

import "github.com/legalcase/caseintel/internal/provenance"

// DocumentType is the detected format of an ingested file.
type DocumentType string

const (
	DocTypeText  DocumentType = "Text"
	DocTypePDF   DocumentType = "PDF"
	DocTypeDOCX  DocumentType = "DOCX"
	DocTypeXLSX  DocumentType = "XLSX"
	DocTypeEmail DocumentType = "Email"
)

// Document is the registry record for one ingested file within a case.
type Document struct {
	ID               string
	DisplayName      string
	SourceFile       string // empty if not copied/tracked
	Type             DocumentType
	PageCount        int
	ChunkCount       int
	IngestedAt       int64
	UpdatedAt        int64
	ContentHash      [32]byte
	ExtractionMethod provenance.ExtractionMethod
	Embedders        []string
	EntityCount      int
	ReferenceCount   int
	CitationCount    int
}
