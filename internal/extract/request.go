package extract

import (
	"os"

	"github.com/legalcase/caseintel/internal/ingest"
)

// BuildRequest reads path, detects its DocumentType, dispatches to the
// registered PageExtractor, and assembles an ingest.Request ready for
// ingest.IngestDocument. This is the concrete decoding step
// internal/watch's Extractor function type stands in for, and the one the
// ingest_document/ingest_folder/sync_folder MCP tools call directly.
func (r *Registry) BuildRequest(path, displayName string) (ingest.Request, error) {
	docType, err := ingest.DetectType(displayName)
	if err != nil {
		return ingest.Request{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ingest.Request{}, err
	}

	pages, method, err := r.ExtractPages(docType, path)
	if err != nil {
		return ingest.Request{}, err
	}

	ocrConfidence := -1.0
	return ingest.Request{
		DisplayName:      displayName,
		SourceFile:       path,
		RawBytes:         raw,
		Text:             joinPages(pages),
		Type:             docType,
		PageCount:        len(pages),
		ExtractionMethod: method,
		OCRConfidence:    ocrConfidence,
	}, nil
}
