package casehandle

import (
	"fmt"

	"github.com/legalcase/caseintel/internal/binenc"
	"github.com/legalcase/caseintel/internal/provenance"
)

// EncodeDocument serializes a Document to its fixed binary form.
func EncodeDocument(d *Document) []byte {
	buf := make([]byte, 0, 128+len(d.DisplayName)+len(d.SourceFile))
	buf = binenc.PutString(buf, d.ID)
	buf = binenc.PutString(buf, d.DisplayName)
	buf = binenc.PutString(buf, d.SourceFile)
	buf = binenc.PutString(buf, string(d.Type))
	buf = binenc.PutInt64(buf, int64(d.PageCount))
	buf = binenc.PutInt64(buf, int64(d.ChunkCount))
	buf = binenc.PutInt64(buf, d.IngestedAt)
	buf = binenc.PutInt64(buf, d.UpdatedAt)
	buf = append(buf, d.ContentHash[:]...)
	buf = binenc.PutString(buf, string(d.ExtractionMethod))
	buf = binenc.PutStringSlice(buf, d.Embedders)
	buf = binenc.PutInt64(buf, int64(d.EntityCount))
	buf = binenc.PutInt64(buf, int64(d.ReferenceCount))
	buf = binenc.PutInt64(buf, int64(d.CitationCount))
	return buf
}

// DecodeDocument parses a buffer produced by EncodeDocument.
func DecodeDocument(buf []byte) (*Document, error) {
	var d Document
	var err error

	if d.ID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if d.DisplayName, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("display_name: %w", err)
	}
	if d.SourceFile, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("source_file: %w", err)
	}
	var docType string
	if docType, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	d.Type = DocumentType(docType)

	var v int64
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("page_count: %w", err)
	}
	d.PageCount = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("chunk_count: %w", err)
	}
	d.ChunkCount = int(v)
	if d.IngestedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("ingested_at: %w", err)
	}
	if d.UpdatedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}

	if len(buf) < 32 {
		return nil, fmt.Errorf("truncated content_hash")
	}
	copy(d.ContentHash[:], buf[:32])
	buf = buf[32:]

	var method string
	if method, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("extraction_method: %w", err)
	}
	d.ExtractionMethod = provenance.ExtractionMethod(method)

	if d.Embedders, buf, err = binenc.TakeStringSlice(buf); err != nil {
		return nil, fmt.Errorf("embedders: %w", err)
	}
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("entity_count: %w", err)
	}
	d.EntityCount = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("reference_count: %w", err)
	}
	d.ReferenceCount = int(v)
	if v, _, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("citation_count: %w", err)
	}
	d.CitationCount = int(v)

	return &d, nil
}
