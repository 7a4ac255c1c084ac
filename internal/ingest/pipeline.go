package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/legalindex"
	"github.com/legalcase/caseintel/internal/provenance"
)

// Request is everything the pipeline needs to ingest one already-extracted
// document: the extraction step (internal/extract) has already turned the
// source file into plain text plus provenance metadata.
type Request struct {
	DisplayName      string
	SourceFile       string // empty if not tracked/copied
	RawBytes         []byte // the original file bytes, hashed for dedup
	Text             string
	Type             casehandle.DocumentType
	PageCount        int
	ExtractionMethod provenance.ExtractionMethod
	OCRConfidence    float64 // -1 when not applicable
}

// Result summarizes one ingestion run for the caller (e.g. the MCP tool
// handler or the watch-folder sync loop).
type Result struct {
	Document      *casehandle.Document
	ChunkCount    int
	EntityCount   int
	CitationCount int
}

// IngestDocument computes req's content hash, rejects it as a duplicate if
// any existing document already carries that hash, chunks its text with
// legal-aware boundary preservation, and writes the document, its chunks,
// their BM25 postings, and their extracted entities/citations. Per
// spec.md §4.F, a document's chunk/entity/citation records are considered
// fully written only once every chunk has been indexed; a failure partway
// through leaves the document record unwritten (written last) so a
// half-ingested document is never visible to readers.
func IngestDocument(ctx context.Context, h *casehandle.Handle, engine embed.Engine, cfg config.ChunkingConfig, req Request) (*Result, error) {
	hash := ContentHash(req.RawBytes)
	if existingID, err := findByHash(h, hash); err != nil {
		return nil, err
	} else if existingID != "" {
		return nil, caseerrors.DuplicateDocument(existingID)
	}

	docID := uuid.NewString()
	now := time.Now().Unix()

	spans := Chunk(req.Text, cfg)

	embedders := slotNames(engine)
	var entityCount, citationCount int

	for seq, span := range spans {
		chunkID := uuid.NewString()
		prov := provenance.Provenance{
			DocumentID:       docID,
			DocumentName:     req.DisplayName,
			SourceFile:       req.SourceFile,
			Page:             pageForSpan(req.PageCount, len(req.Text), span.Start),
			CharStart:        int64(span.Start),
			CharEnd:          int64(span.End),
			ExtractionMethod: req.ExtractionMethod,
			OCRConfidence:    req.OCRConfidence,
			ChunkPosition:    seq,
			CreatedAt:        now,
		}

		if len(embedders) > 0 {
			emb, err := engine.EmbedChunk(ctx, span.Text)
			if err != nil {
				return nil, err
			}
			prov.LastEmbeddedAt = now
			if err := h.StoreEmbedding(&provenance.ChunkEmbeddingRecord{
				ChunkID:    chunkID,
				Text:       span.Text,
				Provenance: prov,
				Dense:      emb.Dense,
				Sparse:     emb.Sparse,
				Token:      emb.Token,
			}); err != nil {
				return nil, err
			}
		}

		chunk := &provenance.Chunk{
			ID:             chunkID,
			DocumentID:     docID,
			Sequence:       seq,
			Text:           span.Text,
			CreatedAt:      now,
			LastEmbeddedAt: prov.LastEmbeddedAt,
			Embedders:      embedders,
			Provenance:     prov,
		}
		if err := h.StoreChunk(chunk); err != nil {
			return nil, err
		}

		if err := h.IndexChunkBM25(chunkID, span.Text); err != nil {
			return nil, err
		}

		citations, citationMentions := legalindex.ExtractCitations(chunkID, span.Text)
		for _, c := range citations {
			if err := h.StoreCitation(c); err != nil {
				return nil, err
			}
		}
		for _, m := range citationMentions {
			if err := h.StoreCitationMention(m); err != nil {
				return nil, err
			}
		}
		citationCount += len(citationMentions)

		entities, entityMentions := legalindex.ExtractEntities(chunkID, span.Text)
		for _, e := range entities {
			if err := h.StoreEntity(e); err != nil {
				return nil, err
			}
		}
		for _, m := range entityMentions {
			if err := h.StoreEntityMention(m); err != nil {
				return nil, err
			}
		}
		entityCount += len(entityMentions)
	}

	doc := &casehandle.Document{
		ID:               docID,
		DisplayName:      req.DisplayName,
		SourceFile:       req.SourceFile,
		Type:             req.Type,
		PageCount:        req.PageCount,
		ChunkCount:       len(spans),
		IngestedAt:       now,
		UpdatedAt:        now,
		ContentHash:      hash,
		ExtractionMethod: req.ExtractionMethod,
		Embedders:        embedders,
		EntityCount:      entityCount,
		ReferenceCount:   0,
		CitationCount:    citationCount,
	}
	if err := h.StoreDocument(doc); err != nil {
		return nil, err
	}
	if err := h.RecordIngestActivity(now); err != nil {
		return nil, err
	}

	return &Result{Document: doc, ChunkCount: len(spans), EntityCount: entityCount, CitationCount: citationCount}, nil
}

// findByHash scans existing documents for a matching content hash. Linear
// in document count, acceptable at the per-case scale spec.md targets
// (tens of thousands of documents, not millions); a hash-indexed lookup
// can replace this if that ever changes.
func findByHash(h *casehandle.Handle, hash [32]byte) (string, error) {
	docs, err := h.ListDocuments()
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.ContentHash == hash {
			return d.ID, nil
		}
	}
	return "", nil
}

// slotNames converts engine's configured embedding slots to the string
// vocabulary ("dense", "sparse", "token") that Chunk.Embedders and
// Document.Embedders record, per spec.md §3. A nil engine (e.g. a case
// running lexical-only) yields no embedders and skips embedding entirely.
func slotNames(engine embed.Engine) []string {
	if engine == nil {
		return nil
	}
	slots := engine.ConfiguredSlots()
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return names
}

// pageForSpan estimates the 1-indexed page a byte offset falls on by
// linear interpolation across the document's reported page count. Request
// carries only a page count, not per-page offsets, so every chunk's page is
// estimated this way.
func pageForSpan(pageCount, totalChars, offset int) int {
	if pageCount <= 1 || totalChars == 0 {
		return 1
	}
	page := 1 + (offset*pageCount)/totalChars
	if page > pageCount {
		page = pageCount
	}
	return page
}
