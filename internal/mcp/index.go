package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/ingest"
)

// ReindexDocumentOutput is the output schema for reindex_document.
type ReindexDocumentOutput struct {
	Document      DocumentOutput `json:"document"`
	ChunkCount    int            `json:"chunk_count"`
	EntityCount   int            `json:"entity_count"`
	CitationCount int            `json:"citation_count"`
}

// handleReindexDocument deletes a document and re-extracts/re-ingests it
// from its tracked source file. A document ingested without a source file
// on disk (source_file empty) cannot be reindexed this way; re-run
// ingest_document instead.
func (s *Server) handleReindexDocument(ctx context.Context, _ *mcp.CallToolRequest, in GetDocumentInput) (*mcp.CallToolResult, ReindexDocumentOutput, error) {
	if in.CaseID == "" || in.DocumentID == "" {
		return nil, ReindexDocumentOutput{}, NewInvalidParamsError("case_id and document_id are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, ReindexDocumentOutput{}, MapError(err)
	}
	doc, ok, err := h.GetDocument(in.DocumentID)
	if err != nil {
		return nil, ReindexDocumentOutput{}, MapError(err)
	}
	if !ok {
		return nil, ReindexDocumentOutput{}, MapError(documentNotFoundError(in.DocumentID))
	}
	if doc.SourceFile == "" {
		return nil, ReindexDocumentOutput{}, NewInvalidParamsError("document has no tracked source file to reindex from")
	}

	req, err := s.extract.BuildRequest(doc.SourceFile, doc.DisplayName)
	if err != nil {
		return nil, ReindexDocumentOutput{}, MapError(err)
	}
	if err := h.DeleteDocument(in.DocumentID); err != nil {
		return nil, ReindexDocumentOutput{}, MapError(err)
	}
	res, err := ingest.IngestDocument(ctx, h, s.engine, s.cfg.Chunking, req)
	if err != nil {
		return nil, ReindexDocumentOutput{}, MapError(err)
	}
	return nil, ReindexDocumentOutput{
		Document:      toDocumentOutput(res.Document),
		ChunkCount:    res.ChunkCount,
		EntityCount:   res.EntityCount,
		CitationCount: res.CitationCount,
	}, nil
}

// ReindexCaseFileResult reports one document's reindex outcome within a
// case-wide reindex.
type ReindexCaseFileResult struct {
	DocumentID string `json:"document_id"`
	Error      string `json:"error,omitempty"`
}

// ReindexCaseOutput is the output schema for reindex_case.
type ReindexCaseOutput struct {
	Results []ReindexCaseFileResult `json:"results"`
}

// handleReindexCase reindexes every document in a case that carries a
// tracked source file; documents without one are reported as errors in the
// batch result rather than aborting the rest, mirroring ingest_folder's
// per-file tolerance.
func (s *Server) handleReindexCase(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, ReindexCaseOutput, error) {
	if in.CaseID == "" {
		return nil, ReindexCaseOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, ReindexCaseOutput{}, MapError(err)
	}
	docs, err := h.ListDocuments()
	if err != nil {
		return nil, ReindexCaseOutput{}, MapError(err)
	}

	var out ReindexCaseOutput
	for _, doc := range docs {
		if ctx.Err() != nil {
			return nil, ReindexCaseOutput{}, MapError(ctx.Err())
		}
		if doc.SourceFile == "" {
			out.Results = append(out.Results, ReindexCaseFileResult{DocumentID: doc.ID, Error: "document has no tracked source file"})
			continue
		}
		req, err := s.extract.BuildRequest(doc.SourceFile, doc.DisplayName)
		if err != nil {
			out.Results = append(out.Results, ReindexCaseFileResult{DocumentID: doc.ID, Error: err.Error()})
			continue
		}
		if err := h.DeleteDocument(doc.ID); err != nil {
			out.Results = append(out.Results, ReindexCaseFileResult{DocumentID: doc.ID, Error: err.Error()})
			continue
		}
		res, err := ingest.IngestDocument(ctx, h, s.engine, s.cfg.Chunking, req)
		if err != nil {
			out.Results = append(out.Results, ReindexCaseFileResult{DocumentID: doc.ID, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, ReindexCaseFileResult{DocumentID: res.Document.ID})
	}
	return nil, out, nil
}

// GetIndexStatusOutput is the output schema for get_index_status.
type GetIndexStatusOutput struct {
	DocumentCount   int      `json:"document_count"`
	ChunkCount      int      `json:"chunk_count"`
	ConfiguredSlots []string `json:"configured_slots"`
}

func (s *Server) handleGetIndexStatus(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, GetIndexStatusOutput, error) {
	if in.CaseID == "" {
		return nil, GetIndexStatusOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetIndexStatusOutput{}, MapError(err)
	}
	docs, err := h.ListDocuments()
	if err != nil {
		return nil, GetIndexStatusOutput{}, MapError(err)
	}
	chunkCount := 0
	for _, d := range docs {
		chunkCount += d.ChunkCount
	}
	var slots []string
	if s.engine != nil {
		for _, slot := range s.engine.ConfiguredSlots() {
			slots = append(slots, string(slot))
		}
	}
	return nil, GetIndexStatusOutput{
		DocumentCount:   len(docs),
		ChunkCount:      chunkCount,
		ConfiguredSlots: slots,
	}, nil
}
