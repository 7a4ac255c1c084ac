package mcp

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/ingest"
	"github.com/legalcase/caseintel/internal/logging"
	"github.com/legalcase/caseintel/internal/registry"
	"github.com/legalcase/caseintel/internal/watch"
)

// IngestDocumentInput is the input schema for ingest_document.
type IngestDocumentInput struct {
	CaseID string `json:"case_id" jsonschema:"the case to ingest into"`
	Path   string `json:"path" jsonschema:"absolute path to the file on disk"`
}

// IngestResultOutput summarizes one ingestion.
type IngestResultOutput struct {
	Document      DocumentOutput `json:"document"`
	ChunkCount    int            `json:"chunk_count"`
	EntityCount   int            `json:"entity_count"`
	CitationCount int            `json:"citation_count"`
}

func (s *Server) handleIngestDocument(ctx context.Context, _ *mcp.CallToolRequest, in IngestDocumentInput) (*mcp.CallToolResult, IngestResultOutput, error) {
	if in.CaseID == "" || in.Path == "" {
		return nil, IngestResultOutput{}, NewInvalidParamsError("case_id and path are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, IngestResultOutput{}, MapError(err)
	}
	if c, ok, err := s.registry.Get(in.CaseID); err != nil {
		return nil, IngestResultOutput{}, MapError(err)
	} else if ok && c.Status == registry.StatusArchived {
		return nil, IngestResultOutput{}, NewInvalidParamsError("case is archived and accepts no new documents")
	}
	req, err := s.extract.BuildRequest(in.Path, filepath.Base(in.Path))
	if err != nil {
		return nil, IngestResultOutput{}, MapError(err)
	}
	res, err := ingest.IngestDocument(ctx, h, s.engine, s.cfg.Chunking, req)
	if err != nil {
		return nil, IngestResultOutput{}, MapError(err)
	}
	logging.ForCase(s.logger, in.CaseID).Info("document ingested",
		"document_id", res.Document.ID, "chunk_count", res.ChunkCount)
	return nil, IngestResultOutput{
		Document:      toDocumentOutput(res.Document),
		ChunkCount:    res.ChunkCount,
		EntityCount:   res.EntityCount,
		CitationCount: res.CitationCount,
	}, nil
}

// IngestFolderInput is the input schema for ingest_folder.
type IngestFolderInput struct {
	CaseID    string `json:"case_id"`
	Folder    string `json:"folder" jsonschema:"absolute path to the folder on disk"`
	Recursive bool   `json:"recursive,omitempty"`
}

// IngestFolderFileResult reports one file's outcome within a batch.
type IngestFolderFileResult struct {
	Path  string `json:"path"`
	DocID string `json:"doc_id,omitempty"`
	Error string `json:"error,omitempty"`
}

// IngestFolderOutput is the output schema for ingest_folder. Per spec.md
// §7, per-file extraction or ingestion failures do not abort the batch;
// the batch result carries both successes and failures.
type IngestFolderOutput struct {
	Results []IngestFolderFileResult `json:"results"`
}

func (s *Server) handleIngestFolder(ctx context.Context, _ *mcp.CallToolRequest, in IngestFolderInput) (*mcp.CallToolResult, IngestFolderOutput, error) {
	if in.CaseID == "" || in.Folder == "" {
		return nil, IngestFolderOutput{}, NewInvalidParamsError("case_id and folder are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, IngestFolderOutput{}, MapError(err)
	}

	var out IngestFolderOutput
	walkErr := filepath.WalkDir(in.Folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !in.Recursive && path != in.Folder {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		req, err := s.extract.BuildRequest(path, d.Name())
		if err != nil {
			out.Results = append(out.Results, IngestFolderFileResult{Path: path, Error: err.Error()})
			return nil
		}
		res, err := ingest.IngestDocument(ctx, h, s.engine, s.cfg.Chunking, req)
		if err != nil {
			out.Results = append(out.Results, IngestFolderFileResult{Path: path, Error: err.Error()})
			return nil
		}
		out.Results = append(out.Results, IngestFolderFileResult{Path: path, DocID: res.Document.ID})
		return nil
	})
	if walkErr != nil {
		return nil, IngestFolderOutput{}, MapError(walkErr)
	}
	return nil, out, nil
}

// SyncFolderInput is the input schema for sync_folder.
type SyncFolderInput struct {
	WatchID string `json:"watch_id" jsonschema:"the registered watch to sync"`
	DryRun  bool   `json:"dry_run,omitempty" jsonschema:"compute the plan without executing it"`
}

// PlanEntryOutput is one decided or executed sync action.
type PlanEntryOutput struct {
	Path   string `json:"path"`
	DocID  string `json:"doc_id,omitempty"`
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

// SyncFolderOutput is the output schema for sync_folder.
type SyncFolderOutput struct {
	Plan   []PlanEntryOutput `json:"plan"`
	DryRun bool              `json:"dry_run"`
}

func (s *Server) handleSyncFolder(ctx context.Context, _ *mcp.CallToolRequest, in SyncFolderInput) (*mcp.CallToolResult, SyncFolderOutput, error) {
	if in.WatchID == "" {
		return nil, SyncFolderOutput{}, NewInvalidParamsError("watch_id is required")
	}
	if s.watches == nil {
		return nil, SyncFolderOutput{}, NewInvalidParamsError("folder watching is not enabled")
	}
	w, ok := s.watches.Get(in.WatchID)
	if !ok {
		return nil, SyncFolderOutput{}, MapError(watchNotFoundError(in.WatchID))
	}
	h, err := s.registry.OpenHandle(w.CaseID)
	if err != nil {
		return nil, SyncFolderOutput{}, MapError(err)
	}
	extractor := func(path string) (ingest.Request, error) {
		return s.extract.BuildRequest(path, filepath.Base(path))
	}
	result, err := watch.Sync(ctx, h, s.engine, s.cfg.Chunking, w, extractor, in.DryRun)
	if err != nil {
		return nil, SyncFolderOutput{}, MapError(err)
	}
	if !in.DryRun {
		if err := s.watches.MarkSynced(in.WatchID, nowUnix()); err != nil {
			return nil, SyncFolderOutput{}, MapError(err)
		}
	}
	out := SyncFolderOutput{DryRun: result.DryRun}
	for _, p := range result.Plan {
		entry := PlanEntryOutput{Path: p.Path, DocID: p.DocID, Action: string(p.Action)}
		if p.Err != nil {
			entry.Error = p.Err.Error()
		}
		out.Plan = append(out.Plan, entry)
	}
	return nil, out, nil
}

// ListDocumentsOutput is the output schema for list_documents.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
}

func (s *Server) handleListDocuments(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if in.CaseID == "" {
		return nil, ListDocumentsOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, ListDocumentsOutput{}, MapError(err)
	}
	docs, err := h.ListDocuments()
	if err != nil {
		return nil, ListDocumentsOutput{}, MapError(err)
	}
	out := make([]DocumentOutput, len(docs))
	for i, d := range docs {
		out[i] = toDocumentOutput(d)
	}
	return nil, ListDocumentsOutput{Documents: out}, nil
}

// GetDocumentInput is the input schema for get_document.
type GetDocumentInput struct {
	CaseID     string `json:"case_id"`
	DocumentID string `json:"document_id"`
}

// GetDocumentOutput is the output schema for get_document.
type GetDocumentOutput struct {
	Document DocumentOutput `json:"document"`
}

func (s *Server) handleGetDocument(ctx context.Context, _ *mcp.CallToolRequest, in GetDocumentInput) (*mcp.CallToolResult, GetDocumentOutput, error) {
	if in.CaseID == "" || in.DocumentID == "" {
		return nil, GetDocumentOutput{}, NewInvalidParamsError("case_id and document_id are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetDocumentOutput{}, MapError(err)
	}
	doc, ok, err := h.GetDocument(in.DocumentID)
	if err != nil {
		return nil, GetDocumentOutput{}, MapError(err)
	}
	if !ok {
		return nil, GetDocumentOutput{}, MapError(documentNotFoundError(in.DocumentID))
	}
	return nil, GetDocumentOutput{Document: toDocumentOutput(doc)}, nil
}

// DeleteDocumentOutput is the output schema for delete_document.
type DeleteDocumentOutput struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) handleDeleteDocument(ctx context.Context, _ *mcp.CallToolRequest, in GetDocumentInput) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if in.CaseID == "" || in.DocumentID == "" {
		return nil, DeleteDocumentOutput{}, NewInvalidParamsError("case_id and document_id are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, DeleteDocumentOutput{}, MapError(err)
	}
	if err := h.DeleteDocument(in.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, MapError(err)
	}
	return nil, DeleteDocumentOutput{Deleted: true}, nil
}
