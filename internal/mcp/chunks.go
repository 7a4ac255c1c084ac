package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ChunkIDInput is the input schema for get_chunk.
type ChunkIDInput struct {
	CaseID  string `json:"case_id"`
	ChunkID string `json:"chunk_id"`
}

// GetChunkOutput is the output schema for get_chunk.
type GetChunkOutput struct {
	Chunk ChunkOutput `json:"chunk"`
}

func (s *Server) handleGetChunk(ctx context.Context, _ *mcp.CallToolRequest, in ChunkIDInput) (*mcp.CallToolResult, GetChunkOutput, error) {
	if in.CaseID == "" || in.ChunkID == "" {
		return nil, GetChunkOutput{}, NewInvalidParamsError("case_id and chunk_id are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetChunkOutput{}, MapError(err)
	}
	c, ok, err := h.GetChunk(in.ChunkID)
	if err != nil {
		return nil, GetChunkOutput{}, MapError(err)
	}
	if !ok {
		return nil, GetChunkOutput{}, MapError(chunkNotFoundError(in.ChunkID))
	}
	return nil, GetChunkOutput{Chunk: toChunkOutput(c)}, nil
}

// GetDocumentChunksOutput is the output schema for get_document_chunks.
type GetDocumentChunksOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
}

func (s *Server) handleGetDocumentChunks(ctx context.Context, _ *mcp.CallToolRequest, in GetDocumentInput) (*mcp.CallToolResult, GetDocumentChunksOutput, error) {
	if in.CaseID == "" || in.DocumentID == "" {
		return nil, GetDocumentChunksOutput{}, NewInvalidParamsError("case_id and document_id are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetDocumentChunksOutput{}, MapError(err)
	}
	chunks, err := h.GetDocumentChunks(in.DocumentID)
	if err != nil {
		return nil, GetDocumentChunksOutput{}, MapError(err)
	}
	out := make([]ChunkOutput, len(chunks))
	for i, c := range chunks {
		out[i] = toChunkOutput(c)
	}
	return nil, GetDocumentChunksOutput{Chunks: out}, nil
}

// GetSourceContextOutput is the output schema for get_source_context: the
// requested chunk plus its immediate neighbors, for reading a passage
// without losing surrounding text.
type GetSourceContextOutput struct {
	Before *ChunkOutput `json:"before,omitempty"`
	Chunk  ChunkOutput  `json:"chunk"`
	After  *ChunkOutput `json:"after,omitempty"`
}

func (s *Server) handleGetSourceContext(ctx context.Context, _ *mcp.CallToolRequest, in ChunkIDInput) (*mcp.CallToolResult, GetSourceContextOutput, error) {
	if in.CaseID == "" || in.ChunkID == "" {
		return nil, GetSourceContextOutput{}, NewInvalidParamsError("case_id and chunk_id are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetSourceContextOutput{}, MapError(err)
	}
	c, ok, err := h.GetChunk(in.ChunkID)
	if err != nil {
		return nil, GetSourceContextOutput{}, MapError(err)
	}
	if !ok {
		return nil, GetSourceContextOutput{}, MapError(chunkNotFoundError(in.ChunkID))
	}

	out := GetSourceContextOutput{Chunk: toChunkOutput(c)}
	if prev, ok, err := h.GetChunkBySequence(c.DocumentID, c.Sequence-1); err == nil && ok {
		o := toChunkOutput(prev)
		out.Before = &o
	}
	if next, ok, err := h.GetChunkBySequence(c.DocumentID, c.Sequence+1); err == nil && ok {
		o := toChunkOutput(next)
		out.After = &o
	}
	return nil, out, nil
}
