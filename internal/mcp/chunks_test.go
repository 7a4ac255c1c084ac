package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGetDocumentChunks_ReturnsChunksInSequenceOrder(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	ingested := mustIngest(t, s, c.ID, path)

	_, out, err := s.handleGetDocumentChunks(context.Background(), nil, GetDocumentInput{CaseID: c.ID, DocumentID: ingested.Document.ID})

	require.NoError(t, err)
	require.NotEmpty(t, out.Chunks)
	for i, ch := range out.Chunks {
		assert.Equal(t, i, ch.Sequence)
	}
}

func TestHandleGetChunk_NotFoundReturnsMappedError(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")

	_, _, err := s.handleGetChunk(context.Background(), nil, ChunkIDInput{CaseID: c.ID, ChunkID: "missing"})

	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, mcpErr.Code)
}

func TestHandleGetSourceContext_FirstChunkHasNoBefore(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	ingested := mustIngest(t, s, c.ID, path)

	_, chunksOut, err := s.handleGetDocumentChunks(context.Background(), nil, GetDocumentInput{CaseID: c.ID, DocumentID: ingested.Document.ID})
	require.NoError(t, err)
	require.NotEmpty(t, chunksOut.Chunks)
	firstChunkID := chunksOut.Chunks[0].ID

	_, out, err := s.handleGetSourceContext(context.Background(), nil, ChunkIDInput{CaseID: c.ID, ChunkID: firstChunkID})

	require.NoError(t, err)
	assert.Nil(t, out.Before)
	assert.Equal(t, firstChunkID, out.Chunk.ID)
}
