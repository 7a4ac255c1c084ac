package lifecycle

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/ingest"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunkCfg() config.ChunkingConfig {
	return config.ChunkingConfig{TargetChars: 200, OverlapChars: 20, MinChars: 50, MaxChars: 300}
}

func TestStripEmbeddings_ClearsDenseSlot(t *testing.T) {
	h, err := casehandle.Open(filepath.Join(t.TempDir(), "case-1"), kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	engine := embed.NewStaticEngine(0)
	req := ingest.Request{
		DisplayName:      "Motion.txt",
		RawBytes:         []byte("motion to compel discovery responses"),
		Text:             "motion to compel discovery responses",
		Type:             casehandle.DocTypeText,
		PageCount:        1,
		ExtractionMethod: provenance.ExtractionNative,
		OCRConfidence:    -1,
	}
	result, err := ingest.IngestDocument(context.Background(), h, engine, testChunkCfg(), req)
	require.NoError(t, err)
	require.Equal(t, 1, result.ChunkCount)

	chunks, err := h.GetDocumentChunks(result.Document.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	rec, ok, err := h.GetEmbedding(chunks[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, rec.Dense)

	stripped, err := StripEmbeddings(h, embed.SlotDense)
	require.NoError(t, err)
	assert.Equal(t, 1, stripped)

	_, ok, err = h.GetEmbedding(chunks[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStripEmbeddings_LeavesOtherSlotsWhenPresent(t *testing.T) {
	h, err := casehandle.Open(filepath.Join(t.TempDir(), "case-1"), kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	rec := &provenance.ChunkEmbeddingRecord{
		ChunkID: "chunk-1",
		Text:    "text",
		Dense:   []float32{1, 0, 0},
		Sparse:  &provenance.SparseVector{Indices: []uint32{1}, Values: []float32{0.5}},
	}
	require.NoError(t, h.StoreEmbedding(rec))

	stripped, err := StripEmbeddings(h, embed.SlotDense)
	require.NoError(t, err)
	assert.Equal(t, 1, stripped)

	got, ok, err := h.GetEmbedding("chunk-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Dense)
	assert.NotNil(t, got.Sparse)
}

func TestStripEmbeddings_NoMatchingSlotIsANoop(t *testing.T) {
	h, err := casehandle.Open(filepath.Join(t.TempDir(), "case-1"), kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	rec := &provenance.ChunkEmbeddingRecord{
		ChunkID: "chunk-1",
		Text:    "text",
		Sparse:  &provenance.SparseVector{Indices: []uint32{1}, Values: []float32{0.5}},
	}
	require.NoError(t, h.StoreEmbedding(rec))

	stripped, err := StripEmbeddings(h, embed.SlotDense)
	require.NoError(t, err)
	assert.Equal(t, 0, stripped)
}
