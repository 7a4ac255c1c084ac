package casehandle

import (
	"path/filepath"
	"testing"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/legalcase/caseintel/internal/legalindex"
	"github.com/legalcase/caseintel/internal/lexical"
	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/stretchr/testify/require"
)

func openTestHandle(t *testing.T) *Handle {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "case-1")
	h, err := Open(dir, kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func sampleChunk(id, docID string, seq int, text string) *provenance.Chunk {
	return &provenance.Chunk{
		ID:         id,
		DocumentID: docID,
		Sequence:   seq,
		Text:       text,
		Provenance: provenance.Provenance{DocumentID: docID, Page: 1},
	}
}

func TestOpen_WritesCurrentSchemaVersionOnFreshCase(t *testing.T) {
	h := openTestHandle(t)
	raw, ok, err := h.store.Get("metadata", "schema_version")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, raw, 8)
}

func TestDocument_StoreGetRoundTrips(t *testing.T) {
	h := openTestHandle(t)
	doc := &Document{ID: "doc-1", DisplayName: "Complaint.pdf", Type: DocTypePDF}
	require.NoError(t, h.StoreDocument(doc))

	got, ok, err := h.GetDocument("doc-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, doc.DisplayName, got.DisplayName)
}

func TestListDocuments_ReturnsAllStored(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.StoreDocument(&Document{ID: "doc-1", Type: DocTypeText}))
	require.NoError(t, h.StoreDocument(&Document{ID: "doc-2", Type: DocTypePDF}))

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestChunk_StoreIndexesByDocumentInSequenceOrder(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.StoreChunk(sampleChunk("c3", "doc-1", 2, "third")))
	require.NoError(t, h.StoreChunk(sampleChunk("c1", "doc-1", 0, "first")))
	require.NoError(t, h.StoreChunk(sampleChunk("c2", "doc-1", 1, "second")))

	chunks, err := h.GetDocumentChunks("doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	require.Equal(t, []string{"first", "second", "third"}, []string{chunks[0].Text, chunks[1].Text, chunks[2].Text})
}

func TestEmbedding_StoreGetDelete(t *testing.T) {
	h := openTestHandle(t)
	rec := &provenance.ChunkEmbeddingRecord{ChunkID: "c1", Text: "hello", Dense: []float32{0.1, 0.2}}
	require.NoError(t, h.StoreEmbedding(rec))

	got, ok, err := h.GetEmbedding("c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec.Dense, got.Dense)

	require.NoError(t, h.DeleteEmbedding("c1"))
	_, ok, err = h.GetEmbedding("c1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEntityMention_UpdatesForwardAndReverseIndex(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.StoreEntityMention(&legalindex.EntityMention{EntityCanonical: "jane-doe", ChunkID: "c1"}))
	require.NoError(t, h.StoreEntityMention(&legalindex.EntityMention{EntityCanonical: "jane-doe", ChunkID: "c2"}))

	mentions, err := h.chunkEntityMentions("c1")
	require.NoError(t, err)
	require.Len(t, mentions, 1)

	chunks, err := h.entityChunks("jane-doe")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, chunks)
}

func TestCitationMention_UpdatesForwardAndReverseIndex(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.StoreCitationMention(&legalindex.CitationMention{CitationCanonical: "42-usc-1983", ChunkID: "c1"}))

	mentions, err := h.chunkCitationMentions("c1")
	require.NoError(t, err)
	require.Len(t, mentions, 1)

	chunks, err := h.citationChunks("42-usc-1983")
	require.NoError(t, err)
	require.Equal(t, []string{"c1"}, chunks)
}

func TestDeleteDocument_CascadesAllIndexes(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.StoreDocument(&Document{ID: "doc-1", Type: DocTypeText, SourceFile: ""}))
	require.NoError(t, h.StoreChunk(sampleChunk("c1", "doc-1", 0, "the defendant breached the agreement")))
	require.NoError(t, h.StoreChunk(sampleChunk("c2", "doc-1", 1, "plaintiff alleges damages")))
	require.NoError(t, h.StoreEmbedding(&provenance.ChunkEmbeddingRecord{ChunkID: "c1", Dense: []float32{0.1}}))
	require.NoError(t, h.StoreEntityMention(&legalindex.EntityMention{EntityCanonical: "jane-doe", ChunkID: "c1"}))
	require.NoError(t, h.StoreCitationMention(&legalindex.CitationMention{CitationCanonical: "42-usc-1983", ChunkID: "c1"}))
	require.NoError(t, h.StoreChunkRefs("c1", []string{"exhibit-a"}))
	require.NoError(t, lexical.AddChunk(h.store, "c1", "the defendant breached the agreement"))
	require.NoError(t, lexical.AddChunk(h.store, "c2", "plaintiff alleges damages"))

	require.NoError(t, h.DeleteDocument("doc-1"))

	_, ok, err := h.GetDocument("doc-1")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = h.GetChunk("c1")
	require.NoError(t, err)
	require.False(t, ok)

	chunks, err := h.GetDocumentChunks("doc-1")
	require.NoError(t, err)
	require.Empty(t, chunks)

	_, ok, err = h.GetEmbedding("c1")
	require.NoError(t, err)
	require.False(t, ok)

	entityChunks, err := h.entityChunks("jane-doe")
	require.NoError(t, err)
	require.Empty(t, entityChunks)

	citeChunks, err := h.citationChunks("42-usc-1983")
	require.NoError(t, err)
	require.Empty(t, citeChunks)

	refs, err := h.GetChunkRefs("c1")
	require.NoError(t, err)
	require.Empty(t, refs)

	results, err := lexical.Search(h.store, "damages", 10)
	var ce *caseerrors.CaseError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, caseerrors.ErrCodeBm25IndexEmpty, ce.Code)
	require.Empty(t, results)
}

func TestDeleteDocument_WithNoChunksIsNotError(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.StoreDocument(&Document{ID: "doc-empty", Type: DocTypeText}))
	require.NoError(t, h.DeleteDocument("doc-empty"))
}

func TestCompactAll_RunsOverEveryColumnFamily(t *testing.T) {
	h := openTestHandle(t)
	require.NoError(t, h.CompactAll())
}

func TestDestroy_RemovesCaseDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "case-destroy")
	h, err := Open(dir, kv.DefaultTuning())
	require.NoError(t, err)
	require.NoError(t, h.Destroy())

	_, err = Open(dir, kv.DefaultTuning())
	require.NoError(t, err) // directory recreated fresh, no corruption carried over
}
