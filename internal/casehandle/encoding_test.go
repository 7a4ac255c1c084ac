package casehandle

import (
	"testing"

	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeDocument_RoundTrips(t *testing.T) {
	doc := &Document{
		ID:               "doc-1",
		DisplayName:      "Complaint.pdf",
		SourceFile:       "/cases/abc/originals/Complaint.pdf",
		Type:             DocTypePDF,
		PageCount:        12,
		ChunkCount:       40,
		IngestedAt:       1700000000,
		UpdatedAt:        1700000500,
		ContentHash:      [32]byte{1, 2, 3, 4},
		ExtractionMethod: provenance.ExtractionNative,
		Embedders:        []string{"dense", "sparse"},
		EntityCount:      7,
		ReferenceCount:   3,
		CitationCount:    5,
	}

	raw := EncodeDocument(doc)
	got, err := DecodeDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestEncodeDecodeDocument_EmptyEmbedders(t *testing.T) {
	doc := &Document{ID: "doc-2", Type: DocTypeText}
	raw := EncodeDocument(doc)
	got, err := DecodeDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Empty(t, got.Embedders)
}
