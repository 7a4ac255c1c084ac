package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleListEntities_ReturnsExtractedEntity(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	mustIngest(t, s, c.ID, path)

	_, out, err := s.handleListEntities(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	require.NotEmpty(t, out.Entities)
	found := false
	for _, e := range out.Entities {
		if e.Type == "Judge" {
			found = true
		}
	}
	assert.True(t, found, "expected a Judge entity extracted from %q", sampleComplaintText)
}

func TestHandleGetEntityMentions_UnknownCanonicalReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")

	_, _, err := s.handleGetEntityMentions(context.Background(), nil, EntityMentionInput{CaseID: c.ID, Canonical: "nobody"})

	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, mcpErr.Code)
}

func TestHandleListCitations_ReturnsExtractedCitation(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	mustIngest(t, s, c.ID, path)

	_, out, err := s.handleListCitations(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	require.Len(t, out.Citations, 1)
	assert.Equal(t, "CaseLaw", out.Citations[0].Type)
}

func TestHandleGetCitationReferences_ReturnsTheMention(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	mustIngest(t, s, c.ID, path)

	_, list, err := s.handleListCitations(context.Background(), nil, CaseIDInput{CaseID: c.ID})
	require.NoError(t, err)
	require.NotEmpty(t, list.Citations)

	_, out, err := s.handleGetCitationReferences(context.Background(), nil, CitationReferenceInput{CaseID: c.ID, Canonical: list.Citations[0].Canonical})

	require.NoError(t, err)
	assert.NotEmpty(t, out.References)
}

func TestHandleGetCaseSummary_CountsIngestedDocument(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	mustIngest(t, s, c.ID, path)

	_, out, err := s.handleGetCaseSummary(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	assert.Equal(t, 1, out.DocumentCount)
	assert.Greater(t, out.ChunkCount, 0)
	assert.Greater(t, out.EntityCount, 0)
	assert.Greater(t, out.CitationCount, 0)
}

func TestHandleFindRelatedDocuments_RanksDocumentSharingAnEntity(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	pathA := writeTestFile(t, "a.txt", "Judge Smith presided over the hearing today.")
	docA := mustIngest(t, s, c.ID, pathA)

	dir := t.TempDir()
	pathB := writeFileIn(t, dir, "b.txt", "Judge Smith later issued a written opinion.")
	pathC := writeFileIn(t, dir, "c.txt", "No relevant names appear in this filing at all.")
	docB := mustIngest(t, s, c.ID, pathB)
	mustIngest(t, s, c.ID, pathC)

	_, out, err := s.handleFindRelatedDocuments(context.Background(), nil, FindRelatedDocumentsInput{CaseID: c.ID, DocumentID: docA.Document.ID})

	require.NoError(t, err)
	require.NotEmpty(t, out.Related)
	assert.Equal(t, docB.Document.ID, out.Related[0].Document.ID)
	assert.Greater(t, out.Related[0].SharedEntities, 0)
}

func TestHandleFindRelatedDocuments_EmbeddingSignalSurfacesDocumentWithNoSharedEntities(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	pathA := writeTestFile(t, "a.txt", "The parties stipulated to a briefing schedule for the pending motion.")
	docA := mustIngest(t, s, c.ID, pathA)

	dir := t.TempDir()
	pathB := writeFileIn(t, dir, "b.txt", "The parties stipulated to a briefing schedule for the pending motions.")
	pathC := writeFileIn(t, dir, "c.txt", "A completely unrelated filing about zoning permits and building codes.")
	docB := mustIngest(t, s, c.ID, pathB)
	mustIngest(t, s, c.ID, pathC)

	_, out, err := s.handleFindRelatedDocuments(context.Background(), nil, FindRelatedDocumentsInput{CaseID: c.ID, DocumentID: docA.Document.ID})

	require.NoError(t, err)
	require.NotEmpty(t, out.Related)
	assert.Equal(t, docB.Document.ID, out.Related[0].Document.ID, "near-identical wording should rank first via embedding-centroid similarity despite zero shared entities")
	assert.Equal(t, 0, out.Related[0].SharedEntities)
}
