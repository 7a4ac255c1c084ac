package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGetStorageSummary_ReportsNonzeroBytesAfterIngestion(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	mustIngest(t, s, c.ID, path)

	_, out, err := s.handleGetStorageSummary(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	assert.Equal(t, c.ID, out.CaseID)
	assert.Greater(t, out.Bytes, int64(0))
	assert.Equal(t, 0, out.DaysSinceUse, "ingestion just recorded activity, so staleness should read zero days")
	assert.False(t, out.Stale)
}

func TestHandleCompactCase_Succeeds(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	path := writeTestFile(t, "complaint.txt", sampleComplaintText)
	mustIngest(t, s, c.ID, path)

	_, out, err := s.handleCompactCase(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	assert.True(t, out.Compacted)
}
