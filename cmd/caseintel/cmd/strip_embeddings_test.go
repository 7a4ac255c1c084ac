package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleComplaintText = "Judge Smith presided over the hearing. The panel in Smith v. Jones, 123 F.3d 456 (9th Cir. 1999), held that the claim survives a motion to dismiss."

func TestStripEmbeddings_RequiresCaseAndEmbedder(t *testing.T) {
	dataDir := t.TempDir()

	_, err := execRoot(t, dataDir, "strip-embeddings")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestStripEmbeddings_RejectsUnknownEmbedder(t *testing.T) {
	dataDir := t.TempDir()
	caseID := seedCase(t, dataDir, sampleComplaintText)

	_, err := execRoot(t, dataDir, "strip-embeddings", "--case", caseID, "--embedder", "bogus")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestStripEmbeddings_ClearsDenseSlotFromIngestedChunks(t *testing.T) {
	dataDir := t.TempDir()
	caseID := seedCase(t, dataDir, sampleComplaintText)

	out, err := execRoot(t, dataDir, "strip-embeddings", "--case", caseID, "--embedder", "dense")
	require.NoError(t, err)
	assert.Contains(t, out, "stripped dense embeddings")
}
