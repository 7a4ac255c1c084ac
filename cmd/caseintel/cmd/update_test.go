package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_NoCasesReportsNothingToDo(t *testing.T) {
	dataDir := t.TempDir()

	out, err := execRoot(t, dataDir, "update")
	require.NoError(t, err)
	assert.Contains(t, out, "no cases to update")
}

func TestUpdate_FreshCaseIsAlreadyUpToDate(t *testing.T) {
	dataDir := t.TempDir()
	caseID := seedCase(t, dataDir, sampleComplaintText)

	out, err := execRoot(t, dataDir, "update")
	require.NoError(t, err)
	assert.Contains(t, out, caseID)
	assert.Contains(t, out, "up to date")
}
