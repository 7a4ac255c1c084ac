package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitch_WithExplicitCaseID_ChangesActiveCase(t *testing.T) {
	dataDir := t.TempDir()
	caseID := seedCase(t, dataDir, sampleComplaintText)

	out, err := execRoot(t, dataDir, "switch", caseID)
	require.NoError(t, err)
	assert.Contains(t, out, caseID)
}

func TestSwitch_UnknownCaseIDFails(t *testing.T) {
	dataDir := t.TempDir()

	_, err := execRoot(t, dataDir, "switch", "no-such-case")
	assert.Error(t, err)
}

func TestSwitch_NoArgNonInteractive_RequiresCaseID(t *testing.T) {
	dataDir := t.TempDir()
	seedCase(t, dataDir, sampleComplaintText)

	_, err := execRoot(t, dataDir, "switch")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}
