package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Offline_WritesStaticBackendConfig(t *testing.T) {
	dataDir := t.TempDir()

	out, err := execRoot(t, dataDir, "setup", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "offline mode")

	data, err := os.ReadFile(filepath.Join(dataDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: static")
}

func TestSetup_Check_ReportsStaticBackendReady(t *testing.T) {
	dataDir := t.TempDir()

	out, err := execRoot(t, dataDir, "setup", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "ready")

	_, statErr := os.Stat(filepath.Join(dataDir, "config.yaml"))
	assert.True(t, os.IsNotExist(statErr), "--check must not write config.yaml")
}
