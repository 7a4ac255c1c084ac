package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_HasTransportFlag(t *testing.T) {
	root := NewRootCmd()

	serveCmd, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)

	flag := serveCmd.Flags().Lookup("transport")
	assert.NotNil(t, flag, "serve should have --transport flag")
	assert.Equal(t, "", flag.DefValue)
}

// runServe must honor an already-cancelled context and return promptly
// rather than blocking on stdio, since cobra's own context cancellation
// (ctrl-c / SIGTERM) is the only way an operator can stop the server.
func TestRunServe_ReturnsPromptlyOnCancelledContext(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("CASEINTEL_DATA_DIR", dataDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- runServe(ctx, "stdio") }()

	select {
	case err := <-errCh:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not return within 5s of an already-cancelled context")
	}
}

func TestRunServe_RejectsUnknownTransport(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("CASEINTEL_DATA_DIR", dataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := runServe(ctx, "carrier-pigeon")
	require.Error(t, err)
}
