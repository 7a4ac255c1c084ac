package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/extract"
	"github.com/legalcase/caseintel/internal/ingest"
	"github.com/legalcase/caseintel/internal/lifecycle"
	"github.com/legalcase/caseintel/internal/registry"
)

// execRoot runs the root command with args against a fresh *cobra.Command
// tree and returns combined stdout and the returned error. dataDir is
// injected via --data-dir so tests never touch the real ~/.caseintel.
func execRoot(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := root.Execute()
	return buf.String(), err
}

// seedCase creates a case directly against the registry under dataDir and
// ingests one document into it using the static embedder, returning the
// case id.
func seedCase(t *testing.T, dataDir, text string) string {
	t.Helper()

	reg, err := registry.New(dataDir, registry.Limits{MaxOpenCaseHandles: 4, MaxCasesTotal: 50, MaxDocumentsPerCase: 1000})
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()

	c, err := reg.Create(registry.CreateParams{Name: "Smith v. Jones"})
	require.NoError(t, err)

	h, err := reg.OpenHandle(c.ID)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "complaint.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	extractReg := extract.NewRegistry()
	req, err := extractReg.BuildRequest(path, "complaint.txt")
	require.NoError(t, err)

	engine := embed.NewStaticEngine(embed.StaticDimensions)
	defer func() { _ = engine.Close() }()

	_, err = ingest.IngestDocument(context.Background(), h, engine, config.NewConfig().Chunking, req)
	require.NoError(t, err)

	return c.ID
}

// archiveCase transitions caseID to Archived directly against the registry
// under dataDir.
func archiveCase(t *testing.T, dataDir, caseID string) {
	t.Helper()

	reg, err := registry.New(dataDir, registry.Limits{MaxOpenCaseHandles: 4, MaxCasesTotal: 50, MaxDocumentsPerCase: 1000})
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()

	h, err := reg.OpenHandle(caseID)
	require.NoError(t, err)

	_, err = lifecycle.Archive(reg, h, caseID)
	require.NoError(t, err)
}
