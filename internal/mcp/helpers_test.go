package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/extract"
	"github.com/legalcase/caseintel/internal/registry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg, err := registry.New(t.TempDir(), registry.Limits{MaxOpenCaseHandles: 4, MaxCasesTotal: 50, MaxDocumentsPerCase: 1000})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	// The static engine is the deterministic, no-model-weights fallback a
	// fresh install runs with (embed.NewEngine's default backend), so tests
	// exercise the same ConfiguredSlots()-dependent code paths production
	// does instead of special-casing a nil engine.
	engine := embed.NewStaticEngine(embed.StaticDimensions)
	t.Cleanup(func() { _ = engine.Close() })

	srv, err := NewServer(reg, nil, extract.NewRegistry(), engine, config.NewConfig())
	require.NoError(t, err)
	require.NotNil(t, srv)
	return srv
}

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func mustCreateCase(t *testing.T, s *Server, name string) CaseOutput {
	t.Helper()
	_, out, err := s.handleCreateCase(context.Background(), nil, CreateCaseInput{Name: name})
	require.NoError(t, err)
	return out.Case
}

func writeFileIn(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func mustIngest(t *testing.T, s *Server, caseID, path string) IngestResultOutput {
	t.Helper()
	_, out, err := s.handleIngestDocument(context.Background(), nil, IngestDocumentInput{CaseID: caseID, Path: path})
	require.NoError(t, err)
	return out
}
