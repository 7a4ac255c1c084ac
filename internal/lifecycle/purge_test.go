package lifecycle

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/legalcase/caseintel/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompactor struct{ calls int }

func (f *fakeCompactor) CompactAll() error { f.calls++; return nil }

func TestPurgeArchived_RequiresArchivedStatus(t *testing.T) {
	dir := t.TempDir()
	c := &registry.Case{ID: "case-1", Status: registry.StatusActive}
	reg := newFakeRegistry(c)

	_, err := PurgeArchived(reg, &fakeCompactor{}, dir, filepath.Join(t.TempDir(), "out.ctcase"), c, nil)
	assert.Error(t, err)
}

func TestPurgeArchived_WritesVerifiesAndTransitions(t *testing.T) {
	caseDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(caseDir, "case.db"), []byte("fake-db-bytes"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(caseDir, "originals"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(caseDir, "originals", "complaint.txt"), []byte("hello"), 0o644))

	output := filepath.Join(t.TempDir(), "case-1.ctcase")
	c := &registry.Case{
		ID:     "case-1",
		Status: registry.StatusArchived,
		Stats:  registry.Stats{DocumentCount: 1, ChunkCount: 3},
	}
	reg := newFakeRegistry(c)
	compactor := &fakeCompactor{}

	got, err := PurgeArchived(reg, compactor, caseDir, output, c, []string{"dense"})
	require.NoError(t, err)
	assert.Equal(t, registry.StatusPurged, got.Status)
	assert.Equal(t, output, got.ExportPath)
	assert.Equal(t, 1, compactor.calls)

	_, err = os.Stat(caseDir)
	assert.True(t, os.IsNotExist(err), "expanded case directory should be removed")

	zr, err := zip.OpenReader(output)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["case.db"])
	assert.True(t, names[filepath.ToSlash(filepath.Join("originals", "complaint.txt"))])
	assert.True(t, names["manifest.json"])

	for _, f := range zr.File {
		if f.Name != "manifest.json" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		var m manifest
		require.NoError(t, json.NewDecoder(rc).Decode(&m))
		rc.Close()
		assert.Equal(t, "case-1", m.CaseID)
		assert.Equal(t, []string{"dense"}, m.Embedders)
		assert.Equal(t, 1, m.Counts.Documents)
		assert.Equal(t, 3, m.Counts.Chunks)
	}
}
