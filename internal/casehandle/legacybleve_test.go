package casehandle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/kv"
)

type legacyBleveDoc struct {
	Content string `json:"content"`
}

func writeLegacyBleveIndex(t *testing.T, caseDir string, docs map[string]string) {
	t.Helper()
	idx, err := bleve.New(filepath.Join(caseDir, legacyBleveDirName), bleve.NewIndexMapping())
	require.NoError(t, err)
	for id, content := range docs {
		require.NoError(t, idx.Index(id, legacyBleveDoc{Content: content}))
	}
	require.NoError(t, idx.Close())
}

func TestOpen_DrainsLegacyBleveIndexIntoNativeLexical(t *testing.T) {
	caseDir := filepath.Join(t.TempDir(), "case-legacy")
	require.NoError(t, os.MkdirAll(caseDir, 0o755))
	writeLegacyBleveIndex(t, caseDir, map[string]string{
		"chunk-1": "the plaintiff filed a motion to dismiss",
		"chunk-2": "defendant answered the complaint",
	})

	h, err := Open(caseDir, kv.DefaultTuning())
	require.NoError(t, err)
	defer func() { _ = h.Close() }()

	results, err := h.SearchBM25("motion to dismiss", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "chunk-1", results[0].ChunkID)

	_, statErr := os.Stat(filepath.Join(caseDir, legacyBleveDirName))
	assert.True(t, os.IsNotExist(statErr), "legacy bleve directory should be renamed away")
	_, statErr = os.Stat(filepath.Join(caseDir, legacyBleveDirName+".migrated"))
	assert.NoError(t, statErr, "legacy bleve directory should survive renamed as .migrated")
}

func TestOpen_RefusesWhenNativeAndLegacyIndexesBothExist(t *testing.T) {
	caseDir := filepath.Join(t.TempDir(), "case-conflict")
	require.NoError(t, os.MkdirAll(caseDir, 0o755))

	h, err := Open(caseDir, kv.DefaultTuning())
	require.NoError(t, err)
	require.NoError(t, h.IndexChunkBM25("chunk-1", "already indexed natively"))
	require.NoError(t, h.Close())

	writeLegacyBleveIndex(t, caseDir, map[string]string{"chunk-2": "legacy content"})

	_, err = Open(caseDir, kv.DefaultTuning())
	require.Error(t, err)
}

func TestOpen_NoLegacyBleveDirectoryIsANoOp(t *testing.T) {
	h := openTestHandle(t)
	results, err := h.SearchBM25("anything", 10)
	var ce *caseerrors.CaseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, caseerrors.ErrCodeBm25IndexEmpty, ce.Code)
	assert.Empty(t, results)
}
