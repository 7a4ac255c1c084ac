package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/ingest"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSyncHandle(t *testing.T) *casehandle.Handle {
	t.Helper()
	h, err := casehandle.Open(filepath.Join(t.TempDir(), "case-1"), kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func testSyncChunkCfg() config.ChunkingConfig {
	return config.ChunkingConfig{TargetChars: 2000, OverlapChars: 0, MinChars: 10, MaxChars: 2200}
}

// fileExtractor is a trivial Extractor reading the raw bytes as plain text,
// standing in for internal/extract in these tests.
func fileExtractor(path string) (ingest.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Request{}, err
	}
	return ingest.Request{
		DisplayName: filepath.Base(path),
		RawBytes:    data,
		Text:        string(data),
		Type:        casehandle.DocTypeText,
		PageCount:   1,
	}, nil
}

func TestSync_IngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("the settlement agreement governs this dispute"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir, Recursive: false}

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, ActionIngest, result.Plan[0].Action)
	assert.NoError(t, result.Plan[0].Err)

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), docs[0].SourceFile)
}

func TestSync_SkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("the settlement agreement governs this dispute"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir}

	_, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, ActionSkip, result.Plan[0].Action)

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSync_ReindexesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("the settlement agreement governs this dispute"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir}

	_, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("the settlement agreement was terminated last year"), 0o644))

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, ActionReindex, result.Plan[0].Action)

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.txt", docs[0].DisplayName)
}

func TestSync_DeletesDocumentsWhoseFileVanished(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("the settlement agreement governs this dispute"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir, AutoRemoveDeleted: true}

	_, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, ActionDelete, result.Plan[0].Action)

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSync_WarnsInsteadOfDeletingWhenAutoRemoveOff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("the settlement agreement governs this dispute"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir, AutoRemoveDeleted: false}

	_, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, ActionWarn, result.Plan[0].Action)

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	assert.Len(t, docs, 1, "document should survive when auto_remove_deleted is false")
}

func TestSync_DryRunExecutesNothing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("the settlement agreement governs this dispute"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir}

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, true)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, ActionIngest, result.Plan[0].Action)
	assert.True(t, result.DryRun)

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	assert.Empty(t, docs, "dry run must not execute the plan")
}

func TestSync_ExtensionFilterExcludesOtherTypes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("the settlement agreement governs this dispute"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("unrelated log output"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir, ExtensionFilter: []string{".txt"}}

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), result.Plan[0].Path)
}

func TestSync_NonRecursiveSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("top level document about the settlement agreement"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("nested document about the settlement agreement"), 0o644))

	h := testSyncHandle(t)
	engine := embed.NewStaticEngine(0)
	w := &Watch{Folder: dir, Recursive: false}

	result, err := Sync(context.Background(), h, engine, testSyncChunkCfg(), w, fileExtractor, false)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), result.Plan[0].Path)
}
