package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_OnChangeWatchIngestsNewFile(t *testing.T) {
	folder := t.TempDir()
	dataDir := t.TempDir()

	registry, err := Open(dataDir)
	require.NoError(t, err)
	w, err := registry.Add(Watch{CaseID: "case-1", Folder: folder, Schedule: ScheduleOnChange})
	require.NoError(t, err)
	_ = w

	h, err := casehandle.Open(filepath.Join(dataDir, "case-1"), kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	engine := embed.NewStaticEngine(0)

	runner := NewRunner(registry, func(caseID string) (*casehandle.Handle, embed.Engine, error) {
		return h, engine, nil
	}, testSyncChunkCfg(), config.WatchConfig{DebounceMS: 50}, fileExtractor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()
	time.Sleep(100 * time.Millisecond) // let fsnotify finish subscribing

	require.NoError(t, os.WriteFile(filepath.Join(folder, "a.txt"),
		[]byte("the settlement agreement governs this dispute"), 0o644))

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		docs, err := h.ListDocuments()
		require.NoError(t, err)
		if len(docs) > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	docs, err := h.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.txt", docs[0].DisplayName)

	cancel()
	<-done
}
