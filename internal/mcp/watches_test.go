package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWatchFolder_RegistersAndListsWatch(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	dir := t.TempDir()

	_, out, err := s.handleWatchFolder(context.Background(), nil, WatchFolderInput{CaseID: c.ID, Folder: dir, Recursive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Watch.ID)
	assert.Equal(t, "OnChange", out.Watch.Schedule)

	_, list, err := s.handleListWatches(context.Background(), nil, ListWatchesInput{})
	require.NoError(t, err)
	assert.Len(t, list.Watches, 1)
}

func TestHandleSetSyncSchedule_ChangesSchedule(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	dir := t.TempDir()
	_, created, err := s.handleWatchFolder(context.Background(), nil, WatchFolderInput{CaseID: c.ID, Folder: dir})
	require.NoError(t, err)

	_, out, err := s.handleSetSyncSchedule(context.Background(), nil, SetSyncScheduleInput{
		WatchID:         created.Watch.ID,
		Schedule:        "Interval",
		IntervalSeconds: 3600,
	})

	require.NoError(t, err)
	assert.Equal(t, "Interval", out.Watch.Schedule)
	assert.Equal(t, 3600, out.Watch.IntervalSeconds)
}

func TestHandleUnwatchFolder_RemovesWatch(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	dir := t.TempDir()
	_, created, err := s.handleWatchFolder(context.Background(), nil, WatchFolderInput{CaseID: c.ID, Folder: dir})
	require.NoError(t, err)

	_, out, err := s.handleUnwatchFolder(context.Background(), nil, WatchIDInput{WatchID: created.Watch.ID})
	require.NoError(t, err)
	assert.True(t, out.Removed)

	_, list, err := s.handleListWatches(context.Background(), nil, ListWatchesInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Watches)
}

func TestHandleSyncFolder_DryRunPlansNewFileWithoutIngesting(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")
	dir := t.TempDir()
	writeFileIn(t, dir, "new.txt", "Judge Lee heard the motion.")

	_, created, err := s.handleWatchFolder(context.Background(), nil, WatchFolderInput{CaseID: c.ID, Folder: dir})
	require.NoError(t, err)

	_, out, err := s.handleSyncFolder(context.Background(), nil, SyncFolderInput{WatchID: created.Watch.ID, DryRun: true})
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	require.NotEmpty(t, out.Plan)

	_, docsOut, err := s.handleListDocuments(context.Background(), nil, CaseIDInput{CaseID: c.ID})
	require.NoError(t, err)
	assert.Empty(t, docsOut.Documents, "dry run must not ingest anything")
}
