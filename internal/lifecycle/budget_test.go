package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSize_SumsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("12345"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("1234567890"), 0o644))

	size, err := DirSize(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 15, size)
}

func TestDirSize_SkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("0123456789"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.txt")))

	size, err := DirSize(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)
}

func TestCheckStartupBudget_DoesNotErrorBelowThreshold(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("small"), 0o644))
	require.NoError(t, CheckStartupBudget(dir, 10))
}

type fakeActivity struct {
	lastSearch, lastIngest int64
	hasSearch, hasIngest   bool
}

func (f fakeActivity) LastSearchAt() (int64, bool, error) { return f.lastSearch, f.hasSearch, nil }
func (f fakeActivity) LastIngestAt() (int64, bool, error) { return f.lastIngest, f.hasIngest, nil }

func TestSummarize_NeverUsedHasNoStaleness(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	s, err := Summarize("case-1", dir, fakeActivity{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, -1, s.DaysSinceUse)
	assert.False(t, s.Stale)
	assert.EqualValues(t, 1, s.Bytes)
}

func TestSummarize_RecentActivityIsNotStale(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	a := fakeActivity{lastSearch: now.Add(-24 * time.Hour).Unix(), hasSearch: true}

	s, err := Summarize("case-1", dir, a, now)
	require.NoError(t, err)
	assert.Equal(t, 1, s.DaysSinceUse)
	assert.False(t, s.Stale)
}

func TestSummarize_OldActivityIsStale(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	a := fakeActivity{lastIngest: now.Add(-200 * 24 * time.Hour).Unix(), hasIngest: true}

	s, err := Summarize("case-1", dir, a, now)
	require.NoError(t, err)
	assert.Equal(t, 200, s.DaysSinceUse)
	assert.True(t, s.Stale)
}

func TestSummarize_UsesMostRecentOfSearchAndIngest(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	a := fakeActivity{
		lastSearch: now.Add(-300 * 24 * time.Hour).Unix(), hasSearch: true,
		lastIngest: now.Add(-5 * 24 * time.Hour).Unix(), hasIngest: true,
	}

	s, err := Summarize("case-1", dir, a, now)
	require.NoError(t, err)
	assert.Equal(t, 5, s.DaysSinceUse)
	assert.False(t, s.Stale)
}
