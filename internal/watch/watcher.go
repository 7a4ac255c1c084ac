package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
)

const (
	defaultDebounceMS = 2000
	scheduleTickRate  = 60 * time.Second
)

// CaseOpener resolves a watch's case_id to an open Handle and the embed
// engine to use for it, mirroring how internal/registry and internal/embed
// are wired together above this package.
type CaseOpener func(caseID string) (*casehandle.Handle, embed.Engine, error)

// Runner drives every watch registered in a Registry: on startup it
// subscribes each enabled OnChange watch's folder to fsnotify, debounces incoming
// events per spec.md §4.K (default 2s window, configurable via
// config.WatchConfig), and syncs immediately after the window for
// OnChange watches. A single background ticker at 60s granularity checks
// Interval/Daily schedules independently of any filesystem activity.
type Runner struct {
	registry *Registry
	opener   CaseOpener
	chunkCfg config.ChunkingConfig
	extract  Extractor
	debounce time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	watchDirs map[string]string // directory path -> watch id, for event routing
	stopped   bool
}

// NewRunner builds a Runner. extract supplies the text-extraction step
// (internal/extract's concrete implementation); opener resolves a watch's
// case id to a live handle + embedding engine; watchCfg.DebounceMS sets
// the coalescing window (0 defaults to 2000ms).
func NewRunner(registry *Registry, opener CaseOpener, chunkCfg config.ChunkingConfig, watchCfg config.WatchConfig, extract Extractor) *Runner {
	ms := watchCfg.DebounceMS
	if ms <= 0 {
		ms = defaultDebounceMS
	}
	return &Runner{
		registry:  registry,
		opener:    opener,
		chunkCfg:  chunkCfg,
		extract:   extract,
		debounce:  time.Duration(ms) * time.Millisecond,
		watchDirs: make(map[string]string),
	}
}

// Run subscribes every enabled OnChange watch to filesystem notifications and blocks
// until ctx is cancelled or Stop is called, triggering debounced syncs for
// OnChange watches and ticker-driven syncs for Interval/Daily watches.
func (r *Runner) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.fsWatcher = fsw
	r.debouncer = NewDebouncer(r.debounce, r.triggerSync)
	for _, w := range r.registry.List() {
		if w.Enabled && w.Schedule == ScheduleOnChange {
			r.subscribeLocked(w)
		}
	}
	r.mu.Unlock()

	ticker := time.NewTicker(scheduleTickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = r.Stop()
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			r.handleFsEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch: fsnotify error", "error", err)
		case <-ticker.C:
			r.checkSchedules()
		}
	}
}

// Stop releases the fsnotify watcher and debouncer. Safe to call multiple
// times.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	r.stopped = true
	if r.debouncer != nil {
		r.debouncer.Stop()
	}
	if r.fsWatcher != nil {
		return r.fsWatcher.Close()
	}
	return nil
}

// subscribeLocked adds w.Folder (recursively, if configured) to the
// fsnotify watcher. Caller must hold r.mu.
func (r *Runner) subscribeLocked(w *Watch) {
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if !w.Recursive && path != w.Folder {
			return filepath.SkipDir
		}
		if addErr := r.fsWatcher.Add(path); addErr != nil {
			slog.Warn("watch: failed to add directory", "path", path, "error", addErr)
			return nil
		}
		r.watchDirs[path] = w.ID
		return nil
	}
	if err := filepath.WalkDir(w.Folder, walkFn); err != nil {
		slog.Warn("watch: failed to subscribe folder", "folder", w.Folder, "error", err)
	}
}

// handleFsEvent routes an fsnotify event to the watch owning its directory
// and debounces a sync trigger for it.
func (r *Runner) handleFsEvent(event fsnotify.Event) {
	dir := filepath.Dir(event.Name)
	r.mu.Lock()
	watchID, ok := r.watchDirs[dir]
	debouncer := r.debouncer
	r.mu.Unlock()
	if !ok || debouncer == nil {
		return
	}
	debouncer.Notify(watchID)
}

// checkSchedules runs a sync for every Interval/Daily watch whose schedule
// is due.
func (r *Runner) checkSchedules() {
	for _, w := range r.registry.DueSchedules(time.Now()) {
		r.triggerSync(w.ID)
	}
}

// triggerSync runs one watch's sync and records its completion time.
func (r *Runner) triggerSync(watchID string) {
	w, ok := r.registry.Get(watchID)
	if !ok || !w.Enabled {
		return
	}
	h, engine, err := r.opener(w.CaseID)
	if err != nil {
		slog.Warn("watch: failed to open case for sync", "case_id", w.CaseID, "error", err)
		return
	}
	result, err := Sync(context.Background(), h, engine, r.chunkCfg, w, r.extract, false)
	if err != nil {
		slog.Warn("watch: sync failed", "watch_id", watchID, "error", err)
		return
	}
	for _, entry := range result.Plan {
		if entry.Err != nil {
			slog.Warn("watch: sync entry failed", "path", entry.Path, "action", entry.Action, "error", entry.Err)
		}
	}
	if err := r.registry.MarkSynced(watchID, time.Now().Unix()); err != nil {
		slog.Warn("watch: failed to record sync completion", "watch_id", watchID, "error", err)
	}
}
