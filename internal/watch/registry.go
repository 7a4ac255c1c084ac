package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// Registry owns the watches.json file under the data root. Per spec.md
// §4.K the watch registry is a human-readable JSON file, not a store
// column family, so it can be inspected or hand-edited directly; Registry
// serializes all access with a single mutex since writers are rare
// (watch_folder/unwatch_folder/set_sync_schedule calls) and readers are
// cheap (an in-memory slice).
type Registry struct {
	path string

	mu      sync.Mutex
	watches []*Watch
}

// Open loads watches.json under dataDir, creating an empty registry file
// if none exists yet.
func Open(dataDir string) (*Registry, error) {
	r := &Registry{path: filepath.Join(dataDir, "watches.json")}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.watches = nil
		return nil
	}
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to read watch registry", err)
	}
	if len(data) == 0 {
		r.watches = nil
		return nil
	}
	var watches []*Watch
	if err := json.Unmarshal(data, &watches); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to parse watch registry", err)
	}
	r.watches = watches
	return nil
}

// save writes the registry back to disk. Caller must hold r.mu.
func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.watches, "", "  ")
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to marshal watch registry", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to create data directory", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to write watch registry", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to commit watch registry", err)
	}
	return nil
}

// Add registers a new watch and assigns it an id.
func (r *Registry) Add(w Watch) (*Watch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w.ID = uuid.NewString()
	if w.Schedule == "" {
		w.Schedule = ScheduleOnChange
	}
	w.Enabled = true
	copyW := w
	r.watches = append(r.watches, &copyW)
	if err := r.save(); err != nil {
		r.watches = r.watches[:len(r.watches)-1]
		return nil, err
	}
	return &copyW, nil
}

// Remove deletes the watch with the given id. Returns false if no such
// watch exists.
func (r *Registry) Remove(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, w := range r.watches {
		if w.ID == id {
			removed := make([]*Watch, 0, len(r.watches)-1)
			removed = append(removed, r.watches[:i]...)
			removed = append(removed, r.watches[i+1:]...)
			prev := r.watches
			r.watches = removed
			if err := r.save(); err != nil {
				r.watches = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// RemoveByCase removes every watch registered against caseID, used when a
// case is deleted so no orphaned watch keeps firing against it.
func (r *Registry) RemoveByCase(caseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]*Watch, 0, len(r.watches))
	for _, w := range r.watches {
		if w.CaseID != caseID {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(r.watches) {
		return nil
	}
	prev := r.watches
	r.watches = kept
	if err := r.save(); err != nil {
		r.watches = prev
		return err
	}
	return nil
}

// List returns a snapshot of all registered watches.
func (r *Registry) List() []*Watch {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Watch, len(r.watches))
	copy(out, r.watches)
	return out
}

// Get returns the watch with the given id, if any.
func (r *Registry) Get(id string) (*Watch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.watches {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// SetSchedule updates an existing watch's schedule fields.
func (r *Registry) SetSchedule(id string, schedule ScheduleKind, intervalSeconds int, dailyAt string) (*Watch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.watches {
		if w.ID != id {
			continue
		}
		prev := *w
		w.Schedule = schedule
		w.IntervalSeconds = intervalSeconds
		w.DailyAt = dailyAt
		if err := r.save(); err != nil {
			*w = prev
			return nil, err
		}
		return w, nil
	}
	return nil, caseerrors.New(caseerrors.ErrCodeWatchNotFound, "watch not found", nil).WithDetail("watch_id", id)
}

// MarkSynced records that id's watch completed a sync at the given time.
func (r *Registry) MarkSynced(id string, when int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.watches {
		if w.ID == id {
			w.LastSyncAt = when
			return r.save()
		}
	}
	return nil
}

// DueSchedules returns the enabled watches whose Interval/Daily schedule
// is due at now. OnChange/Manual watches are never returned here.
func (r *Registry) DueSchedules(now time.Time) []*Watch {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []*Watch
	for _, w := range r.watches {
		if w.dueAt(now) {
			due = append(due, w)
		}
	}
	return due
}
