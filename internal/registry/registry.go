package registry

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/legalcase/caseintel/internal/casehandle"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/legalcase/caseintel/internal/schema"
)

// Limits bounds the registry's own create-time and pool-sizing behavior,
// independent of any one case's internal resource use. Mirrors
// config.TierConfig's field names so callers can pass it straight through.
type Limits struct {
	MaxOpenCaseHandles  int
	MaxCasesTotal       int
	MaxDocumentsPerCase int
}

// Registry owns the top-level cases/meta store plus an LRU-bounded pool
// of open per-case Handles, per spec.md §4.D. Only one Handle per case is
// ever open at a time; evicting a pool entry closes its Handle.
type Registry struct {
	store    *kv.Store
	casesDir string
	limits   Limits

	pool *lru.Cache[string, *casehandle.Handle]
}

// New opens (creating if absent) the registry store under dataDir/registry
// and the case-handle pool bounded by limits.MaxOpenCaseHandles.
func New(dataDir string, limits Limits) (*Registry, error) {
	store, err := kv.Open(filepath.Join(dataDir, "registry", "registry.db"), schema.RegistryColumnFamilies, kv.DefaultTuning())
	if err != nil {
		return nil, err
	}

	r := &Registry{store: store, casesDir: filepath.Join(dataDir, "cases"), limits: limits}

	pool, err := lru.NewWithEvict[string, *casehandle.Handle](limits.MaxOpenCaseHandles, func(_ string, h *casehandle.Handle) {
		_ = h.Close()
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating case handle pool: %w", err)
	}
	r.pool = pool
	return r, nil
}

// Close closes every pooled handle and the registry store itself.
func (r *Registry) Close() error {
	for _, id := range r.pool.Keys() {
		if h, ok := r.pool.Get(id); ok {
			_ = h.Close()
		}
	}
	r.pool.Purge()
	return r.store.Close()
}

// Count returns the number of cases currently registered.
func (r *Registry) Count() (int, error) {
	raw, err := r.store.PrefixIter("cases", "case:")
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// Create registers a new case, checking the MaxCasesTotal tier limit first
// per spec.md §4.D, and creates its on-disk directory.
func (r *Registry) Create(params CreateParams) (*Case, error) {
	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	if count >= r.limits.MaxCasesTotal {
		return nil, caseerrors.ResourceExhausted("cases_total", count, r.limits.MaxCasesTotal)
	}

	now := time.Now().Unix()
	c := &Case{
		ID:           uuid.NewString(),
		Name:         params.Name,
		CaseNumber:   params.CaseNumber,
		Jurisdiction: params.Jurisdiction,
		Judge:        params.Judge,
		Parties:      params.Parties,
		CaseType:     params.CaseType,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	h, err := casehandle.Open(r.caseDir(c.ID), kv.DefaultTuning())
	if err != nil {
		return nil, fmt.Errorf("creating case store: %w", err)
	}
	if err := h.Close(); err != nil {
		return nil, fmt.Errorf("creating case store: %w", err)
	}

	if err := r.store.Put("cases", schema.CaseKey(c.ID), encodeCase(c)); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Registry) caseDir(id string) string { return filepath.Join(r.casesDir, id) }

// CaseDir returns the on-disk directory holding id's store and originals,
// for callers (the storage lifecycle) that need to walk or archive it
// directly rather than go through a Handle.
func (r *Registry) CaseDir(id string) string { return r.caseDir(id) }

// OpenHandle returns id's pooled Handle, opening it if necessary, without
// marking id as the active case. Used by maintenance operations (storage
// lifecycle) that must not disturb which case the user has switched to.
func (r *Registry) OpenHandle(id string) (*casehandle.Handle, error) {
	if _, ok, err := r.Get(id); err != nil {
		return nil, err
	} else if !ok {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseNotFound, fmt.Sprintf("case %q not found", id), nil)
	}
	if h, ok := r.pool.Get(id); ok {
		return h, nil
	}
	h, err := casehandle.Open(r.caseDir(id), kv.DefaultTuning())
	if err != nil {
		return nil, err
	}
	r.pool.Add(id, h)
	return h, nil
}

// Get reads one case's registry record.
func (r *Registry) Get(id string) (*Case, bool, error) {
	raw, ok, err := r.store.Get("cases", schema.CaseKey(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	c, err := decodeCase(raw)
	return c, true, err
}

// List returns every registered case.
func (r *Registry) List() ([]*Case, error) {
	raw, err := r.store.PrefixIter("cases", "case:")
	if err != nil {
		return nil, err
	}
	out := make([]*Case, 0, len(raw))
	for _, v := range raw {
		c, err := decodeCase(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Update applies mutate to the stored case record and persists the result,
// validating any status change against the Status state machine.
func (r *Registry) Update(id string, mutate func(*Case)) (*Case, error) {
	c, ok, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseNotFound, fmt.Sprintf("case %q not found", id), nil)
	}

	before := c.Status
	mutate(c)
	if c.Status != before && !before.CanTransition(c.Status) {
		return nil, caseerrors.New(caseerrors.ErrCodeInvalidStatusTransition,
			fmt.Sprintf("cannot transition case %q from %s to %s", id, before, c.Status), nil)
	}
	c.UpdatedAt = time.Now().Unix()

	if err := r.store.Put("cases", schema.CaseKey(id), encodeCase(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete evicts id from the open-handle pool, destroys its on-disk store,
// and removes its registry record. If id is the active case, the active
// pointer is cleared.
func (r *Registry) Delete(id string) error {
	// pool.Remove invokes the evict callback, which closes the handle.
	r.pool.Remove(id)

	h, err := casehandle.Open(r.caseDir(id), kv.DefaultTuning())
	if err != nil {
		return err
	}
	if err := h.Destroy(); err != nil {
		return err
	}
	if err := r.store.Delete("cases", schema.CaseKey(id)); err != nil {
		return err
	}

	activeID, ok, err := r.ActiveID()
	if err != nil {
		return err
	}
	if ok && activeID == id {
		return r.store.Delete("meta", schema.ActiveCaseKey)
	}
	return nil
}

// Switch opens (or returns the already-pooled) Handle for id, evicting the
// least-recently-used handle if the pool is at MaxOpenCaseHandles, and
// records id as the active case.
func (r *Registry) Switch(id string) (*casehandle.Handle, error) {
	if _, ok, err := r.Get(id); err != nil {
		return nil, err
	} else if !ok {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseNotFound, fmt.Sprintf("case %q not found", id), nil)
	}

	if h, ok := r.pool.Get(id); ok {
		if err := r.store.Put("meta", schema.ActiveCaseKey, []byte(id)); err != nil {
			return nil, err
		}
		return h, nil
	}

	h, err := casehandle.Open(r.caseDir(id), kv.DefaultTuning())
	if err != nil {
		return nil, err
	}
	r.pool.Add(id, h)

	if err := r.store.Put("meta", schema.ActiveCaseKey, []byte(id)); err != nil {
		return nil, err
	}
	return h, nil
}

// ActiveID returns the currently active case id, if any.
func (r *Registry) ActiveID() (string, bool, error) {
	raw, ok, err := r.store.Get("meta", schema.ActiveCaseKey)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(raw), true, nil
}
