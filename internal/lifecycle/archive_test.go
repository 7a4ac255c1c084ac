package lifecycle

import (
	"path/filepath"
	"testing"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/legalcase/caseintel/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	cases map[string]*registry.Case
}

func newFakeRegistry(c *registry.Case) *fakeRegistry {
	return &fakeRegistry{cases: map[string]*registry.Case{c.ID: c}}
}

func (f *fakeRegistry) Update(id string, mutate func(*registry.Case)) (*registry.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, assert.AnError
	}
	before := c.Status
	mutate(c)
	if c.Status != before && !before.CanTransition(c.Status) {
		c.Status = before
		return nil, assert.AnError
	}
	return c, nil
}

func openLifecycleTestHandle(t *testing.T) *casehandle.Handle {
	t.Helper()
	h, err := casehandle.Open(filepath.Join(t.TempDir(), "case-1"), kv.DefaultTuning())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestArchive_TransitionsStatusAndCompacts(t *testing.T) {
	h := openLifecycleTestHandle(t)
	c := &registry.Case{ID: "case-1", Status: registry.StatusActive}
	reg := newFakeRegistry(c)

	got, err := Archive(reg, h, "case-1")
	require.NoError(t, err)
	assert.Equal(t, registry.StatusArchived, got.Status)
}

func TestArchive_RejectsInvalidTransitionFromPurged(t *testing.T) {
	h := openLifecycleTestHandle(t)
	c := &registry.Case{ID: "case-1", Status: registry.StatusPurged}
	reg := newFakeRegistry(c)

	_, err := Archive(reg, h, "case-1")
	assert.Error(t, err)
}
