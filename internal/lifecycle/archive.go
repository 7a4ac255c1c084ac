package lifecycle

import (
	"github.com/legalcase/caseintel/internal/casehandle"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/registry"
)

// registryUpdater is the subset of *registry.Registry the lifecycle
// operations need, so tests can exercise them without a real LRU pool.
type registryUpdater interface {
	Update(id string, mutate func(*registry.Case)) (*registry.Case, error)
}

// Archive transitions a case to Archived and compacts its store, per
// spec.md §4.L. Update enforces the Status state machine, so archiving a
// Purged or already-terminal case fails with ErrCodeInvalidStatusTransition.
func Archive(reg registryUpdater, h *casehandle.Handle, caseID string) (*registry.Case, error) {
	c, err := reg.Update(caseID, func(c *registry.Case) {
		c.Status = registry.StatusArchived
	})
	if err != nil {
		return nil, err
	}
	if err := h.CompactAll(); err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeStoreIO, "compacting archived case", err)
	}
	return c, nil
}
