package lifecycle

import (
	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/embed"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/provenance"
)

// StripEmbeddings clears one embedding modality from every chunk in a
// case and compacts the store afterward, per spec.md §4.L. Intended for a
// case that no longer needs, say, the token (late-interaction) slot once
// reranking has been disabled.
func StripEmbeddings(h *casehandle.Handle, slot embed.Slot) (int, error) {
	records, err := h.ListEmbeddings()
	if err != nil {
		return 0, err
	}

	stripped := 0
	for _, r := range records {
		if !clearSlot(r, slot) {
			continue
		}
		stripped++
		if r.HasEmbedding() {
			if err := h.StoreEmbedding(r); err != nil {
				return stripped, err
			}
			continue
		}
		if err := h.DeleteEmbedding(r.ChunkID); err != nil {
			return stripped, err
		}
	}

	if err := h.CompactAll(); err != nil {
		return stripped, caseerrors.New(caseerrors.ErrCodeStoreIO, "compacting after strip_embeddings", err)
	}
	return stripped, nil
}

// clearSlot nils out the named slot on r, reporting whether it was
// previously set.
func clearSlot(r *provenance.ChunkEmbeddingRecord, slot embed.Slot) bool {
	switch slot {
	case embed.SlotDense:
		if r.Dense == nil {
			return false
		}
		r.Dense = nil
	case embed.SlotSparse:
		if r.Sparse == nil {
			return false
		}
		r.Sparse = nil
	case embed.SlotToken:
		if r.Token == nil {
			return false
		}
		r.Token = nil
	default:
		return false
	}
	return true
}
