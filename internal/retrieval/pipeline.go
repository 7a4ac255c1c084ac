package retrieval

import (
	"context"
	"errors"
	"time"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/provenance"
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func hasSlot(slots []embed.Slot, which embed.Slot) bool {
	for _, s := range slots {
		if s == which {
			return true
		}
	}
	return false
}

// Search runs the full four-stage pipeline against h, using engine for
// query embedding. k is the number of results requested.
func Search(ctx context.Context, h *casehandle.Handle, engine embed.Engine, cfg config.RetrievalConfig, query string, k int, filter Filter) ([]SearchResult, error) {
	n1 := maxInt(k*cfg.LexicalRecallMultiplier, 500)
	n2 := maxInt(k*cfg.FusionRecallMultiplier, 50)

	// Stage 1: lexical recall. No subsequent stage adds candidates.
	lexHits, err := h.SearchBM25(query, n1)
	var ce *caseerrors.CaseError
	if errors.As(err, &ce) && ce.Code == caseerrors.ErrCodeBm25IndexEmpty {
		// An empty index has nothing to recall: continue with zero candidates.
		lexHits, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	type candidate struct {
		chunk *provenance.Chunk
		emb   *provenance.ChunkEmbeddingRecord
	}
	candidates := make(map[string]*candidate, len(lexHits))
	var order []string
	for _, hit := range lexHits {
		chunk, ok, err := h.GetChunk(hit.ChunkID)
		if err != nil {
			return nil, err
		}
		if !ok || !filter.allows(chunk.DocumentID) {
			continue
		}
		candidates[hit.ChunkID] = &candidate{chunk: chunk}
		order = append(order, hit.ChunkID)
	}
	if len(order) == 0 {
		if err := h.RecordSearchActivity(time.Now().Unix()); err != nil {
			return nil, err
		}
		return []SearchResult{}, nil
	}

	// Stage 2: dense+sparse rank + RRF fuse.
	slots := engine.ConfiguredSlots()
	wantDense := hasSlot(slots, embed.SlotDense)
	wantSparse := hasSlot(slots, embed.SlotSparse)

	var queryDense []float32
	var querySparse *provenance.SparseVector
	if wantDense {
		qe, err := engine.EmbedQuery(ctx, query, embed.SlotDense)
		if err != nil {
			return nil, err
		}
		queryDense = qe.Dense
	}
	if wantSparse {
		qe, err := engine.EmbedQuery(ctx, query, embed.SlotSparse)
		if err != nil {
			return nil, err
		}
		querySparse = qe.Sparse
	}

	denseScores := make(map[string]float64)
	sparseScores := make(map[string]float64)
	for _, id := range order {
		rec, ok, err := h.GetEmbedding(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		candidates[id].emb = rec
		if wantDense && rec.Dense != nil {
			denseScores[id] = denseScore(queryDense, rec.Dense)
		}
		if wantSparse && rec.Sparse != nil {
			sparseScores[id] = sparseScore(querySparse, rec.Sparse)
		}
	}

	var fused map[string]float64
	if wantDense || wantSparse {
		fused = fuseRRF(rankedList(denseScores), rankedList(sparseScores), cfg.RRFConstant, cfg.SemanticWeight, cfg.BM25Weight)
	} else {
		// No embedder configured: stage 2 degenerates to the lexical order,
		// re-scored by descending BM25 rank so stage 3/4 share one code path.
		fused = make(map[string]float64, len(order))
		for rank, id := range order {
			fused[id] = 1.0 / float64(cfg.RRFConstant+rank+1)
		}
	}

	stage2Order := rankedList(fused)
	if len(stage2Order) > n2 {
		stage2Order = stage2Order[:n2]
	}

	// Stage 3: optional MaxSim late-interaction rerank.
	finalOrder := stage2Order
	if cfg.RerankEnabled && hasSlot(slots, embed.SlotToken) {
		qe, err := engine.EmbedQuery(ctx, query, embed.SlotToken)
		if err != nil {
			return nil, err
		}
		finalOrder, err = rerankMaxSim(ctx, qe.Token, stage2Order, func(chunkID string) (*provenance.TokenMatrix, error) {
			if c := candidates[chunkID]; c != nil && c.emb != nil {
				return c.emb.Token, nil
			}
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(finalOrder) > k {
		finalOrder = finalOrder[:k]
	}

	// Stage 4: attach neighbor context.
	results := make([]SearchResult, 0, len(finalOrder))
	for _, id := range finalOrder {
		c := candidates[id].chunk
		res := SearchResult{
			Text:       c.Text,
			Score:      fused[id],
			Provenance: c.Provenance,
		}
		if prev, ok, err := h.GetChunkBySequence(c.DocumentID, c.Sequence-1); err == nil && ok {
			res.ContextBefore = prev.Text
		}
		if next, ok, err := h.GetChunkBySequence(c.DocumentID, c.Sequence+1); err == nil && ok {
			res.ContextAfter = next.Text
		}
		results = append(results, res)
	}
	if err := h.RecordSearchActivity(time.Now().Unix()); err != nil {
		return nil, err
	}
	return results, nil
}
