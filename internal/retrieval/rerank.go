package retrieval

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/legalcase/caseintel/internal/provenance"
)

// rerankMaxSim scores each candidate's token matrix against the query's
// token matrix via late-interaction MaxSim (spec.md §4.I stage 3) and
// returns candidates reordered by that score, ties broken by ascending chunk
// id (the same tie-break stage 2 uses). Scoring
// fans out across candidates with an errgroup since per-candidate MaxSim is
// independent and spec.md requires this stage stay fast at N₂≈50.
func rerankMaxSim(ctx context.Context, query *provenance.TokenMatrix, candidates []string, tokenOf func(chunkID string) (*provenance.TokenMatrix, error)) ([]string, error) {
	scores := make([]float64, len(candidates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range candidates {
		i, id := i, id
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			tm, err := tokenOf(id)
			if err != nil {
				return err
			}
			score := maxSim(query, tm)
			mu.Lock()
			scores[i] = score
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return candidates[order[a]] < candidates[order[b]]
	})

	out := make([]string, len(candidates))
	for i, idx := range order {
		out[i] = candidates[idx]
	}
	return out, nil
}
