package retrieval

import "sort"

// DefaultRRFConstant is the fusion smoothing parameter k, per spec.md §8's
// glossary entry for Reciprocal Rank Fusion.
const DefaultRRFConstant = 60

// rankedList ranks chunk ids descending by score, breaking ties by ascending
// chunk id so identical inputs always produce identical ranks.
func rankedList(scores map[string]float64) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// fuseRRF combines the dense and sparse ranked lists via Reciprocal Rank
// Fusion: score(c) = denseWeight/(k+rank_dense(c)) + sparseWeight/(k+rank_sparse(c)),
// with a candidate missing from one list contributing 0 from that list (per
// spec.md §4.I — no synthetic "missing rank" penalty). List order is fixed
// (dense first, then sparse) purely for iteration determinism; the weighted
// sum itself does not depend on that order.
//
// Either list may be nil (e.g. only one embedder slot is configured), in
// which case the result degenerates to a rank-based re-score of the other
// list alone.
func fuseRRF(dense, sparse []string, k int, denseWeight, sparseWeight float64) map[string]float64 {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	scores := make(map[string]float64)
	for rank, id := range dense {
		scores[id] += denseWeight / float64(k+rank+1)
	}
	for rank, id := range sparse {
		scores[id] += sparseWeight / float64(k+rank+1)
	}
	return scores
}
