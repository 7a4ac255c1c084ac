package mcp

import (
	"sort"

	"github.com/coder/hnsw"

	"github.com/legalcase/caseintel/internal/casehandle"
)

// documentCentroids averages every document's chunk dense embeddings into a
// single vector, skipping chunks with no dense slot. Documents with no dense
// embeddings anywhere are omitted entirely, so find_related_documents can
// still fall back to pure entity-mention tallying for an all-static or
// not-yet-embedded case.
func documentCentroids(h *casehandle.Handle) (map[string][]float32, error) {
	embeddings, err := h.ListEmbeddings()
	if err != nil {
		return nil, err
	}

	sums := make(map[string][]float32)
	counts := make(map[string]int)
	for _, rec := range embeddings {
		if rec.Dense == nil {
			continue
		}
		chunk, ok, err := h.GetChunk(rec.ChunkID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sum, exists := sums[chunk.DocumentID]
		if !exists {
			sum = make([]float32, len(rec.Dense))
		}
		for i, x := range rec.Dense {
			if i < len(sum) {
				sum[i] += x
			}
		}
		sums[chunk.DocumentID] = sum
		counts[chunk.DocumentID]++
	}

	centroids := make(map[string][]float32, len(sums))
	for docID, sum := range sums {
		n := float32(counts[docID])
		avg := make([]float32, len(sum))
		for i, x := range sum {
			avg[i] = x / n
		}
		centroids[docID] = avg
	}
	return centroids, nil
}

// rankByCentroidSimilarity builds an ephemeral coder/hnsw graph over every
// candidate document's centroid vector and returns up to k document ids
// ranked nearest-first to query. candidates must not include the query
// document itself.
func rankByCentroidSimilarity(candidates map[string][]float32, query []float32, k int) []string {
	if len(candidates) == 0 || len(query) == 0 {
		return nil
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance

	docIDs := make([]string, 0, len(candidates))
	for docID, vec := range candidates {
		key := uint64(len(docIDs))
		docIDs = append(docIDs, docID)
		graph.Add(hnsw.MakeNode(key, vec))
	}

	neighbors := graph.Search(query, k)
	out := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, docIDs[n.Key])
	}
	return out
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// relatedDocRRFConstant matches internal/retrieval's dense+sparse fusion
// smoothing constant, applied here to fuse the entity-mention-tally ranking
// with the embedding-centroid ANN ranking.
const relatedDocRRFConstant = 60

// fuseRelatedDocumentRanks combines the entity-tally ranking and the
// embedding-centroid ranking via Reciprocal Rank Fusion, weighting both
// signals equally: score(d) = 1/(k+rank_entity(d)+1) + 1/(k+rank_embed(d)+1).
// A document missing from one ranking contributes 0 from that ranking
// rather than a synthetic worst-case rank.
func fuseRelatedDocumentRanks(entityRanked, embedRanked []string) map[string]float64 {
	scores := make(map[string]float64)
	for rank, docID := range entityRanked {
		scores[docID] += 1.0 / float64(relatedDocRRFConstant+rank+1)
	}
	for rank, docID := range embedRanked {
		scores[docID] += 1.0 / float64(relatedDocRRFConstant+rank+1)
	}
	return scores
}

// sortByScoreDesc ranks docIDs by scores descending, breaking ties by
// ascending document id for deterministic output.
func sortByScoreDesc(scores map[string]float64) []string {
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
