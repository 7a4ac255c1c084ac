package retrieval

import "github.com/legalcase/caseintel/internal/provenance"

// denseScore computes cosine similarity as a plain dot product: spec.md
// §4.G guarantees every stored and query dense vector is L2-normalized, so
// dot product already equals cosine similarity.
func denseScore(query, chunk []float32) float64 {
	if len(query) != len(chunk) {
		return 0
	}
	var sum float64
	for i := range query {
		sum += float64(query[i]) * float64(chunk[i])
	}
	return sum
}

// sparseScore computes the dot product of two sparse vectors by a linear
// merge over their strictly-ascending index arrays, per spec.md §4.G.
func sparseScore(query, chunk *provenance.SparseVector) float64 {
	if query == nil || chunk == nil {
		return 0
	}
	var sum float64
	i, j := 0, 0
	for i < len(query.Indices) && j < len(chunk.Indices) {
		switch {
		case query.Indices[i] == chunk.Indices[j]:
			sum += float64(query.Values[i]) * float64(chunk.Values[j])
			i++
			j++
		case query.Indices[i] < chunk.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// maxSim computes the late-interaction score from spec.md §4.I:
// (1/M) * Σ_{i=1..M} max_{j=1..N} cosine(Q_i, D_j), where Q and D are
// unit-normalized token rows. Cosine reduces to a dot product since both
// matrices are normalized at load.
func maxSim(query, doc *provenance.TokenMatrix) float64 {
	if query == nil || doc == nil || query.Rows == 0 || doc.Rows == 0 {
		return 0
	}
	var total float64
	for qi := 0; qi < query.Rows; qi++ {
		best := -1.0
		qRow := query.Data[qi*query.Cols : (qi+1)*query.Cols]
		for dj := 0; dj < doc.Rows; dj++ {
			dRow := doc.Data[dj*doc.Cols : (dj+1)*doc.Cols]
			var dot float64
			for c := 0; c < query.Cols && c < doc.Cols; c++ {
				dot += float64(qRow[c]) * float64(dRow[c])
			}
			if dot > best {
				best = dot
			}
		}
		total += best
	}
	return total / float64(query.Rows)
}
