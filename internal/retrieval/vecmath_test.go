package retrieval

import (
	"testing"

	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/stretchr/testify/assert"
)

func TestDenseScore_IdenticalNormalizedVectorsScoreOne(t *testing.T) {
	v := []float32{0.6, 0.8}
	assert.InDelta(t, 1.0, denseScore(v, v), 1e-6)
}

func TestDenseScore_OrthogonalVectorsScoreZero(t *testing.T) {
	assert.InDelta(t, 0.0, denseScore([]float32{1, 0}, []float32{0, 1}), 1e-6)
}

func TestSparseScore_LinearMergeOnlyMatchesSharedIndices(t *testing.T) {
	q := &provenance.SparseVector{Indices: []uint32{1, 3, 5}, Values: []float32{1, 2, 3}}
	d := &provenance.SparseVector{Indices: []uint32{2, 3, 4}, Values: []float32{1, 5, 1}}
	assert.InDelta(t, 10.0, sparseScore(q, d), 1e-6)
}

func TestSparseScore_NilVectorScoresZero(t *testing.T) {
	assert.Zero(t, sparseScore(nil, &provenance.SparseVector{}))
}

func TestMaxSim_PicksBestMatchingRowPerQueryToken(t *testing.T) {
	query := &provenance.TokenMatrix{Rows: 2, Cols: 2, Data: []float32{1, 0, 0, 1}}
	doc := &provenance.TokenMatrix{Rows: 2, Cols: 2, Data: []float32{1, 0, 0, 1}}
	assert.InDelta(t, 1.0, maxSim(query, doc), 1e-6)
}

func TestMaxSim_EmptyMatrixScoresZero(t *testing.T) {
	assert.Zero(t, maxSim(nil, &provenance.TokenMatrix{}))
}
