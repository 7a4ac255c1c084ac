package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankedList_BreaksTiesByChunkIDAscending(t *testing.T) {
	scores := map[string]float64{"c": 1.0, "a": 1.0, "b": 1.0}
	assert.Equal(t, []string{"a", "b", "c"}, rankedList(scores))
}

func TestRankedList_OrdersDescendingByScore(t *testing.T) {
	scores := map[string]float64{"low": 0.1, "high": 0.9, "mid": 0.5}
	assert.Equal(t, []string{"high", "mid", "low"}, rankedList(scores))
}

// TestFuseRRF_IdenticalListsPreserveOrder is spec.md §8 invariant 10: RRF is
// symmetric under equal-rank inputs — two identical ranked lists produce the
// same fused order as either list alone.
func TestFuseRRF_IdenticalListsPreserveOrder(t *testing.T) {
	list := []string{"chunk-3", "chunk-1", "chunk-2"}
	fused := fuseRRF(list, list, DefaultRRFConstant, 0.65, 0.35)
	assert.Equal(t, list, rankedList(fused))
}

func TestFuseRRF_MissingFromOneListContributesZero(t *testing.T) {
	dense := []string{"a", "b"}
	sparse := []string{"b"}
	fused := fuseRRF(dense, sparse, DefaultRRFConstant, 0.5, 0.5)

	denseOnlyA := 0.5 / float64(DefaultRRFConstant+1)
	bScore := 0.5/float64(DefaultRRFConstant+2) + 0.5/float64(DefaultRRFConstant+1)
	assert.InDelta(t, denseOnlyA, fused["a"], 1e-12)
	assert.InDelta(t, bScore, fused["b"], 1e-12)
}

func TestFuseRRF_OneListNilDegeneratesToOther(t *testing.T) {
	dense := []string{"x", "y", "z"}
	fused := fuseRRF(dense, nil, DefaultRRFConstant, 1.0, 0.0)
	assert.Equal(t, dense, rankedList(fused))
}
