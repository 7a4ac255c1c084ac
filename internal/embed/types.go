// Package embed computes dense, sparse, and token-matrix embeddings for
// chunks and queries per spec.md §4.G. Each slot is independently optional:
// a case may run dense-only, sparse-only, all three, or none (lexical-only).
package embed

import (
	"context"
	"math"

	"github.com/legalcase/caseintel/internal/provenance"
)

// Slot names one of the three embedding modalities.
type Slot string

const (
	SlotDense  Slot = "dense"
	SlotSparse Slot = "sparse"
	SlotToken  Slot = "token"
)

// MaxTokenRows is the N<=512 cap on a chunk's token matrix, per spec.md §4.G.
const MaxTokenRows = 512

// ChunkEmbeddings holds whichever slots are configured for one chunk.
type ChunkEmbeddings struct {
	Dense  []float32
	Sparse *provenance.SparseVector
	Token  *provenance.TokenMatrix
}

// QueryEmbedding holds the single slot requested by a query.
type QueryEmbedding struct {
	Which  Slot
	Dense  []float32
	Sparse *provenance.SparseVector
	Token  *provenance.TokenMatrix
}

// Engine computes embeddings for whichever slots its backend configures.
// Dense vectors are always returned L2-normalized; sparse vectors always
// carry strictly ascending indices; token matrices never exceed MaxTokenRows
// rows — every Engine implementation is responsible for these invariants.
type Engine interface {
	// EmbedChunk fills whichever slots this engine is configured for.
	EmbedChunk(ctx context.Context, text string) (ChunkEmbeddings, error)

	// EmbedQuery computes a single requested slot. Returns EmbedderNotLoaded
	// if that slot is not configured on this engine.
	EmbedQuery(ctx context.Context, text string, which Slot) (QueryEmbedding, error)

	// ConfiguredSlots reports which slots this engine fills.
	ConfiguredSlots() []Slot

	// Close releases any backend resources (HTTP connections, native handles).
	Close() error
}

// hasSlot reports whether slots contains which.
func hasSlot(slots []Slot, which Slot) bool {
	for _, s := range slots {
		if s == which {
			return true
		}
	}
	return false
}

// normalizeVector L2-normalizes v in place semantics (returns a new slice),
// leaving a zero vector unchanged since it has no direction to normalize to.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}

// sortSparse sorts a sparse vector's (index, value) pairs ascending by index,
// the invariant spec.md §4.G requires so dot product is a linear merge.
func sortSparse(sv *provenance.SparseVector) {
	n := len(sv.Indices)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && sv.Indices[j-1] > sv.Indices[j]; j-- {
			sv.Indices[j-1], sv.Indices[j] = sv.Indices[j], sv.Indices[j-1]
			sv.Values[j-1], sv.Values[j] = sv.Values[j], sv.Values[j-1]
		}
	}
}
