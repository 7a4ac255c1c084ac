package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEngine wraps an Engine and counts EmbedQuery and EmbedChunk calls,
// to verify the cache actually suppresses recomputation rather than merely
// returning the right answer via the inner engine every time.
type countingEngine struct {
	Engine
	queryCalls int
	chunkCalls int
}

func (c *countingEngine) EmbedChunk(ctx context.Context, text string) (ChunkEmbeddings, error) {
	c.chunkCalls++
	return c.Engine.EmbedChunk(ctx, text)
}

func (c *countingEngine) EmbedQuery(ctx context.Context, text string, which Slot) (QueryEmbedding, error) {
	c.queryCalls++
	return c.Engine.EmbedQuery(ctx, text, which)
}

func TestCachedEngine_EmbedQuery_CachesRepeatedCalls(t *testing.T) {
	inner := &countingEngine{Engine: NewStaticEngine(0)}
	cached := NewCachedEngine(inner, 10)

	_, err := cached.EmbedQuery(context.Background(), "breach of contract", SlotDense)
	require.NoError(t, err)
	_, err = cached.EmbedQuery(context.Background(), "breach of contract", SlotDense)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.queryCalls)
}

func TestCachedEngine_EmbedQuery_DistinctTextsMiss(t *testing.T) {
	inner := &countingEngine{Engine: NewStaticEngine(0)}
	cached := NewCachedEngine(inner, 10)

	_, err := cached.EmbedQuery(context.Background(), "breach of contract", SlotDense)
	require.NoError(t, err)
	_, err = cached.EmbedQuery(context.Background(), "motion to dismiss", SlotDense)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.queryCalls)
}

func TestCachedEngine_EmbedChunk_NeverCached(t *testing.T) {
	inner := &countingEngine{Engine: NewStaticEngine(0)}
	cached := NewCachedEngine(inner, 10)

	_, err := cached.EmbedChunk(context.Background(), "same chunk text")
	require.NoError(t, err)
	_, err = cached.EmbedChunk(context.Background(), "same chunk text")
	require.NoError(t, err)

	assert.Equal(t, 0, inner.queryCalls)
	assert.Equal(t, 2, inner.chunkCalls)
}
