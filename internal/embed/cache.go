package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultQueryCacheSize bounds the number of distinct query embeddings kept
// in memory per case handle.
const DefaultQueryCacheSize = 1000

// CachedEngine wraps an Engine with an LRU cache over EmbedQuery results.
// Repeated searches for the same query text (pagination, retry, an
// interactive session re-running a filtered search) skip recomputation.
// EmbedChunk is never cached: ingestion never repeats a chunk's text.
type CachedEngine struct {
	inner Engine
	cache *lru.Cache[string, QueryEmbedding]
}

var _ Engine = (*CachedEngine)(nil)

// NewCachedEngine wraps inner with an LRU query cache of the given size
// (DefaultQueryCacheSize if size<=0).
func NewCachedEngine(inner Engine, size int) *CachedEngine {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	cache, _ := lru.New[string, QueryEmbedding](size)
	return &CachedEngine{inner: inner, cache: cache}
}

func (c *CachedEngine) ConfiguredSlots() []Slot { return c.inner.ConfiguredSlots() }

func (c *CachedEngine) EmbedChunk(ctx context.Context, text string) (ChunkEmbeddings, error) {
	return c.inner.EmbedChunk(ctx, text)
}

func (c *CachedEngine) EmbedQuery(ctx context.Context, text string, which Slot) (QueryEmbedding, error) {
	key := cacheKey(text, which)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.EmbedQuery(ctx, text, which)
	if err != nil {
		return QueryEmbedding{}, err
	}
	c.cache.Add(key, v)
	return v, nil
}

func (c *CachedEngine) Close() error { return c.inner.Close() }

func cacheKey(text string, which Slot) string {
	sum := sha256.Sum256([]byte(string(which) + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
