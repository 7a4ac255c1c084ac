package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// StaticDimensions is the embedding dimension for the deterministic fallback.
const StaticDimensions = 256

const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// legalStopWords are filtered from the token features so boilerplate like
// "the", "and", "shall" does not dominate the hash buckets. The character
// n-grams are taken over the full text, stop words included.
var legalStopWords = map[string]bool{
	"the": true, "and": true, "or": true, "of": true, "to": true, "a": true,
	"in": true, "is": true, "that": true, "shall": true, "which": true,
	"this": true, "be": true, "as": true, "by": true, "for": true, "with": true,
}

// StaticEngine produces a deterministic hash-based dense embedding with no
// model weights and no network access. It is the always-available fallback
// when no native or Ollama backend is configured: a case indexed with it
// remains lexically searchable with a degraded semantic signal, rather than
// failing ingestion outright.
type StaticEngine struct {
	dims int
}

var _ Engine = (*StaticEngine)(nil)

// NewStaticEngine returns a static dense-only engine at the given dimension
// (StaticDimensions if dims<=0).
func NewStaticEngine(dims int) *StaticEngine {
	if dims <= 0 {
		dims = StaticDimensions
	}
	return &StaticEngine{dims: dims}
}

func (e *StaticEngine) ConfiguredSlots() []Slot { return []Slot{SlotDense} }

func (e *StaticEngine) EmbedChunk(_ context.Context, text string) (ChunkEmbeddings, error) {
	return ChunkEmbeddings{Dense: e.vector(text)}, nil
}

func (e *StaticEngine) EmbedQuery(_ context.Context, text string, which Slot) (QueryEmbedding, error) {
	if which != SlotDense {
		return QueryEmbedding{}, caseerrors.EmbedderNotLoaded(string(which))
	}
	return QueryEmbedding{Which: SlotDense, Dense: e.vector(text)}, nil
}

func (e *StaticEngine) Close() error { return nil }

func (e *StaticEngine) vector(text string) []float32 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, e.dims)
	}
	vector := make([]float32, e.dims)

	for _, token := range filterStopWords(tokenize(trimmed)) {
		vector[hashToIndex(token, e.dims)] += tokenWeight
	}
	for _, ngram := range extractNgrams(normalizeForNgrams(trimmed), ngramSize) {
		vector[hashToIndex(ngram, e.dims)] += ngramWeight
	}
	return normalizeVector(vector)
}

func tokenize(text string) []string {
	var tokens []string
	for _, word := range tokenRegex.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if lower != "" {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

func filterStopWords(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !legalStopWords[t] {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func normalizeForNgrams(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractNgrams(text string, n int) []string {
	if len(text) < n {
		return nil
	}
	ngrams := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		ngrams = append(ngrams, text[i:i+n])
	}
	return ngrams
}

func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}
