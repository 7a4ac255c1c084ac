package lexical

import (
	"fmt"
	"math"
	"sort"

	"github.com/legalcase/caseintel/internal/binenc"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/schema"
)

// k1 and b are the BM25 tuning constants spec.md §4.H fixes.
const (
	k1 = 1.2
	b  = 0.75
)

const (
	docLenKeyPrefix = "doc_len:"
	statsKey        = "bm25_stats"
	bm25CF          = "bm25_index"
)

func docLenKey(chunkID string) string { return docLenKeyPrefix + chunkID }

// Store is the minimal KV surface the BM25 index needs, matching the
// method set *kv.Store already satisfies.
type Store interface {
	Get(cf, key string) ([]byte, bool, error)
	Put(cf, key string, value []byte) error
	Delete(cf, key string) error
	PrefixIter(cf, prefix string) (map[string][]byte, error)
}

func readStats(s Store) (Stats, error) {
	raw, ok, err := s.Get(bm25CF, statsKey)
	if err != nil {
		return Stats{}, err
	}
	if !ok {
		return Stats{}, nil
	}
	return decodeStats(raw)
}

func writeStats(s Store, stats Stats) error {
	return s.Put(bm25CF, statsKey, encodeStats(stats))
}

func readPostings(s Store, term string) ([]Posting, error) {
	raw, ok, err := s.Get(bm25CF, schema.TermKey(term))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return decodePostings(raw)
}

func writePostings(s Store, term string, postings []Posting) error {
	if len(postings) == 0 {
		return s.Delete(bm25CF, schema.TermKey(term))
	}
	sort.Slice(postings, func(i, j int) bool { return postings[i].ChunkID < postings[j].ChunkID })
	return s.Put(bm25CF, schema.TermKey(term), encodePostings(postings))
}

// AddChunk tokenizes text and updates every affected term's posting list,
// the chunk's token length, the reverse chunk_bm25_terms list used for
// deletion, and the case-wide chunk-count/token-count stats. Re-indexing an
// already-indexed chunk first removes its prior postings, so callers may
// call AddChunk idempotently on reindex.
func AddChunk(s Store, chunkID, text string) error {
	if err := RemoveChunk(s, chunkID); err != nil {
		return err
	}

	tokens := Tokenize(text)
	termFreq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		termFreq[t]++
	}

	terms := make([]string, 0, len(termFreq))
	for term, tf := range termFreq {
		postings, err := readPostings(s, term)
		if err != nil {
			return fmt.Errorf("reading postings for term %q: %w", term, err)
		}
		postings = append(postings, Posting{ChunkID: chunkID, TF: tf})
		if err := writePostings(s, term, postings); err != nil {
			return fmt.Errorf("writing postings for term %q: %w", term, err)
		}
		terms = append(terms, term)
	}

	if err := s.Put(bm25CF, docLenKey(chunkID), binenc.PutInt64(nil, int64(len(tokens)))); err != nil {
		return fmt.Errorf("writing doc_len: %w", err)
	}
	if err := s.Put(bm25CF, schema.ChunkBM25TermsKey(chunkID), encodeTermList(terms)); err != nil {
		return fmt.Errorf("writing chunk_bm25_terms: %w", err)
	}

	stats, err := readStats(s)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	stats.TotalChunks++
	stats.TotalTokenCount += int64(len(tokens))
	return writeStats(s, stats)
}

// RemoveChunk deletes every posting that references chunkID, using the
// reverse chunk_bm25_terms list to avoid a full term-space scan, per the
// cascading-delete design in spec.md §4.E. Removing a chunk that was never
// indexed is a no-op, not an error.
func RemoveChunk(s Store, chunkID string) error {
	raw, ok, err := s.Get(bm25CF, schema.ChunkBM25TermsKey(chunkID))
	if err != nil {
		return fmt.Errorf("reading chunk_bm25_terms: %w", err)
	}
	if !ok {
		return nil
	}
	terms, err := decodeTermList(raw)
	if err != nil {
		return fmt.Errorf("decoding chunk_bm25_terms: %w", err)
	}

	removedTokens, err := chunkLength(s, chunkID)
	if err != nil {
		return fmt.Errorf("reading doc_len: %w", err)
	}

	for _, term := range terms {
		postings, err := readPostings(s, term)
		if err != nil {
			return fmt.Errorf("reading postings for term %q: %w", term, err)
		}
		kept := postings[:0]
		for _, p := range postings {
			if p.ChunkID != chunkID {
				kept = append(kept, p)
			}
		}
		if err := writePostings(s, term, kept); err != nil {
			return fmt.Errorf("writing postings for term %q: %w", term, err)
		}
	}

	if err := s.Delete(bm25CF, docLenKey(chunkID)); err != nil {
		return fmt.Errorf("deleting doc_len: %w", err)
	}
	if err := s.Delete(bm25CF, schema.ChunkBM25TermsKey(chunkID)); err != nil {
		return fmt.Errorf("deleting chunk_bm25_terms: %w", err)
	}

	stats, err := readStats(s)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	if stats.TotalChunks > 0 {
		stats.TotalChunks--
	}
	stats.TotalTokenCount -= removedTokens
	if stats.TotalTokenCount < 0 {
		stats.TotalTokenCount = 0
	}
	return writeStats(s, stats)
}

// Search tokenizes query the same way chunks were indexed, scores every
// chunk in the union of the query terms' posting lists with length-
// normalized BM25 (k1=1.2, b=0.75), and returns the top-K by score
// descending, chunk_id ascending on ties for determinism. Fails with
// Bm25IndexEmpty if the index has no postings at all.
func Search(s Store, query string, topK int) ([]ScoredChunk, error) {
	stats, err := readStats(s)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	if stats.TotalChunks == 0 {
		return nil, caseerrors.New(caseerrors.ErrCodeBm25IndexEmpty, "bm25 index has no postings", nil)
	}

	avgLen := stats.AvgChunkLength()
	tokens := Tokenize(query)

	seen := map[string]bool{}
	scores := map[string]float64{}

	for _, term := range tokens {
		if seen[term] {
			continue
		}
		seen[term] = true

		postings, err := readPostings(s, term)
		if err != nil {
			return nil, fmt.Errorf("reading postings for term %q: %w", term, err)
		}
		if len(postings) == 0 {
			continue
		}

		df := float64(len(postings))
		idf := math.Log(1 + (float64(stats.TotalChunks)-df+0.5)/(df+0.5))

		for _, p := range postings {
			docLen, err := chunkLength(s, p.ChunkID)
			if err != nil {
				return nil, fmt.Errorf("reading doc_len for %q: %w", p.ChunkID, err)
			}
			norm := 1 - b + b*(float64(docLen)/avgLenOrOne(avgLen))
			tf := float64(p.TF)
			score := idf * (tf * (k1 + 1)) / (tf + k1*norm)
			scores[p.ChunkID] += score
		}
	}

	out := make([]ScoredChunk, 0, len(scores))
	for chunkID, score := range scores {
		out = append(out, ScoredChunk{ChunkID: chunkID, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func avgLenOrOne(avg float64) float64 {
	if avg <= 0 {
		return 1
	}
	return avg
}

func chunkLength(s Store, chunkID string) (int64, error) {
	raw, ok, err := s.Get(bm25CF, docLenKey(chunkID))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, _, err := binenc.TakeInt64(raw)
	return n, err
}
