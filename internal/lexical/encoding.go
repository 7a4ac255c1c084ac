package lexical

import (
	"fmt"

	"github.com/legalcase/caseintel/internal/binenc"
)

// encodePostings serializes a term's posting list, sorted by chunk id as
// spec.md §4.H requires.
func encodePostings(postings []Posting) []byte {
	buf := binenc.PutInt64(nil, int64(len(postings)))
	for _, p := range postings {
		buf = binenc.PutString(buf, p.ChunkID)
		buf = binenc.PutInt64(buf, int64(p.TF))
	}
	return buf
}

func decodePostings(buf []byte) ([]Posting, error) {
	n, buf, err := binenc.TakeInt64(buf)
	if err != nil {
		return nil, fmt.Errorf("postings count: %w", err)
	}
	out := make([]Posting, 0, n)
	for i := int64(0); i < n; i++ {
		var chunkID string
		var tf int64
		if chunkID, buf, err = binenc.TakeString(buf); err != nil {
			return nil, fmt.Errorf("postings[%d].chunk_id: %w", i, err)
		}
		if tf, buf, err = binenc.TakeInt64(buf); err != nil {
			return nil, fmt.Errorf("postings[%d].tf: %w", i, err)
		}
		out = append(out, Posting{ChunkID: chunkID, TF: int(tf)})
	}
	return out, nil
}

func encodeStats(s Stats) []byte {
	buf := binenc.PutInt64(nil, int64(s.TotalChunks))
	buf = binenc.PutInt64(buf, s.TotalTokenCount)
	return buf
}

func decodeStats(buf []byte) (Stats, error) {
	var s Stats
	n, buf, err := binenc.TakeInt64(buf)
	if err != nil {
		return s, fmt.Errorf("total_chunks: %w", err)
	}
	s.TotalChunks = int(n)
	if s.TotalTokenCount, _, err = binenc.TakeInt64(buf); err != nil {
		return s, fmt.Errorf("total_token_count: %w", err)
	}
	return s, nil
}

func encodeTermList(terms []string) []byte {
	return binenc.PutStringSlice(nil, terms)
}

func decodeTermList(buf []byte) ([]string, error) {
	terms, _, err := binenc.TakeStringSlice(buf)
	return terms, err
}
