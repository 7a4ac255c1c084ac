package casehandle

import (
	"fmt"
	"sort"

	"github.com/legalcase/caseintel/internal/binenc"
	"github.com/legalcase/caseintel/internal/legalindex"
)

// encodeStringList/decodeStringList wrap the shared string-slice primitive
// for the ent_chunks/cite_chunks reverse-index lists.
func encodeStringList(items []string) []byte {
	return binenc.PutStringSlice(nil, items)
}

func decodeStringList(buf []byte) ([]string, error) {
	items, _, err := binenc.TakeStringSlice(buf)
	return items, err
}

// encodeEntityMentions/decodeEntityMentions serialize the list of entity
// mentions found in one chunk, reusing legalindex's per-mention encoding.
func encodeEntityMentions(mentions []*legalindex.EntityMention) []byte {
	buf := binenc.PutInt64(nil, int64(len(mentions)))
	for _, m := range mentions {
		enc := legalindex.EncodeEntityMention(m)
		buf = binenc.PutInt64(buf, int64(len(enc)))
		buf = append(buf, enc...)
	}
	return buf
}

func decodeEntityMentions(buf []byte) ([]*legalindex.EntityMention, error) {
	n, buf, err := binenc.TakeInt64(buf)
	if err != nil {
		return nil, fmt.Errorf("entity mention count: %w", err)
	}
	out := make([]*legalindex.EntityMention, 0, n)
	for i := int64(0); i < n; i++ {
		var size int64
		if size, buf, err = binenc.TakeInt64(buf); err != nil {
			return nil, fmt.Errorf("entity mention[%d] size: %w", i, err)
		}
		if int64(len(buf)) < size {
			return nil, fmt.Errorf("entity mention[%d]: truncated record", i)
		}
		m, err := legalindex.DecodeEntityMention(buf[:size])
		if err != nil {
			return nil, fmt.Errorf("entity mention[%d]: %w", i, err)
		}
		out = append(out, m)
		buf = buf[size:]
	}
	return out, nil
}

// encodeCitationMentions/decodeCitationMentions mirror the entity-mention
// list encoding for citation mentions.
func encodeCitationMentions(mentions []*legalindex.CitationMention) []byte {
	buf := binenc.PutInt64(nil, int64(len(mentions)))
	for _, m := range mentions {
		enc := legalindex.EncodeCitationMention(m)
		buf = binenc.PutInt64(buf, int64(len(enc)))
		buf = append(buf, enc...)
	}
	return buf
}

func decodeCitationMentions(buf []byte) ([]*legalindex.CitationMention, error) {
	n, buf, err := binenc.TakeInt64(buf)
	if err != nil {
		return nil, fmt.Errorf("citation mention count: %w", err)
	}
	out := make([]*legalindex.CitationMention, 0, n)
	for i := int64(0); i < n; i++ {
		var size int64
		if size, buf, err = binenc.TakeInt64(buf); err != nil {
			return nil, fmt.Errorf("citation mention[%d] size: %w", i, err)
		}
		if int64(len(buf)) < size {
			return nil, fmt.Errorf("citation mention[%d]: truncated record", i)
		}
		m, err := legalindex.DecodeCitationMention(buf[:size])
		if err != nil {
			return nil, fmt.Errorf("citation mention[%d]: %w", i, err)
		}
		out = append(out, m)
		buf = buf[size:]
	}
	return out, nil
}

func sortStrings(s []string) { sort.Strings(s) }

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}
