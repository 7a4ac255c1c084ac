package legalindex

import (
	"fmt"

	"github.com/legalcase/caseintel/internal/binenc"
)

func encodeParsedFields(buf []byte, f ParsedFields) []byte {
	buf = binenc.PutStringSlice(buf, f.Parties)
	buf = binenc.PutString(buf, f.Reporter)
	buf = binenc.PutInt64(buf, int64(f.Volume))
	buf = binenc.PutInt64(buf, int64(f.Page))
	buf = binenc.PutString(buf, f.Court)
	buf = binenc.PutInt64(buf, int64(f.Year))
	buf = binenc.PutString(buf, f.Pinpoint)
	return buf
}

func decodeParsedFields(buf []byte) (ParsedFields, []byte, error) {
	var f ParsedFields
	var err error
	if f.Parties, buf, err = binenc.TakeStringSlice(buf); err != nil {
		return f, nil, fmt.Errorf("parties: %w", err)
	}
	if f.Reporter, buf, err = binenc.TakeString(buf); err != nil {
		return f, nil, fmt.Errorf("reporter: %w", err)
	}
	var v int64
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return f, nil, fmt.Errorf("volume: %w", err)
	}
	f.Volume = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return f, nil, fmt.Errorf("page: %w", err)
	}
	f.Page = int(v)
	if f.Court, buf, err = binenc.TakeString(buf); err != nil {
		return f, nil, fmt.Errorf("court: %w", err)
	}
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return f, nil, fmt.Errorf("year: %w", err)
	}
	f.Year = int(v)
	if f.Pinpoint, buf, err = binenc.TakeString(buf); err != nil {
		return f, nil, fmt.Errorf("pinpoint: %w", err)
	}
	return f, buf, nil
}

// EncodeCitation serializes a LegalCitation to its fixed binary form.
func EncodeCitation(c *LegalCitation) []byte {
	buf := make([]byte, 0, 128+len(c.Canonical))
	buf = binenc.PutString(buf, c.Canonical)
	buf = binenc.PutString(buf, string(c.Type))
	buf = encodeParsedFields(buf, c.Fields)
	return buf
}

// DecodeCitation parses a buffer produced by EncodeCitation.
func DecodeCitation(buf []byte) (*LegalCitation, error) {
	var c LegalCitation
	var err error
	if c.Canonical, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	var t string
	if t, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	c.Type = CitationType(t)
	if c.Fields, _, err = decodeParsedFields(buf); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	return &c, nil
}

// EncodeCitationMention serializes a CitationMention.
func EncodeCitationMention(m *CitationMention) []byte {
	buf := make([]byte, 0, 64+len(m.Context))
	buf = binenc.PutString(buf, m.CitationCanonical)
	buf = binenc.PutString(buf, m.ChunkID)
	buf = binenc.PutInt64(buf, m.CharStart)
	buf = binenc.PutInt64(buf, m.CharEnd)
	buf = binenc.PutString(buf, string(m.Treatment))
	buf = binenc.PutString(buf, m.Context)
	return buf
}

// DecodeCitationMention parses a buffer produced by EncodeCitationMention.
func DecodeCitationMention(buf []byte) (*CitationMention, error) {
	var m CitationMention
	var err error
	if m.CitationCanonical, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("citation_canonical: %w", err)
	}
	if m.ChunkID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("chunk_id: %w", err)
	}
	if m.CharStart, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("char_start: %w", err)
	}
	if m.CharEnd, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("char_end: %w", err)
	}
	var treatment string
	if treatment, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("treatment: %w", err)
	}
	m.Treatment = TreatmentTag(treatment)
	if m.Context, _, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	return &m, nil
}

// EncodeEntity serializes an Entity.
func EncodeEntity(e *Entity) []byte {
	buf := make([]byte, 0, 96+len(e.Canonical))
	buf = binenc.PutString(buf, e.Canonical)
	buf = binenc.PutString(buf, string(e.Type))
	buf = binenc.PutStringSlice(buf, e.Aliases)
	buf = binenc.PutInt64(buf, int64(e.MentionCount))
	buf = binenc.PutString(buf, e.FirstSeen.ChunkID)
	buf = binenc.PutInt64(buf, e.FirstSeen.CharStart)
	buf = binenc.PutInt64(buf, e.FirstSeen.CharEnd)
	return buf
}

// DecodeEntity parses a buffer produced by EncodeEntity.
func DecodeEntity(buf []byte) (*Entity, error) {
	var e Entity
	var err error
	if e.Canonical, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	var t string
	if t, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	e.Type = EntityType(t)
	if e.Aliases, buf, err = binenc.TakeStringSlice(buf); err != nil {
		return nil, fmt.Errorf("aliases: %w", err)
	}
	var v int64
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("mention_count: %w", err)
	}
	e.MentionCount = int(v)
	if e.FirstSeen.ChunkID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("first_seen.chunk_id: %w", err)
	}
	if e.FirstSeen.CharStart, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("first_seen.char_start: %w", err)
	}
	if e.FirstSeen.CharEnd, _, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("first_seen.char_end: %w", err)
	}
	return &e, nil
}

// EncodeEntityMention serializes an EntityMention.
func EncodeEntityMention(m *EntityMention) []byte {
	buf := make([]byte, 0, 64)
	buf = binenc.PutString(buf, m.EntityCanonical)
	buf = binenc.PutString(buf, m.ChunkID)
	buf = binenc.PutInt64(buf, m.CharStart)
	buf = binenc.PutInt64(buf, m.CharEnd)
	return buf
}

// DecodeEntityMention parses a buffer produced by EncodeEntityMention.
func DecodeEntityMention(buf []byte) (*EntityMention, error) {
	var m EntityMention
	var err error
	if m.EntityCanonical, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("entity_canonical: %w", err)
	}
	if m.ChunkID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("chunk_id: %w", err)
	}
	if m.CharStart, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("char_start: %w", err)
	}
	if m.CharEnd, _, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("char_end: %w", err)
	}
	return &m, nil
}
