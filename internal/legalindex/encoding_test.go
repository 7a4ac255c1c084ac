package legalindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitation_RoundTrip(t *testing.T) {
	c := &LegalCitation{
		Canonical: "410 U.S. 113",
		Type:      CitationCaseLaw,
		Fields: ParsedFields{
			Parties:  []string{"Roe", "Wade"},
			Reporter: "U.S.",
			Volume:   410,
			Page:     113,
			Court:    "Supreme Court",
			Year:     1973,
			Pinpoint: "116",
		},
	}
	buf := EncodeCitation(c)
	got, err := DecodeCitation(buf)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestCitation_RoundTripEmptyFields(t *testing.T) {
	c := &LegalCitation{Canonical: "Fed. R. Civ. P. 12(b)(6)", Type: CitationRule}
	buf := EncodeCitation(c)
	got, err := DecodeCitation(buf)
	require.NoError(t, err)
	assert.Equal(t, c.Canonical, got.Canonical)
	assert.Equal(t, c.Type, got.Type)
	assert.Empty(t, got.Fields.Parties)
}

func TestCitationMention_RoundTrip(t *testing.T) {
	m := &CitationMention{
		CitationCanonical: "410 U.S. 113",
		ChunkID:           "chunk-1",
		CharStart:         10,
		CharEnd:           25,
		Treatment:         TreatmentFollows,
		Context:           "...as held in Roe v. Wade...",
	}
	buf := EncodeCitationMention(m)
	got, err := DecodeCitationMention(buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestEntity_RoundTrip(t *testing.T) {
	e := &Entity{
		Canonical:    "Jane Doe",
		Type:         EntityPerson,
		Aliases:      []string{"J. Doe", "Ms. Doe"},
		MentionCount: 7,
		FirstSeen:    Reference{ChunkID: "chunk-1", CharStart: 0, CharEnd: 8},
	}
	buf := EncodeEntity(e)
	got, err := DecodeEntity(buf)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEntityMention_RoundTrip(t *testing.T) {
	m := &EntityMention{EntityCanonical: "Jane Doe", ChunkID: "chunk-2", CharStart: 5, CharEnd: 13}
	buf := EncodeEntityMention(m)
	got, err := DecodeEntityMention(buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestDecodeCitation_TruncatedBufferErrors(t *testing.T) {
	c := &LegalCitation{Canonical: "abc", Type: CitationStatute}
	buf := EncodeCitation(c)
	_, err := DecodeCitation(buf[:len(buf)-2])
	assert.Error(t, err)
}
