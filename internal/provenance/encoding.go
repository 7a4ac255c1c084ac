package provenance

import (
	"fmt"

	"github.com/legalcase/caseintel/internal/binenc"
)

// EncodeProvenance serializes p to its fixed binary form. Every stored
// record uses this same primitive set (internal/binenc) so that
// deserialize(serialize(x)) == x bit-for-bit for every field — enforced as a
// property test in encoding_test.go.
func EncodeProvenance(p *Provenance) []byte {
	buf := make([]byte, 0, 128+len(p.DocumentName)+len(p.SourceFile)+len(p.LegalSection))
	buf = binenc.PutString(buf, p.DocumentID)
	buf = binenc.PutString(buf, p.DocumentName)
	buf = binenc.PutString(buf, p.SourceFile)
	buf = binenc.PutInt64(buf, int64(p.Page))
	buf = binenc.PutInt64(buf, int64(p.ParagraphStart))
	buf = binenc.PutInt64(buf, int64(p.ParagraphEnd))
	buf = binenc.PutInt64(buf, int64(p.LineStart))
	buf = binenc.PutInt64(buf, int64(p.LineEnd))
	buf = binenc.PutInt64(buf, p.CharStart)
	buf = binenc.PutInt64(buf, p.CharEnd)
	buf = binenc.PutString(buf, p.LegalSection)
	buf = binenc.PutString(buf, string(p.ExtractionMethod))
	buf = binenc.PutFloat64(buf, p.OCRConfidence)
	buf = binenc.PutInt64(buf, int64(p.ChunkPosition))
	buf = binenc.PutInt64(buf, p.CreatedAt)
	buf = binenc.PutInt64(buf, p.LastEmbeddedAt)
	return buf
}

// DecodeProvenance parses a buffer produced by EncodeProvenance.
func DecodeProvenance(buf []byte) (*Provenance, error) {
	var p Provenance
	var err error

	if p.DocumentID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("document_id: %w", err)
	}
	if p.DocumentName, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("document_name: %w", err)
	}
	if p.SourceFile, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("source_file: %w", err)
	}

	var v int64
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	p.Page = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("paragraph_start: %w", err)
	}
	p.ParagraphStart = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("paragraph_end: %w", err)
	}
	p.ParagraphEnd = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("line_start: %w", err)
	}
	p.LineStart = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("line_end: %w", err)
	}
	p.LineEnd = int(v)
	if p.CharStart, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("char_start: %w", err)
	}
	if p.CharEnd, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("char_end: %w", err)
	}
	if p.LegalSection, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("legal_section: %w", err)
	}

	var method string
	if method, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("extraction_method: %w", err)
	}
	p.ExtractionMethod = ExtractionMethod(method)

	if p.OCRConfidence, buf, err = binenc.TakeFloat64(buf); err != nil {
		return nil, fmt.Errorf("ocr_confidence: %w", err)
	}
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("chunk_position: %w", err)
	}
	p.ChunkPosition = int(v)
	if p.CreatedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if p.LastEmbeddedAt, _, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("last_embedded_at: %w", err)
	}

	return &p, nil
}

// EncodeChunk serializes a Chunk, embedding its Provenance inline.
func EncodeChunk(c *Chunk) []byte {
	buf := make([]byte, 0, 256+len(c.Text))
	buf = binenc.PutString(buf, c.ID)
	buf = binenc.PutString(buf, c.DocumentID)
	buf = binenc.PutInt64(buf, int64(c.Sequence))
	buf = binenc.PutString(buf, c.Text)
	buf = binenc.PutInt64(buf, c.CreatedAt)
	buf = binenc.PutInt64(buf, c.LastEmbeddedAt)
	buf = binenc.PutStringSlice(buf, c.Embedders)
	buf = append(buf, EncodeProvenance(&c.Provenance)...)
	return buf
}

// DecodeChunk parses a buffer produced by EncodeChunk.
func DecodeChunk(buf []byte) (*Chunk, error) {
	var c Chunk
	var err error

	if c.ID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if c.DocumentID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("document_id: %w", err)
	}

	var v int64
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}
	c.Sequence = int(v)
	if c.Text, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	if c.CreatedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if c.LastEmbeddedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("last_embedded_at: %w", err)
	}
	if c.Embedders, buf, err = binenc.TakeStringSlice(buf); err != nil {
		return nil, fmt.Errorf("embedders: %w", err)
	}

	prov, err := DecodeProvenance(buf)
	if err != nil {
		return nil, fmt.Errorf("provenance: %w", err)
	}
	c.Provenance = *prov

	return &c, nil
}

// EncodeChunkEmbeddingRecord serializes a ChunkEmbeddingRecord. A presence
// byte immediately before each optional slot marks it absent (0) or present
// (1, followed by the slot's payload).
func EncodeChunkEmbeddingRecord(r *ChunkEmbeddingRecord) []byte {
	buf := make([]byte, 0, 256+len(r.Text))
	buf = binenc.PutString(buf, r.ChunkID)
	buf = binenc.PutString(buf, r.Text)
	buf = binenc.PutString(buf, string(EncodeProvenance(&r.Provenance)))

	if r.Dense == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = binenc.PutFloat32Slice(buf, r.Dense)
	}

	if r.Sparse == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = binenc.PutUint32Slice(buf, r.Sparse.Indices)
		buf = binenc.PutFloat32Slice(buf, r.Sparse.Values)
	}

	if r.Token == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = binenc.PutInt64(buf, int64(r.Token.Rows))
		buf = binenc.PutInt64(buf, int64(r.Token.Cols))
		buf = binenc.PutFloat32Slice(buf, r.Token.Data)
	}

	return buf
}

// DecodeChunkEmbeddingRecord parses a buffer produced by
// EncodeChunkEmbeddingRecord.
func DecodeChunkEmbeddingRecord(buf []byte) (*ChunkEmbeddingRecord, error) {
	var r ChunkEmbeddingRecord
	var err error

	if r.ChunkID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("chunk_id: %w", err)
	}
	if r.Text, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}

	var provBytes string
	if provBytes, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("provenance block: %w", err)
	}
	prov, err := DecodeProvenance([]byte(provBytes))
	if err != nil {
		return nil, fmt.Errorf("provenance: %w", err)
	}
	r.Provenance = *prov

	if len(buf) < 1 {
		return nil, fmt.Errorf("truncated dense presence flag")
	}
	hasDense := buf[0]
	buf = buf[1:]
	if hasDense == 1 {
		if r.Dense, buf, err = binenc.TakeFloat32Slice(buf); err != nil {
			return nil, fmt.Errorf("dense: %w", err)
		}
	}

	if len(buf) < 1 {
		return nil, fmt.Errorf("truncated sparse presence flag")
	}
	hasSparse := buf[0]
	buf = buf[1:]
	if hasSparse == 1 {
		var idx []uint32
		var vals []float32
		if idx, buf, err = binenc.TakeUint32Slice(buf); err != nil {
			return nil, fmt.Errorf("sparse indices: %w", err)
		}
		if vals, buf, err = binenc.TakeFloat32Slice(buf); err != nil {
			return nil, fmt.Errorf("sparse values: %w", err)
		}
		r.Sparse = &SparseVector{Indices: idx, Values: vals}
	}

	if len(buf) < 1 {
		return nil, fmt.Errorf("truncated token presence flag")
	}
	hasToken := buf[0]
	buf = buf[1:]
	if hasToken == 1 {
		var rows, cols int64
		if rows, buf, err = binenc.TakeInt64(buf); err != nil {
			return nil, fmt.Errorf("token rows: %w", err)
		}
		if cols, buf, err = binenc.TakeInt64(buf); err != nil {
			return nil, fmt.Errorf("token cols: %w", err)
		}
		var data []float32
		if data, _, err = binenc.TakeFloat32Slice(buf); err != nil {
			return nil, fmt.Errorf("token data: %w", err)
		}
		r.Token = &TokenMatrix{Rows: int(rows), Cols: int(cols), Data: data}
	}

	return &r, nil
}
