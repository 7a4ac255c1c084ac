// Package provenance defines the immutable chunk/provenance record and its
// binary serialization. Every chunk carries a Provenance; every stored
// embedding keys a chunk that exists — no embedding is ever written without
// its chunk, no chunk without provenance.
package provenance

// ExtractionMethod records how a document's text was obtained.
type ExtractionMethod string

const (
	ExtractionNative ExtractionMethod = "native"
	ExtractionOCR    ExtractionMethod = "ocr"
	ExtractionHybrid ExtractionMethod = "hybrid"
	ExtractionEmail  ExtractionMethod = "email"
)

// Provenance is the central invariant-carrying structure: it traces a chunk
// of text back to its source document. Ingestion estimates Page by
// interpolation, sets CharStart/CharEnd as byte offsets into the document's
// whole extracted text rather than into the page, and leaves the paragraph
// and line ranges zero.
type Provenance struct {
	DocumentID   string
	DocumentName string
	SourceFile   string // optional, empty if not recorded

	Page int // 1-indexed

	ParagraphStart int // inclusive
	ParagraphEnd   int // inclusive
	LineStart      int // inclusive
	LineEnd        int // inclusive

	CharStart int64 // byte offset into the document's extracted text
	CharEnd   int64

	LegalSection string // optional label, e.g. "Section 4.2"

	ExtractionMethod ExtractionMethod
	OCRConfidence    float64 // -1 when not applicable, else in [0,1]

	ChunkPosition int // sequence within document

	CreatedAt      int64 // seconds since epoch
	LastEmbeddedAt int64 // 0 if never embedded
}

// Chunk is a contiguous span of document text with its embedding coverage
// and embedded Provenance.
type Chunk struct {
	ID         string
	DocumentID string
	Sequence   int // starting at 0, contiguous within a document
	Text       string

	CreatedAt      int64
	LastEmbeddedAt int64

	Embedders  []string // which embedders have covered this chunk: "dense", "sparse", "token"
	Provenance Provenance
}

// SparseVector is a learned-sparse embedding stored as parallel sorted
// index/value arrays.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// TokenMatrix is a per-token embedding matrix, N rows (tokens, N<=512) by D
// columns (dimension), stored row-major.
type TokenMatrix struct {
	Rows int
	Cols int
	Data []float32 // len == Rows*Cols
}

// ChunkEmbeddingRecord bundles every embedding modality for one chunk plus a
// copy of its text and provenance, so "all vectors for this chunk" is a
// single-key read.
type ChunkEmbeddingRecord struct {
	ChunkID    string
	Text       string
	Provenance Provenance

	Dense  []float32     // nil if not configured; L2-normalized when present
	Sparse *SparseVector // nil if not configured
	Token  *TokenMatrix  // nil if not configured
}

// HasEmbedding reports whether any embedding slot is populated.
func (r *ChunkEmbeddingRecord) HasEmbedding() bool {
	return r.Dense != nil || r.Sparse != nil || r.Token != nil
}
