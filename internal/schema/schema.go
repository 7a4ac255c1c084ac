// Package schema declares the column families, key encodings, and schema
// version for both the per-case store and the top-level registry store.
package schema

import "fmt"

// CurrentSchemaVersion is the schema version this build writes and expects.
// A stored version greater than this is fatal (FutureSchemaVersion); a
// stored version lower than this triggers a backup-then-migrate sequence.
const CurrentSchemaVersion = 1

// CaseColumnFamilies lists the 15 column families declared per case,
// per spec.md §4.B.
var CaseColumnFamilies = []string{
	"documents",
	"chunks",
	"embeddings",
	"bm25_index",
	"metadata",
	"citations",
	"citation_index",
	"citation_graph",
	"entities",
	"entity_index",
	"references",
	"doc_graph",
	"chunk_graph",
	"knowledge_graph",
	"case_map",
}

// RegistryColumnFamilies lists the column families in the top-level
// registry store (outside any case directory).
var RegistryColumnFamilies = []string{
	"cases",
	"meta",
}

// Key-encoding helpers. All keys are UTF-8 byte strings with literal
// prefixes per spec.md §6, so two callers building the "same" key always
// agree on bytes.

func DocumentKey(docID string) string { return "doc:" + docID }

func ChunkKey(chunkID string) string { return "chunk:" + chunkID }

// DocChunksPrefix is the prefix enumerating all chunk ids of a document in
// sequence order; DocChunksKey appends the zero-padded sequence number.
func DocChunksPrefix(docID string) string { return "doc_chunks:" + docID + ":" }

func DocChunksKey(docID string, seq int) string {
	return fmt.Sprintf("doc_chunks:%s:%06d", docID, seq)
}

func EmbeddingKey(chunkID string) string { return "emb:" + chunkID }

func TermKey(term string) string { return "term:" + term }

func ChunkEntsKey(chunkID string) string { return "chunk_ents:" + chunkID }

func EntChunksKey(canonical string) string { return "ent_chunks:" + canonical }

func ChunkCitesKey(chunkID string) string { return "chunk_cites:" + chunkID }

func CiteChunksKey(canonical string) string { return "cite_chunks:" + canonical }

func ChunkRefsKey(chunkID string) string { return "chunk_refs:" + chunkID }

func ChunkBM25TermsKey(chunkID string) string { return "chunk_bm25_terms:" + chunkID }

func EntityKey(canonical string) string { return "ent:" + canonical }

func CitationKey(canonical string) string { return "cite:" + canonical }

// LastSearchAtKey and LastIngestAtKey are metadata CF keys recording unix
// timestamps of a case's most recent search/ingest activity, used by the
// storage lifecycle's staleness check.
const (
	LastSearchAtKey = "last_search_at"
	LastIngestAtKey = "last_ingest_at"
)

func CaseKey(caseID string) string { return "case:" + caseID }

// SchemaVersionKey is the metadata key holding the stored schema version
// integer, encoded as 8 bytes little-endian.
const SchemaVersionKey = "schema_version"

// ActiveCaseKey is the registry metadata key holding the active case id, or
// absent/empty when no case is active.
const ActiveCaseKey = "active_case_id"
