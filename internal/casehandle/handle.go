package casehandle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/legalcase/caseintel/internal/binenc"
	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/kv"
	"github.com/legalcase/caseintel/internal/legalindex"
	"github.com/legalcase/caseintel/internal/lexical"
	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/legalcase/caseintel/internal/schema"
)

const dbFileName = "case.db"

// Handle opens one case's store and owns it exclusively for its lifetime,
// per spec.md §4.E. Close releases the underlying store.
type Handle struct {
	store *kv.Store
	dir   string
}

// Open opens (creating if absent) the case store rooted at dir, ensuring
// dir and dir/originals exist, and runs schema versioning (§4.B) before
// returning.
func Open(dir string, tuning kv.Tuning) (*Handle, error) {
	if err := os.MkdirAll(filepath.Join(dir, "originals"), 0o755); err != nil {
		return nil, caseerrors.New(caseerrors.ErrCodeCaseDbOpenFailed, "failed to create case directory", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	store, err := kv.Open(dbPath, schema.CaseColumnFamilies, tuning)
	if err != nil {
		return nil, err
	}

	h := &Handle{store: store, dir: dir}
	if err := h.ensureSchemaVersion(dbPath); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := migrateLegacyBleveIndex(store, dir); err != nil {
		_ = store.Close()
		return nil, err
	}
	return h, nil
}

func (h *Handle) ensureSchemaVersion(dbPath string) error {
	raw, ok, err := h.store.Get("metadata", schema.SchemaVersionKey)
	if err != nil {
		return err
	}
	if !ok {
		return h.writeSchemaVersion(schema.CurrentSchemaVersion)
	}

	stored, _, err := takeVersion(raw)
	if err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "corrupt schema_version record", err)
	}
	if stored == schema.CurrentSchemaVersion {
		return nil
	}
	if stored > schema.CurrentSchemaVersion {
		return caseerrors.FutureSchemaVersion(stored, schema.CurrentSchemaVersion)
	}

	// stored < current: back up the store file before migrating, per
	// spec.md §4.B — "copy the store directory to <name>.bak.v{n}". A
	// single SQLite file stands in for the directory copy here.
	backupPath := fmt.Sprintf("%s.bak.v%d", dbPath, stored)
	if raw, err := os.ReadFile(dbPath); err == nil {
		_ = os.WriteFile(backupPath, raw, 0o644)
	}

	if err := schema.Migrate(h.store, stored); err != nil {
		return err
	}
	return h.writeSchemaVersion(schema.CurrentSchemaVersion)
}

func takeVersion(buf []byte) (int, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("truncated version")
	}
	v := int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16 | int(buf[3])<<24
	return v, buf[8:], nil
}

func (h *Handle) writeSchemaVersion(v int) error {
	buf := make([]byte, 8)
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	return h.store.Put("metadata", schema.SchemaVersionKey, buf)
}

// Close releases the underlying store.
func (h *Handle) Close() error { return h.store.Close() }

// CompactAll runs compact_range over every column family, per spec.md §4.E.
func (h *Handle) CompactAll() error {
	for _, cf := range schema.CaseColumnFamilies {
		if err := h.store.CompactRange(cf); err != nil {
			return err
		}
	}
	return nil
}

// RecordSearchActivity timestamps the case's most recent search, read by
// the storage lifecycle's staleness check (spec.md §4.L).
func (h *Handle) RecordSearchActivity(when int64) error {
	return h.store.Put("metadata", schema.LastSearchAtKey, binenc.PutInt64(nil, when))
}

// RecordIngestActivity timestamps the case's most recent ingest.
func (h *Handle) RecordIngestActivity(when int64) error {
	return h.store.Put("metadata", schema.LastIngestAtKey, binenc.PutInt64(nil, when))
}

// LastSearchAt returns the case's most recent search timestamp, if any.
func (h *Handle) LastSearchAt() (int64, bool, error) {
	raw, ok, err := h.store.Get("metadata", schema.LastSearchAtKey)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, _, err := binenc.TakeInt64(raw)
	return v, true, err
}

// LastIngestAt returns the case's most recent ingest timestamp, if any.
func (h *Handle) LastIngestAt() (int64, bool, error) {
	raw, ok, err := h.store.Get("metadata", schema.LastIngestAtKey)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, _, err := binenc.TakeInt64(raw)
	return v, true, err
}

// Destroy closes the handle then removes the case directory entirely.
func (h *Handle) Destroy() error {
	if err := h.Close(); err != nil {
		return err
	}
	if err := os.RemoveAll(h.dir); err != nil {
		return caseerrors.New(caseerrors.ErrCodeStoreIO, "failed to remove case directory", err)
	}
	return nil
}

// OriginalsDir returns the directory originals are copied into when
// copy_originals is enabled.
func (h *Handle) OriginalsDir() string { return filepath.Join(h.dir, "originals") }

// --- Documents ---

// StoreDocument writes (or overwrites) a document record.
func (h *Handle) StoreDocument(doc *Document) error {
	return h.store.Put("documents", schema.DocumentKey(doc.ID), EncodeDocument(doc))
}

// GetDocument reads a document record.
func (h *Handle) GetDocument(id string) (*Document, bool, error) {
	raw, ok, err := h.store.Get("documents", schema.DocumentKey(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	doc, err := DecodeDocument(raw)
	return doc, true, err
}

// ListDocuments returns every document record in the case.
func (h *Handle) ListDocuments() ([]*Document, error) {
	raw, err := h.store.PrefixIter("documents", "doc:")
	if err != nil {
		return nil, err
	}
	out := make([]*Document, 0, len(raw))
	for _, v := range raw {
		doc, err := DecodeDocument(v)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// --- Chunks ---

// StoreChunk writes both the chunk:{id} record and the doc_chunks index
// entry in one atomic batch, per spec.md §4.E.
func (h *Handle) StoreChunk(c *provenance.Chunk) error {
	ops := []kv.Op{
		{CF: "chunks", Key: schema.ChunkKey(c.ID), Value: provenance.EncodeChunk(c)},
		{CF: "chunks", Key: schema.DocChunksKey(c.DocumentID, c.Sequence), Value: []byte(c.ID)},
	}
	return h.store.Batch(ops)
}

// GetChunk reads a chunk record.
func (h *Handle) GetChunk(id string) (*provenance.Chunk, bool, error) {
	raw, ok, err := h.store.Get("chunks", schema.ChunkKey(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	c, err := provenance.DecodeChunk(raw)
	return c, true, err
}

// GetChunkBySequence reads the chunk at sequence seq within docID, if any.
// Used by retrieval's context-attach stage to fetch a result's immediate
// predecessor/successor without loading the whole document's chunk list.
func (h *Handle) GetChunkBySequence(docID string, seq int) (*provenance.Chunk, bool, error) {
	raw, ok, err := h.store.Get("chunks", schema.DocChunksKey(docID, seq))
	if err != nil || !ok {
		return nil, ok, err
	}
	return h.GetChunk(string(raw))
}

// GetDocumentChunks returns every chunk of docID in sequence order.
func (h *Handle) GetDocumentChunks(docID string) ([]*provenance.Chunk, error) {
	ids, err := h.documentChunkIDs(docID)
	if err != nil {
		return nil, err
	}
	out := make([]*provenance.Chunk, 0, len(ids))
	for _, id := range ids {
		c, ok, err := h.GetChunk(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// documentChunkIDs enumerates chunk ids via the doc_chunks prefix, in
// sequence order (the zero-padded key suffix sorts lexicographically in
// sequence order).
func (h *Handle) documentChunkIDs(docID string) ([]string, error) {
	raw, err := h.store.PrefixIter("chunks", schema.DocChunksPrefix(docID))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sortStrings(keys)
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, string(raw[k]))
	}
	return ids, nil
}

// IndexChunkBM25 adds (or, on reindex, replaces) chunkID's BM25 postings.
func (h *Handle) IndexChunkBM25(chunkID, text string) error {
	return lexical.AddChunk(h.store, chunkID, text)
}

// SearchBM25 runs a lexical BM25 search over this case's indexed chunks.
func (h *Handle) SearchBM25(query string, topK int) ([]lexical.ScoredChunk, error) {
	return lexical.Search(h.store, query, topK)
}

// --- Embeddings ---

func (h *Handle) StoreEmbedding(r *provenance.ChunkEmbeddingRecord) error {
	return h.store.Put("embeddings", schema.EmbeddingKey(r.ChunkID), provenance.EncodeChunkEmbeddingRecord(r))
}

func (h *Handle) GetEmbedding(chunkID string) (*provenance.ChunkEmbeddingRecord, bool, error) {
	raw, ok, err := h.store.Get("embeddings", schema.EmbeddingKey(chunkID))
	if err != nil || !ok {
		return nil, ok, err
	}
	r, err := provenance.DecodeChunkEmbeddingRecord(raw)
	return r, true, err
}

func (h *Handle) DeleteEmbedding(chunkID string) error {
	return h.store.Delete("embeddings", schema.EmbeddingKey(chunkID))
}

// ListEmbeddings returns every stored embedding record, for the storage
// lifecycle's strip_embeddings operation (spec.md §4.L), which must visit
// every emb:* record rather than one chunk at a time.
func (h *Handle) ListEmbeddings() ([]*provenance.ChunkEmbeddingRecord, error) {
	raw, err := h.store.PrefixIter("embeddings", "emb:")
	if err != nil {
		return nil, err
	}
	out := make([]*provenance.ChunkEmbeddingRecord, 0, len(raw))
	for _, v := range raw {
		r, err := provenance.DecodeChunkEmbeddingRecord(v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// --- Entities ---

func (h *Handle) StoreEntity(e *legalindex.Entity) error {
	return h.store.Put("entities", schema.EntityKey(e.Canonical), legalindex.EncodeEntity(e))
}

func (h *Handle) GetEntity(canonical string) (*legalindex.Entity, bool, error) {
	raw, ok, err := h.store.Get("entities", schema.EntityKey(canonical))
	if err != nil || !ok {
		return nil, ok, err
	}
	e, err := legalindex.DecodeEntity(raw)
	return e, true, err
}

// ListEntities returns every canonicalized entity in the case, for the
// list_entities tool.
func (h *Handle) ListEntities() ([]*legalindex.Entity, error) {
	raw, err := h.store.PrefixIter("entities", "ent:")
	if err != nil {
		return nil, err
	}
	out := make([]*legalindex.Entity, 0, len(raw))
	for _, v := range raw {
		e, err := legalindex.DecodeEntity(v)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// GetEntityMentions returns every mention of canonical across the case, for
// the get_entity_mentions tool. Walks the reverse ent_chunks index, then
// filters each chunk's forward mention list down to this entity.
func (h *Handle) GetEntityMentions(canonical string) ([]*legalindex.EntityMention, error) {
	chunkIDs, err := h.entityChunks(canonical)
	if err != nil {
		return nil, err
	}
	var out []*legalindex.EntityMention
	for _, chunkID := range chunkIDs {
		mentions, err := h.chunkEntityMentions(chunkID)
		if err != nil {
			return nil, err
		}
		for _, m := range mentions {
			if m.EntityCanonical == canonical {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// StoreEntityMention records one entity mention, updating both the
// chunk_ents (forward) and ent_chunks (reverse) index entries.
func (h *Handle) StoreEntityMention(m *legalindex.EntityMention) error {
	mentions, err := h.chunkEntityMentions(m.ChunkID)
	if err != nil {
		return err
	}
	mentions = append(mentions, m)

	chunks, err := h.entityChunks(m.EntityCanonical)
	if err != nil {
		return err
	}
	chunks = appendUnique(chunks, m.ChunkID)

	ops := []kv.Op{
		{CF: "entity_index", Key: schema.ChunkEntsKey(m.ChunkID), Value: encodeEntityMentions(mentions)},
		{CF: "entity_index", Key: schema.EntChunksKey(m.EntityCanonical), Value: encodeStringList(chunks)},
	}
	return h.store.Batch(ops)
}

// ChunkEntityMentions returns every entity mention attached to chunkID, for
// the find_related_documents tool's entity-overlap ranking.
func (h *Handle) ChunkEntityMentions(chunkID string) ([]*legalindex.EntityMention, error) {
	return h.chunkEntityMentions(chunkID)
}

func (h *Handle) chunkEntityMentions(chunkID string) ([]*legalindex.EntityMention, error) {
	raw, ok, err := h.store.Get("entity_index", schema.ChunkEntsKey(chunkID))
	if err != nil || !ok {
		return nil, err
	}
	return decodeEntityMentions(raw)
}

func (h *Handle) entityChunks(canonical string) ([]string, error) {
	raw, ok, err := h.store.Get("entity_index", schema.EntChunksKey(canonical))
	if err != nil || !ok {
		return nil, err
	}
	return decodeStringList(raw)
}

// deleteChunkEntityMentions removes chunkID's entity mentions and its
// entry in every referenced entity's reverse chunk list.
func (h *Handle) deleteChunkEntityMentions(chunkID string) error {
	mentions, err := h.chunkEntityMentions(chunkID)
	if err != nil {
		return err
	}
	if err := h.store.Delete("entity_index", schema.ChunkEntsKey(chunkID)); err != nil {
		return err
	}
	for _, m := range mentions {
		chunks, err := h.entityChunks(m.EntityCanonical)
		if err != nil {
			return err
		}
		chunks = removeString(chunks, chunkID)
		if len(chunks) == 0 {
			if err := h.store.Delete("entity_index", schema.EntChunksKey(m.EntityCanonical)); err != nil {
				return err
			}
			continue
		}
		if err := h.store.Put("entity_index", schema.EntChunksKey(m.EntityCanonical), encodeStringList(chunks)); err != nil {
			return err
		}
	}
	return nil
}

// --- Citations ---

func (h *Handle) StoreCitation(c *legalindex.LegalCitation) error {
	return h.store.Put("citations", schema.CitationKey(c.Canonical), legalindex.EncodeCitation(c))
}

func (h *Handle) GetCitation(canonical string) (*legalindex.LegalCitation, bool, error) {
	raw, ok, err := h.store.Get("citations", schema.CitationKey(canonical))
	if err != nil || !ok {
		return nil, ok, err
	}
	c, err := legalindex.DecodeCitation(raw)
	return c, true, err
}

// ListCitations returns every canonicalized citation in the case, for the
// list_citations tool.
func (h *Handle) ListCitations() ([]*legalindex.LegalCitation, error) {
	raw, err := h.store.PrefixIter("citations", "cite:")
	if err != nil {
		return nil, err
	}
	out := make([]*legalindex.LegalCitation, 0, len(raw))
	for _, v := range raw {
		c, err := legalindex.DecodeCitation(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// GetCitationReferences returns every mention of canonical across the case,
// for the get_citation_references tool. Mirrors GetEntityMentions.
func (h *Handle) GetCitationReferences(canonical string) ([]*legalindex.CitationMention, error) {
	chunkIDs, err := h.citationChunks(canonical)
	if err != nil {
		return nil, err
	}
	var out []*legalindex.CitationMention
	for _, chunkID := range chunkIDs {
		mentions, err := h.chunkCitationMentions(chunkID)
		if err != nil {
			return nil, err
		}
		for _, m := range mentions {
			if m.CitationCanonical == canonical {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (h *Handle) StoreCitationMention(m *legalindex.CitationMention) error {
	mentions, err := h.chunkCitationMentions(m.ChunkID)
	if err != nil {
		return err
	}
	mentions = append(mentions, m)

	chunks, err := h.citationChunks(m.CitationCanonical)
	if err != nil {
		return err
	}
	chunks = appendUnique(chunks, m.ChunkID)

	ops := []kv.Op{
		{CF: "citation_index", Key: schema.ChunkCitesKey(m.ChunkID), Value: encodeCitationMentions(mentions)},
		{CF: "citation_index", Key: schema.CiteChunksKey(m.CitationCanonical), Value: encodeStringList(chunks)},
	}
	return h.store.Batch(ops)
}

func (h *Handle) chunkCitationMentions(chunkID string) ([]*legalindex.CitationMention, error) {
	raw, ok, err := h.store.Get("citation_index", schema.ChunkCitesKey(chunkID))
	if err != nil || !ok {
		return nil, err
	}
	return decodeCitationMentions(raw)
}

func (h *Handle) citationChunks(canonical string) ([]string, error) {
	raw, ok, err := h.store.Get("citation_index", schema.CiteChunksKey(canonical))
	if err != nil || !ok {
		return nil, err
	}
	return decodeStringList(raw)
}

func (h *Handle) deleteChunkCitationMentions(chunkID string) error {
	mentions, err := h.chunkCitationMentions(chunkID)
	if err != nil {
		return err
	}
	if err := h.store.Delete("citation_index", schema.ChunkCitesKey(chunkID)); err != nil {
		return err
	}
	for _, m := range mentions {
		chunks, err := h.citationChunks(m.CitationCanonical)
		if err != nil {
			return err
		}
		chunks = removeString(chunks, chunkID)
		if len(chunks) == 0 {
			if err := h.store.Delete("citation_index", schema.CiteChunksKey(m.CitationCanonical)); err != nil {
				return err
			}
			continue
		}
		if err := h.store.Put("citation_index", schema.CiteChunksKey(m.CitationCanonical), encodeStringList(chunks)); err != nil {
			return err
		}
	}
	return nil
}

// --- References ---

func (h *Handle) StoreChunkRefs(chunkID string, refs []string) error {
	return h.store.Put("references", schema.ChunkRefsKey(chunkID), encodeStringList(refs))
}

func (h *Handle) GetChunkRefs(chunkID string) ([]string, error) {
	raw, ok, err := h.store.Get("references", schema.ChunkRefsKey(chunkID))
	if err != nil || !ok {
		return nil, err
	}
	return decodeStringList(raw)
}

func (h *Handle) deleteChunkRefs(chunkID string) error {
	return h.store.Delete("references", schema.ChunkRefsKey(chunkID))
}

// --- DeleteDocument cascade ---

// DeleteDocument cascades deterministically per spec.md §4.E: (1) enumerate
// chunks via doc_chunks; (2) strip each chunk's embeddings, entity/citation
// index entries, references, and bm25 postings; (3) delete the chunk
// records and the document record in one atomic batch; (4) delete the
// doc_chunks range; (5) delete any original file copy; (6) compact affected
// CFs in the background.
//
// Step (2) applies index-side cleanup ahead of the atomic batch rather than
// inside a single database transaction spanning every CF: each of those
// cleanup calls is individually idempotent (removing an already-absent
// entry is a no-op), so a crash between them and the batch leaves at worst
// harmless orphaned index entries, never a half-deleted document — retrying
// DeleteDocument from scratch completes cleanly, satisfying spec.md §7's
// "idempotent on retry" allowance. Only step (3) — removing the chunk
// records and the document record, the state that actually makes a
// document "appear deleted" to readers — is a single atomic batch; the
// doc_chunks range is removed right after it, and a crash in between
// leaves only doc_chunks entries that a retry clears.
func (h *Handle) DeleteDocument(docID string) error {
	chunkIDs, err := h.documentChunkIDs(docID)
	if err != nil {
		return fmt.Errorf("enumerating chunks: %w", err)
	}

	for _, chunkID := range chunkIDs {
		if err := h.DeleteEmbedding(chunkID); err != nil {
			return fmt.Errorf("deleting embedding for %q: %w", chunkID, err)
		}
		if err := h.deleteChunkEntityMentions(chunkID); err != nil {
			return fmt.Errorf("deleting entity mentions for %q: %w", chunkID, err)
		}
		if err := h.deleteChunkCitationMentions(chunkID); err != nil {
			return fmt.Errorf("deleting citation mentions for %q: %w", chunkID, err)
		}
		if err := h.deleteChunkRefs(chunkID); err != nil {
			return fmt.Errorf("deleting references for %q: %w", chunkID, err)
		}
		if err := lexical.RemoveChunk(h.store, chunkID); err != nil {
			return fmt.Errorf("deleting bm25 postings for %q: %w", chunkID, err)
		}
	}

	doc, docFound, docErr := h.GetDocument(docID)

	ops := make([]kv.Op, 0, len(chunkIDs)+1)
	for _, chunkID := range chunkIDs {
		ops = append(ops, kv.Op{CF: "chunks", Key: schema.ChunkKey(chunkID), Value: nil})
	}
	ops = append(ops, kv.Op{CF: "documents", Key: schema.DocumentKey(docID), Value: nil})
	if err := h.store.Batch(ops); err != nil {
		return fmt.Errorf("deleting chunk and document records: %w", err)
	}
	if err := h.store.DeletePrefix("chunks", schema.DocChunksPrefix(docID)); err != nil {
		return fmt.Errorf("deleting doc_chunks index: %w", err)
	}

	if docErr == nil && docFound && doc.SourceFile != "" {
		_ = os.Remove(filepath.Join(h.OriginalsDir(), filepath.Base(doc.SourceFile)))
	}

	go func() {
		for _, cf := range []string{"chunks", "embeddings", "bm25_index", "entity_index", "citation_index", "references", "documents"} {
			_ = h.store.CompactRange(cf)
		}
	}()

	return nil
}
