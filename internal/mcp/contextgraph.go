package mcp

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetCaseSummaryOutput is the output schema for get_case_summary.
type GetCaseSummaryOutput struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
	EntityCount   int `json:"entity_count"`
	CitationCount int `json:"citation_count"`
}

func (s *Server) handleGetCaseSummary(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, GetCaseSummaryOutput, error) {
	if in.CaseID == "" {
		return nil, GetCaseSummaryOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetCaseSummaryOutput{}, MapError(err)
	}
	docs, err := h.ListDocuments()
	if err != nil {
		return nil, GetCaseSummaryOutput{}, MapError(err)
	}
	entities, err := h.ListEntities()
	if err != nil {
		return nil, GetCaseSummaryOutput{}, MapError(err)
	}
	citations, err := h.ListCitations()
	if err != nil {
		return nil, GetCaseSummaryOutput{}, MapError(err)
	}
	chunkCount := 0
	for _, d := range docs {
		chunkCount += d.ChunkCount
	}
	return nil, GetCaseSummaryOutput{
		DocumentCount: len(docs),
		ChunkCount:    chunkCount,
		EntityCount:   len(entities),
		CitationCount: len(citations),
	}, nil
}

// ListCitationsOutput is the output schema for list_citations.
type ListCitationsOutput struct {
	Citations []CitationOutput `json:"citations"`
}

func (s *Server) handleListCitations(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, ListCitationsOutput, error) {
	if in.CaseID == "" {
		return nil, ListCitationsOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, ListCitationsOutput{}, MapError(err)
	}
	citations, err := h.ListCitations()
	if err != nil {
		return nil, ListCitationsOutput{}, MapError(err)
	}
	out := make([]CitationOutput, len(citations))
	for i, c := range citations {
		out[i] = toCitationOutput(c)
	}
	return nil, ListCitationsOutput{Citations: out}, nil
}

// CitationReferenceInput is the input schema for get_citation_references.
type CitationReferenceInput struct {
	CaseID    string `json:"case_id"`
	Canonical string `json:"canonical" jsonschema:"the citation's canonical form, as returned by list_citations"`
}

// CitationReferenceOutput is one mention of a citation.
type CitationReferenceOutput struct {
	ChunkID   string `json:"chunk_id"`
	CharStart int64  `json:"char_start"`
	CharEnd   int64  `json:"char_end"`
	Treatment string `json:"treatment"`
	Context   string `json:"context,omitempty"`
}

// GetCitationReferencesOutput is the output schema for get_citation_references.
type GetCitationReferencesOutput struct {
	References []CitationReferenceOutput `json:"references"`
}

func (s *Server) handleGetCitationReferences(ctx context.Context, _ *mcp.CallToolRequest, in CitationReferenceInput) (*mcp.CallToolResult, GetCitationReferencesOutput, error) {
	if in.CaseID == "" || in.Canonical == "" {
		return nil, GetCitationReferencesOutput{}, NewInvalidParamsError("case_id and canonical are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetCitationReferencesOutput{}, MapError(err)
	}
	if _, ok, err := h.GetCitation(in.Canonical); err != nil {
		return nil, GetCitationReferencesOutput{}, MapError(err)
	} else if !ok {
		return nil, GetCitationReferencesOutput{}, MapError(citationNotFoundError(in.Canonical))
	}
	mentions, err := h.GetCitationReferences(in.Canonical)
	if err != nil {
		return nil, GetCitationReferencesOutput{}, MapError(err)
	}
	out := make([]CitationReferenceOutput, len(mentions))
	for i, m := range mentions {
		out[i] = CitationReferenceOutput{
			ChunkID:   m.ChunkID,
			CharStart: m.CharStart,
			CharEnd:   m.CharEnd,
			Treatment: string(m.Treatment),
			Context:   m.Context,
		}
	}
	return nil, GetCitationReferencesOutput{References: out}, nil
}

// ListEntitiesOutput is the output schema for list_entities.
type ListEntitiesOutput struct {
	Entities []EntityOutput `json:"entities"`
}

func (s *Server) handleListEntities(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, ListEntitiesOutput, error) {
	if in.CaseID == "" {
		return nil, ListEntitiesOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, ListEntitiesOutput{}, MapError(err)
	}
	entities, err := h.ListEntities()
	if err != nil {
		return nil, ListEntitiesOutput{}, MapError(err)
	}
	out := make([]EntityOutput, len(entities))
	for i, e := range entities {
		out[i] = toEntityOutput(e)
	}
	return nil, ListEntitiesOutput{Entities: out}, nil
}

// EntityMentionInput is the input schema for get_entity_mentions.
type EntityMentionInput struct {
	CaseID    string `json:"case_id"`
	Canonical string `json:"canonical" jsonschema:"the entity's canonical form, as returned by list_entities"`
}

// EntityMentionOutput is one mention of an entity.
type EntityMentionOutput struct {
	ChunkID   string `json:"chunk_id"`
	CharStart int64  `json:"char_start"`
	CharEnd   int64  `json:"char_end"`
}

// GetEntityMentionsOutput is the output schema for get_entity_mentions.
type GetEntityMentionsOutput struct {
	Mentions []EntityMentionOutput `json:"mentions"`
}

func (s *Server) handleGetEntityMentions(ctx context.Context, _ *mcp.CallToolRequest, in EntityMentionInput) (*mcp.CallToolResult, GetEntityMentionsOutput, error) {
	if in.CaseID == "" || in.Canonical == "" {
		return nil, GetEntityMentionsOutput{}, NewInvalidParamsError("case_id and canonical are required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetEntityMentionsOutput{}, MapError(err)
	}
	if _, ok, err := h.GetEntity(in.Canonical); err != nil {
		return nil, GetEntityMentionsOutput{}, MapError(err)
	} else if !ok {
		return nil, GetEntityMentionsOutput{}, MapError(entityNotFoundError(in.Canonical))
	}
	mentions, err := h.GetEntityMentions(in.Canonical)
	if err != nil {
		return nil, GetEntityMentionsOutput{}, MapError(err)
	}
	out := make([]EntityMentionOutput, len(mentions))
	for i, m := range mentions {
		out[i] = EntityMentionOutput{ChunkID: m.ChunkID, CharStart: m.CharStart, CharEnd: m.CharEnd}
	}
	return nil, GetEntityMentionsOutput{Mentions: out}, nil
}

// FindRelatedDocumentsInput is the input schema for find_related_documents.
type FindRelatedDocumentsInput struct {
	CaseID     string `json:"case_id"`
	DocumentID string `json:"document_id"`
	K          int    `json:"k,omitempty" jsonschema:"max number of related documents to return, default 10"`
}

// RelatedDocumentOutput is one document ranked by the RRF fusion of shared
// entity mentions and document-embedding similarity.
type RelatedDocumentOutput struct {
	Document       DocumentOutput `json:"document"`
	SharedEntities int            `json:"shared_entities"`
}

// FindRelatedDocumentsOutput is the output schema for find_related_documents.
type FindRelatedDocumentsOutput struct {
	Related []RelatedDocumentOutput `json:"related"`
}

// handleFindRelatedDocuments ranks other documents in the case by how
// related they are to the given document, fusing two independent signals:
// shared entity mentions (walk the source document's chunks, collect every
// entity canonical they mention, then for each canonical walk every chunk
// that mentions it elsewhere in the case and tally the owning document) and
// embedding-centroid similarity (each document's chunk dense embeddings are
// averaged into one centroid vector, and an ephemeral coder/hnsw graph over
// every other document's centroid is queried for nearest neighbors to the
// source document's centroid). There is no persisted document-to-document
// graph for either signal; both are computed on the fly from the existing
// entity-mention and embedding indexes and combined via Reciprocal Rank
// Fusion, the same technique internal/retrieval uses to combine dense and
// sparse chunk recall.
func (s *Server) handleFindRelatedDocuments(ctx context.Context, _ *mcp.CallToolRequest, in FindRelatedDocumentsInput) (*mcp.CallToolResult, FindRelatedDocumentsOutput, error) {
	if in.CaseID == "" || in.DocumentID == "" {
		return nil, FindRelatedDocumentsOutput{}, NewInvalidParamsError("case_id and document_id are required")
	}
	k := in.K
	if k <= 0 {
		k = 10
	}

	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, FindRelatedDocumentsOutput{}, MapError(err)
	}
	if _, ok, err := h.GetDocument(in.DocumentID); err != nil {
		return nil, FindRelatedDocumentsOutput{}, MapError(err)
	} else if !ok {
		return nil, FindRelatedDocumentsOutput{}, MapError(documentNotFoundError(in.DocumentID))
	}

	chunks, err := h.GetDocumentChunks(in.DocumentID)
	if err != nil {
		return nil, FindRelatedDocumentsOutput{}, MapError(err)
	}

	canonicals := make(map[string]bool)
	for _, c := range chunks {
		mentions, err := h.ChunkEntityMentions(c.ID)
		if err != nil {
			return nil, FindRelatedDocumentsOutput{}, MapError(err)
		}
		for _, m := range mentions {
			canonicals[m.EntityCanonical] = true
		}
	}

	counts := make(map[string]int)
	for canonical := range canonicals {
		mentions, err := h.GetEntityMentions(canonical)
		if err != nil {
			return nil, FindRelatedDocumentsOutput{}, MapError(err)
		}
		seenDocsForEntity := make(map[string]bool)
		for _, m := range mentions {
			chunk, ok, err := h.GetChunk(m.ChunkID)
			if err != nil {
				return nil, FindRelatedDocumentsOutput{}, MapError(err)
			}
			if !ok || chunk.DocumentID == in.DocumentID {
				continue
			}
			if seenDocsForEntity[chunk.DocumentID] {
				continue
			}
			seenDocsForEntity[chunk.DocumentID] = true
			counts[chunk.DocumentID]++
		}
	}

	type ranked struct {
		docID string
		count int
	}
	entityList := make([]ranked, 0, len(counts))
	for docID, count := range counts {
		entityList = append(entityList, ranked{docID, count})
	}
	sort.Slice(entityList, func(i, j int) bool {
		if entityList[i].count != entityList[j].count {
			return entityList[i].count > entityList[j].count
		}
		return entityList[i].docID < entityList[j].docID
	})
	entityRanked := make([]string, len(entityList))
	for i, r := range entityList {
		entityRanked[i] = r.docID
	}

	var embedRanked []string
	centroids, err := documentCentroids(h)
	if err != nil {
		return nil, FindRelatedDocumentsOutput{}, MapError(err)
	}
	if query, ok := centroids[in.DocumentID]; ok {
		candidates := make(map[string][]float32, len(centroids))
		for docID, vec := range centroids {
			if docID != in.DocumentID {
				candidates[docID] = vec
			}
		}
		embedRanked = rankByCentroidSimilarity(candidates, query, maxInt(k*2, len(candidates)))
	}

	fused := fuseRelatedDocumentRanks(entityRanked, embedRanked)
	order := sortByScoreDesc(fused)
	if len(order) > k {
		order = order[:k]
	}

	out := make([]RelatedDocumentOutput, 0, len(order))
	for _, docID := range order {
		doc, ok, err := h.GetDocument(docID)
		if err != nil {
			return nil, FindRelatedDocumentsOutput{}, MapError(err)
		}
		if !ok {
			continue
		}
		out = append(out, RelatedDocumentOutput{Document: toDocumentOutput(doc), SharedEntities: counts[docID]})
	}
	return nil, FindRelatedDocumentsOutput{Related: out}, nil
}
