package mcp

import (
	"strconv"

	"github.com/legalcase/caseintel/internal/casehandle"
	"github.com/legalcase/caseintel/internal/legalindex"
	"github.com/legalcase/caseintel/internal/provenance"
	"github.com/legalcase/caseintel/internal/registry"
)

// PartyInput mirrors registry.Party for tool input/output.
type PartyInput struct {
	Name string `json:"name" jsonschema:"party name"`
	Role string `json:"role" jsonschema:"party role: Plaintiff, Defendant, Petitioner, Respondent, Appellant, Appellee, Intervenor, ThirdParty, CrossClaimant, CrossDefendant, Other"`
}

// CaseOutput is the tool-facing shape of a registry.Case.
type CaseOutput struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	CaseNumber    string       `json:"case_number,omitempty"`
	Jurisdiction  string       `json:"jurisdiction,omitempty"`
	Judge         string       `json:"judge,omitempty"`
	Parties       []PartyInput `json:"parties,omitempty"`
	CaseType      string       `json:"case_type,omitempty"`
	Status        string       `json:"status"`
	CreatedAt     int64        `json:"created_at"`
	UpdatedAt     int64        `json:"updated_at"`
	DocumentCount int          `json:"document_count"`
	ChunkCount    int          `json:"chunk_count"`
	EntityCount   int          `json:"entity_count"`
	CitationCount int          `json:"citation_count"`
	ExportPath    string       `json:"export_path,omitempty"`
}

func toCaseOutput(c *registry.Case) CaseOutput {
	parties := make([]PartyInput, len(c.Parties))
	for i, p := range c.Parties {
		parties[i] = PartyInput{Name: p.Name, Role: string(p.Role)}
	}
	return CaseOutput{
		ID:            c.ID,
		Name:          c.Name,
		CaseNumber:    c.CaseNumber,
		Jurisdiction:  c.Jurisdiction,
		Judge:         c.Judge,
		Parties:       parties,
		CaseType:      c.CaseType,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		DocumentCount: c.Stats.DocumentCount,
		ChunkCount:    c.Stats.ChunkCount,
		EntityCount:   c.Stats.EntityCount,
		CitationCount: c.Stats.CitationCount,
		ExportPath:    c.ExportPath,
	}
}

// DocumentOutput is the tool-facing shape of a casehandle.Document.
type DocumentOutput struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"display_name"`
	SourceFile       string   `json:"source_file,omitempty"`
	Type             string   `json:"type"`
	PageCount        int      `json:"page_count"`
	ChunkCount       int      `json:"chunk_count"`
	IngestedAt       int64    `json:"ingested_at"`
	UpdatedAt        int64    `json:"updated_at"`
	ExtractionMethod string   `json:"extraction_method"`
	Embedders        []string `json:"embedders,omitempty"`
	EntityCount      int      `json:"entity_count"`
	CitationCount    int      `json:"citation_count"`
}

func toDocumentOutput(d *casehandle.Document) DocumentOutput {
	return DocumentOutput{
		ID:               d.ID,
		DisplayName:      d.DisplayName,
		SourceFile:       d.SourceFile,
		Type:             string(d.Type),
		PageCount:        d.PageCount,
		ChunkCount:       d.ChunkCount,
		IngestedAt:       d.IngestedAt,
		UpdatedAt:        d.UpdatedAt,
		ExtractionMethod: string(d.ExtractionMethod),
		Embedders:        d.Embedders,
		EntityCount:      d.EntityCount,
		CitationCount:    d.CitationCount,
	}
}

// ProvenanceOutput is the tool-facing shape of a provenance.Provenance,
// including a human-readable Citation string (e.g. "p. 3") that spec.md's
// end-to-end scenario 1 checks for.
type ProvenanceOutput struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Page         int    `json:"page"`
	CharStart    int64  `json:"char_start"`
	CharEnd      int64  `json:"char_end"`
	LegalSection string `json:"legal_section,omitempty"`
	Citation     string `json:"citation"`
}

func toProvenanceOutput(p provenance.Provenance) ProvenanceOutput {
	return ProvenanceOutput{
		DocumentID:   p.DocumentID,
		DocumentName: p.DocumentName,
		Page:         p.Page,
		CharStart:    p.CharStart,
		CharEnd:      p.CharEnd,
		LegalSection: p.LegalSection,
		Citation:     formatCitation(p),
	}
}

// formatCitation renders a pinpoint citation string for a chunk's
// provenance: "p. {page}", with the legal section appended when known.
func formatCitation(p provenance.Provenance) string {
	c := "p. " + strconv.Itoa(p.Page)
	if p.LegalSection != "" {
		c += ", " + p.LegalSection
	}
	return c
}

// ChunkOutput is the tool-facing shape of a provenance.Chunk.
type ChunkOutput struct {
	ID         string           `json:"id"`
	DocumentID string           `json:"document_id"`
	Sequence   int              `json:"sequence"`
	Text       string           `json:"text"`
	Embedders  []string         `json:"embedders,omitempty"`
	Provenance ProvenanceOutput `json:"provenance"`
}

func toChunkOutput(c *provenance.Chunk) ChunkOutput {
	return ChunkOutput{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Sequence:   c.Sequence,
		Text:       c.Text,
		Embedders:  c.Embedders,
		Provenance: toProvenanceOutput(c.Provenance),
	}
}

// EntityOutput is the tool-facing shape of a legalindex.Entity.
type EntityOutput struct {
	Canonical    string   `json:"canonical"`
	Type         string   `json:"type"`
	Aliases      []string `json:"aliases,omitempty"`
	MentionCount int      `json:"mention_count"`
}

func toEntityOutput(e *legalindex.Entity) EntityOutput {
	return EntityOutput{
		Canonical:    e.Canonical,
		Type:         string(e.Type),
		Aliases:      e.Aliases,
		MentionCount: e.MentionCount,
	}
}

// CitationOutput is the tool-facing shape of a legalindex.LegalCitation.
type CitationOutput struct {
	Canonical string `json:"canonical"`
	Type      string `json:"type"`
}

func toCitationOutput(c *legalindex.LegalCitation) CitationOutput {
	return CitationOutput{Canonical: c.Canonical, Type: string(c.Type)}
}
