// Package legalindex extracts, normalizes, and resolves legal citations and
// entities from chunk text (spec.md §4.J), and defines the domain record
// types (LegalCitation, CitationMention, Entity) that casehandle persists.
package legalindex

// CitationType enumerates the kinds of legal citation recognized.
type CitationType string

const (
	CitationCaseLaw      CitationType = "CaseLaw"
	CitationStatute      CitationType = "Statute"
	CitationRegulation   CitationType = "Regulation"
	CitationConstitution CitationType = "Constitution"
	CitationShortForm    CitationType = "ShortForm"
	CitationRule         CitationType = "Rule"
	CitationTreaty       CitationType = "Treaty"
	CitationOther        CitationType = "Other"
)

// TreatmentTag classifies how a citing passage treats a cited authority.
type TreatmentTag string

const (
	TreatmentCites         TreatmentTag = "Cites"
	TreatmentFollows       TreatmentTag = "Follows"
	TreatmentDistinguishes TreatmentTag = "Distinguishes"
	TreatmentOverrules     TreatmentTag = "Overrules"
	TreatmentQuestions     TreatmentTag = "Questions"
	TreatmentExplains      TreatmentTag = "Explains"
	TreatmentUnclear       TreatmentTag = "Unclear"
)

// ParsedFields holds the structured components extracted from a citation's
// text, populated only where the citation type carries them (e.g. Reporter/
// Volume/Page/Court/Year only apply to CaseLaw).
type ParsedFields struct {
	Parties  []string
	Reporter string
	Volume   int
	Page     int
	Court    string
	Year     int
	Pinpoint string
}

// LegalCitation is a normalized, case-wide-unique citation.
type LegalCitation struct {
	Canonical string
	Type      CitationType
	Fields    ParsedFields
}

// CitationMention pairs a citation with the chunk and span where it occurs.
type CitationMention struct {
	CitationCanonical string
	ChunkID           string
	CharStart         int64
	CharEnd           int64
	Treatment         TreatmentTag
	Context           string
}

// CitationEdge is a citation -> citation treatment relationship (e.g. "this
// citation's chunk treats that citation as Distinguishes").
type CitationEdge struct {
	FromCanonical string
	ToCanonical   string
	Treatment     TreatmentTag
}

// EntityType enumerates the recognized entity categories: legal-specific
// types plus a general-purpose NER set.
type EntityType string

const (
	EntityParty        EntityType = "Party"
	EntityCourt        EntityType = "Court"
	EntityJudge        EntityType = "Judge"
	EntityAttorney     EntityType = "Attorney"
	EntityStatute      EntityType = "Statute"
	EntityCaseNumber   EntityType = "CaseNumber"
	EntityJurisdiction EntityType = "Jurisdiction"
	EntityPerson       EntityType = "Person"
	EntityOrganization EntityType = "Organization"
	EntityDate         EntityType = "Date"
	EntityAmount       EntityType = "Amount"
	EntityLocation     EntityType = "Location"
)

// Reference records the first chunk an entity was observed in.
type Reference struct {
	ChunkID   string
	CharStart int64
	CharEnd   int64
}

// Entity is a case-wide canonicalized named entity.
type Entity struct {
	Canonical    string
	Type         EntityType
	Aliases      []string
	MentionCount int
	FirstSeen    Reference
}

// EntityMention pairs an entity with the chunk and span where it was found,
// mirroring CitationMention's shape for symmetry in storage and retrieval.
type EntityMention struct {
	EntityCanonical string
	ChunkID         string
	CharStart       int64
	CharEnd         int64
}
