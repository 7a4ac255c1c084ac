package registry

import (
	"fmt"

	"github.com/legalcase/caseintel/internal/binenc"
)

// encodeCase serializes a Case to its fixed binary form, per spec.md §4.C's
// "all stored records" requirement.
func encodeCase(c *Case) []byte {
	buf := make([]byte, 0, 128+len(c.Name))
	buf = binenc.PutString(buf, c.ID)
	buf = binenc.PutString(buf, c.Name)
	buf = binenc.PutString(buf, c.CaseNumber)
	buf = binenc.PutString(buf, c.Jurisdiction)
	buf = binenc.PutString(buf, c.Judge)

	buf = binenc.PutInt64(buf, int64(len(c.Parties)))
	for _, p := range c.Parties {
		buf = binenc.PutString(buf, p.Name)
		buf = binenc.PutString(buf, string(p.Role))
	}

	buf = binenc.PutString(buf, c.CaseType)
	buf = binenc.PutString(buf, string(c.Status))
	buf = binenc.PutInt64(buf, c.CreatedAt)
	buf = binenc.PutInt64(buf, c.UpdatedAt)

	buf = binenc.PutInt64(buf, int64(c.Stats.DocumentCount))
	buf = binenc.PutInt64(buf, int64(c.Stats.ChunkCount))
	buf = binenc.PutInt64(buf, int64(c.Stats.EntityCount))
	buf = binenc.PutInt64(buf, int64(c.Stats.CitationCount))

	buf = binenc.PutString(buf, c.ExportPath)
	return buf
}

// decodeCase parses a buffer produced by encodeCase.
func decodeCase(buf []byte) (*Case, error) {
	var c Case
	var err error

	if c.ID, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if c.Name, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if c.CaseNumber, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("case_number: %w", err)
	}
	if c.Jurisdiction, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("jurisdiction: %w", err)
	}
	if c.Judge, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}

	var n int64
	if n, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("parties count: %w", err)
	}
	c.Parties = make([]Party, 0, n)
	for i := int64(0); i < n; i++ {
		var name, role string
		if name, buf, err = binenc.TakeString(buf); err != nil {
			return nil, fmt.Errorf("parties[%d].name: %w", i, err)
		}
		if role, buf, err = binenc.TakeString(buf); err != nil {
			return nil, fmt.Errorf("parties[%d].role: %w", i, err)
		}
		c.Parties = append(c.Parties, Party{Name: name, Role: PartyRole(role)})
	}

	var caseType, status string
	if caseType, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("case_type: %w", err)
	}
	c.CaseType = caseType
	if status, buf, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	c.Status = Status(status)

	if c.CreatedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if c.UpdatedAt, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}

	var v int64
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("stats.document_count: %w", err)
	}
	c.Stats.DocumentCount = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("stats.chunk_count: %w", err)
	}
	c.Stats.ChunkCount = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("stats.entity_count: %w", err)
	}
	c.Stats.EntityCount = int(v)
	if v, buf, err = binenc.TakeInt64(buf); err != nil {
		return nil, fmt.Errorf("stats.citation_count: %w", err)
	}
	c.Stats.CitationCount = int(v)

	if c.ExportPath, _, err = binenc.TakeString(buf); err != nil {
		return nil, fmt.Errorf("export_path: %w", err)
	}

	return &c, nil
}
