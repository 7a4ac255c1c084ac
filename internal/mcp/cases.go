package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/lifecycle"
	"github.com/legalcase/caseintel/internal/registry"
)

// CreateCaseInput is the input schema for create_case.
type CreateCaseInput struct {
	Name         string       `json:"name" jsonschema:"case display name"`
	CaseNumber   string       `json:"case_number,omitempty" jsonschema:"docket or case number"`
	Jurisdiction string       `json:"jurisdiction,omitempty"`
	Judge        string       `json:"judge,omitempty"`
	Parties      []PartyInput `json:"parties,omitempty"`
	CaseType     string       `json:"case_type,omitempty" jsonschema:"e.g. civil, criminal, appellate"`
}

// CaseOutputResult wraps a single case record.
type CaseOutputResult struct {
	Case CaseOutput `json:"case"`
}

func (s *Server) handleCreateCase(ctx context.Context, _ *mcp.CallToolRequest, in CreateCaseInput) (*mcp.CallToolResult, CaseOutputResult, error) {
	if in.Name == "" {
		return nil, CaseOutputResult{}, NewInvalidParamsError("name is required")
	}
	parties := make([]registry.Party, len(in.Parties))
	for i, p := range in.Parties {
		parties[i] = registry.Party{Name: p.Name, Role: registry.PartyRole(p.Role)}
	}
	c, err := s.registry.Create(registry.CreateParams{
		Name:         in.Name,
		CaseNumber:   in.CaseNumber,
		Jurisdiction: in.Jurisdiction,
		Judge:        in.Judge,
		Parties:      parties,
		CaseType:     in.CaseType,
	})
	if err != nil {
		return nil, CaseOutputResult{}, MapError(err)
	}
	return nil, CaseOutputResult{Case: toCaseOutput(c)}, nil
}

// ListCasesInput is the (empty) input schema for list_cases.
type ListCasesInput struct{}

// ListCasesOutput is the output schema for list_cases.
type ListCasesOutput struct {
	Cases []CaseOutput `json:"cases"`
}

func (s *Server) handleListCases(ctx context.Context, _ *mcp.CallToolRequest, _ ListCasesInput) (*mcp.CallToolResult, ListCasesOutput, error) {
	cases, err := s.registry.List()
	if err != nil {
		return nil, ListCasesOutput{}, MapError(err)
	}
	out := make([]CaseOutput, len(cases))
	for i, c := range cases {
		out[i] = toCaseOutput(c)
	}
	return nil, ListCasesOutput{Cases: out}, nil
}

// CaseIDInput is the shared input shape for single-case operations.
type CaseIDInput struct {
	CaseID string `json:"case_id" jsonschema:"the case id"`
}

func (s *Server) handleSwitchCase(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, CaseOutputResult, error) {
	if in.CaseID == "" {
		return nil, CaseOutputResult{}, NewInvalidParamsError("case_id is required")
	}
	if _, err := s.registry.Switch(in.CaseID); err != nil {
		return nil, CaseOutputResult{}, MapError(err)
	}
	c, _, err := s.registry.Get(in.CaseID)
	if err != nil {
		return nil, CaseOutputResult{}, MapError(err)
	}
	return nil, CaseOutputResult{Case: toCaseOutput(c)}, nil
}

func (s *Server) handleCloseCase(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, CaseOutputResult, error) {
	if in.CaseID == "" {
		return nil, CaseOutputResult{}, NewInvalidParamsError("case_id is required")
	}
	c, err := s.registry.Update(in.CaseID, func(c *registry.Case) { c.Status = registry.StatusClosed })
	if err != nil {
		return nil, CaseOutputResult{}, MapError(err)
	}
	return nil, CaseOutputResult{Case: toCaseOutput(c)}, nil
}

func (s *Server) handleArchiveCase(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, CaseOutputResult, error) {
	if in.CaseID == "" {
		return nil, CaseOutputResult{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, CaseOutputResult{}, MapError(err)
	}
	c, err := lifecycle.Archive(s.registry, h, in.CaseID)
	if err != nil {
		return nil, CaseOutputResult{}, MapError(err)
	}
	return nil, CaseOutputResult{Case: toCaseOutput(c)}, nil
}

// DeleteCaseOutput is the output schema for delete_case.
type DeleteCaseOutput struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) handleDeleteCase(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, DeleteCaseOutput, error) {
	if in.CaseID == "" {
		return nil, DeleteCaseOutput{}, NewInvalidParamsError("case_id is required")
	}
	if err := s.registry.Delete(in.CaseID); err != nil {
		return nil, DeleteCaseOutput{}, MapError(err)
	}
	if s.watches != nil {
		if err := s.watches.RemoveByCase(in.CaseID); err != nil {
			return nil, DeleteCaseOutput{}, MapError(err)
		}
	}
	return nil, DeleteCaseOutput{Deleted: true}, nil
}
