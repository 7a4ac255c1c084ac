package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/retrieval"
)

// SearchCaseInput is the input schema for search_case.
type SearchCaseInput struct {
	CaseID      string   `json:"case_id"`
	Query       string   `json:"query" jsonschema:"the search query"`
	K           int      `json:"k,omitempty" jsonschema:"number of results, default 10"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict search to these document ids"`
}

// SearchResultOutput is one ranked hit.
type SearchResultOutput struct {
	Text          string           `json:"text"`
	Score         float64          `json:"score"`
	Provenance    ProvenanceOutput `json:"provenance"`
	Citation      string           `json:"citation"`
	ContextBefore string           `json:"context_before,omitempty"`
	ContextAfter  string           `json:"context_after,omitempty"`
}

// SearchCaseOutput is the output schema for search_case.
type SearchCaseOutput struct {
	Results []SearchResultOutput `json:"results"`
}

func (s *Server) handleSearchCase(ctx context.Context, _ *mcp.CallToolRequest, in SearchCaseInput) (*mcp.CallToolResult, SearchCaseOutput, error) {
	if in.CaseID == "" || in.Query == "" {
		return nil, SearchCaseOutput{}, NewInvalidParamsError("case_id and query are required")
	}
	k := in.K
	if k <= 0 {
		k = s.cfg.Retrieval.MaxResults
	}

	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, SearchCaseOutput{}, MapError(err)
	}

	results, err := retrieval.Search(ctx, h, s.engine, s.cfg.Retrieval, in.Query, k, retrieval.Filter{DocumentIDs: in.DocumentIDs})
	if err != nil {
		return nil, SearchCaseOutput{}, MapError(err)
	}

	out := make([]SearchResultOutput, len(results))
	for i, r := range results {
		prov := toProvenanceOutput(r.Provenance)
		out[i] = SearchResultOutput{
			Text:          r.Text,
			Score:         r.Score,
			Provenance:    prov,
			Citation:      prov.Citation,
			ContextBefore: r.ContextBefore,
			ContextAfter:  r.ContextAfter,
		}
	}
	return nil, SearchCaseOutput{Results: out}, nil
}
