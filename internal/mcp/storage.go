package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/lifecycle"
)

// GetStorageSummaryOutput is the output schema for get_storage_summary.
type GetStorageSummaryOutput struct {
	CaseID       string `json:"case_id"`
	Bytes        int64  `json:"bytes"`
	DaysSinceUse int    `json:"days_since_use"`
	Stale        bool   `json:"stale"`
	LastSearchAt int64  `json:"last_search_at,omitempty"`
	LastIngestAt int64  `json:"last_ingest_at,omitempty"`
}

func (s *Server) handleGetStorageSummary(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, GetStorageSummaryOutput, error) {
	if in.CaseID == "" {
		return nil, GetStorageSummaryOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, GetStorageSummaryOutput{}, MapError(err)
	}
	summary, err := lifecycle.Summarize(in.CaseID, s.registry.CaseDir(in.CaseID), h, time.Now())
	if err != nil {
		return nil, GetStorageSummaryOutput{}, MapError(err)
	}
	return nil, GetStorageSummaryOutput{
		CaseID:       summary.CaseID,
		Bytes:        summary.Bytes,
		DaysSinceUse: summary.DaysSinceUse,
		Stale:        summary.Stale,
		LastSearchAt: summary.LastSearchAt,
		LastIngestAt: summary.LastIngestAt,
	}, nil
}

// CompactCaseOutput is the output schema for compact_case.
type CompactCaseOutput struct {
	Compacted bool `json:"compacted"`
}

func (s *Server) handleCompactCase(ctx context.Context, _ *mcp.CallToolRequest, in CaseIDInput) (*mcp.CallToolResult, CompactCaseOutput, error) {
	if in.CaseID == "" {
		return nil, CompactCaseOutput{}, NewInvalidParamsError("case_id is required")
	}
	h, err := s.registry.OpenHandle(in.CaseID)
	if err != nil {
		return nil, CompactCaseOutput{}, MapError(err)
	}
	if err := h.CompactAll(); err != nil {
		return nil, CompactCaseOutput{}, MapError(err)
	}
	return nil, CompactCaseOutput{Compacted: true}, nil
}
