package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/watch"
)

// WatchOutput is the tool-facing shape of a watch.Watch.
type WatchOutput struct {
	ID                string   `json:"id"`
	CaseID            string   `json:"case_id"`
	Folder            string   `json:"folder"`
	Recursive         bool     `json:"recursive"`
	ExtensionFilter   []string `json:"extension_filter,omitempty"`
	AutoRemoveDeleted bool     `json:"auto_remove_deleted"`
	Schedule          string   `json:"schedule"`
	IntervalSeconds   int      `json:"interval_seconds,omitempty"`
	DailyAt           string   `json:"daily_at,omitempty"`
	Enabled           bool     `json:"enabled"`
	CreatedAt         int64    `json:"created_at"`
	LastSyncAt        int64    `json:"last_sync_at,omitempty"`
}

func toWatchOutput(w *watch.Watch) WatchOutput {
	return WatchOutput{
		ID:                w.ID,
		CaseID:            w.CaseID,
		Folder:            w.Folder,
		Recursive:         w.Recursive,
		ExtensionFilter:   w.ExtensionFilter,
		AutoRemoveDeleted: w.AutoRemoveDeleted,
		Schedule:          string(w.Schedule),
		IntervalSeconds:   w.IntervalSeconds,
		DailyAt:           w.DailyAt,
		Enabled:           w.Enabled,
		CreatedAt:         w.CreatedAt,
		LastSyncAt:        w.LastSyncAt,
	}
}

// WatchFolderInput is the input schema for watch_folder.
type WatchFolderInput struct {
	CaseID            string   `json:"case_id"`
	Folder            string   `json:"folder" jsonschema:"absolute path to the folder to watch"`
	Recursive         bool     `json:"recursive,omitempty"`
	ExtensionFilter   []string `json:"extension_filter,omitempty" jsonschema:"restrict to these extensions, e.g. [\".pdf\", \".docx\"]; empty means no filter"`
	AutoRemoveDeleted bool     `json:"auto_remove_deleted,omitempty"`
	Schedule          string   `json:"schedule,omitempty" jsonschema:"OnChange, Interval, Daily, or Manual; default OnChange"`
	IntervalSeconds   int      `json:"interval_seconds,omitempty" jsonschema:"required when schedule is Interval"`
	DailyAt           string   `json:"daily_at,omitempty" jsonschema:"HH:MM local time, required when schedule is Daily"`
}

// WatchOutputResult wraps a single watch record.
type WatchOutputResult struct {
	Watch WatchOutput `json:"watch"`
}

func (s *Server) handleWatchFolder(ctx context.Context, _ *mcp.CallToolRequest, in WatchFolderInput) (*mcp.CallToolResult, WatchOutputResult, error) {
	if in.CaseID == "" || in.Folder == "" {
		return nil, WatchOutputResult{}, NewInvalidParamsError("case_id and folder are required")
	}
	if s.watches == nil {
		return nil, WatchOutputResult{}, NewInvalidParamsError("folder watching is not enabled")
	}
	if _, _, err := s.registry.Get(in.CaseID); err != nil {
		return nil, WatchOutputResult{}, MapError(err)
	}

	schedule := watch.ScheduleOnChange
	if in.Schedule != "" {
		schedule = watch.ScheduleKind(in.Schedule)
	}

	w, err := s.watches.Add(watch.Watch{
		CaseID:            in.CaseID,
		Folder:            in.Folder,
		Recursive:         in.Recursive,
		ExtensionFilter:   in.ExtensionFilter,
		AutoRemoveDeleted: in.AutoRemoveDeleted,
		Schedule:          schedule,
		IntervalSeconds:   in.IntervalSeconds,
		DailyAt:           in.DailyAt,
		Enabled:           true,
		CreatedAt:         nowUnix(),
	})
	if err != nil {
		return nil, WatchOutputResult{}, MapError(err)
	}
	return nil, WatchOutputResult{Watch: toWatchOutput(w)}, nil
}

// WatchIDInput is the input schema for unwatch_folder and set_sync_schedule.
type WatchIDInput struct {
	WatchID string `json:"watch_id"`
}

// UnwatchFolderOutput is the output schema for unwatch_folder.
type UnwatchFolderOutput struct {
	Removed bool `json:"removed"`
}

func (s *Server) handleUnwatchFolder(ctx context.Context, _ *mcp.CallToolRequest, in WatchIDInput) (*mcp.CallToolResult, UnwatchFolderOutput, error) {
	if in.WatchID == "" {
		return nil, UnwatchFolderOutput{}, NewInvalidParamsError("watch_id is required")
	}
	if s.watches == nil {
		return nil, UnwatchFolderOutput{}, NewInvalidParamsError("folder watching is not enabled")
	}
	removed, err := s.watches.Remove(in.WatchID)
	if err != nil {
		return nil, UnwatchFolderOutput{}, MapError(err)
	}
	return nil, UnwatchFolderOutput{Removed: removed}, nil
}

// ListWatchesInput is the (empty) input schema for list_watches.
type ListWatchesInput struct{}

// ListWatchesOutput is the output schema for list_watches.
type ListWatchesOutput struct {
	Watches []WatchOutput `json:"watches"`
}

func (s *Server) handleListWatches(ctx context.Context, _ *mcp.CallToolRequest, _ ListWatchesInput) (*mcp.CallToolResult, ListWatchesOutput, error) {
	if s.watches == nil {
		return nil, ListWatchesOutput{}, nil
	}
	watches := s.watches.List()
	out := make([]WatchOutput, len(watches))
	for i, w := range watches {
		out[i] = toWatchOutput(w)
	}
	return nil, ListWatchesOutput{Watches: out}, nil
}

// SetSyncScheduleInput is the input schema for set_sync_schedule.
type SetSyncScheduleInput struct {
	WatchID         string `json:"watch_id"`
	Schedule        string `json:"schedule" jsonschema:"OnChange, Interval, Daily, or Manual"`
	IntervalSeconds int    `json:"interval_seconds,omitempty"`
	DailyAt         string `json:"daily_at,omitempty"`
}

func (s *Server) handleSetSyncSchedule(ctx context.Context, _ *mcp.CallToolRequest, in SetSyncScheduleInput) (*mcp.CallToolResult, WatchOutputResult, error) {
	if in.WatchID == "" || in.Schedule == "" {
		return nil, WatchOutputResult{}, NewInvalidParamsError("watch_id and schedule are required")
	}
	if s.watches == nil {
		return nil, WatchOutputResult{}, NewInvalidParamsError("folder watching is not enabled")
	}
	w, err := s.watches.SetSchedule(in.WatchID, watch.ScheduleKind(in.Schedule), in.IntervalSeconds, in.DailyAt)
	if err != nil {
		return nil, WatchOutputResult{}, MapError(err)
	}
	return nil, WatchOutputResult{Watch: toWatchOutput(w)}, nil
}
