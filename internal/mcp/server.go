// Package mcp implements the Model Context Protocol tool-request surface
// spec.md §6 names: case lifecycle, documents, chunks & provenance, search,
// index, watches, storage, and context-graph tools, fronting the engine for
// an external agent (Claude Code, Cursor, or any MCP client).
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/extract"
	"github.com/legalcase/caseintel/internal/registry"
	"github.com/legalcase/caseintel/internal/watch"
)

// Server bridges MCP clients to the case intelligence engine. Per spec.md
// §9's initialization order (config → registry → watch manager → embedder
// engine → request front-end), Server is constructed last, wrapping
// already-open singletons; Close closes the engine and the registry.
type Server struct {
	mcp      *mcp.Server
	registry *registry.Registry
	watches  *watch.Registry
	extract  *extract.Registry
	engine   embed.Engine
	cfg      *config.Config
	logger   *slog.Logger
}

// NewServer wires reg/watches/extractReg/engine/cfg into an MCP server and
// registers every tool named in spec.md §6's tool-request surface.
func NewServer(reg *registry.Registry, watches *watch.Registry, extractReg *extract.Registry, engine embed.Engine, cfg *config.Config) (*Server, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		registry: reg,
		watches:  watches,
		extract:  extractReg,
		engine:   engine,
		cfg:      cfg,
		logger:   slog.Default(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "caseintel",
		Version: "1",
	}, nil)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// Serve runs the server until ctx is cancelled. Only "stdio" is implemented;
// spec.md §6 describes the tool surface, not a network transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting MCP server", slog.String("transport", transport))
	switch transport {
	case "stdio", "":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio)", transport)
	}
}

// Close closes the embedder engine, then the registry, which closes every
// pooled case handle in turn. It does not touch the watch registry: the
// server starts no watch runner, so there is nothing to stop. Ingestion is
// synchronous (IngestDocument has no async queue), so nothing is pending.
func (s *Server) Close() error {
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.logger.Warn("embedder engine close failed", slog.String("error", err.Error()))
		}
	}
	return s.registry.Close()
}

func (s *Server) registerTools() {
	s.logger.Debug("registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_case",
		Description: "Create a new case and return its registry record.",
	}, s.handleCreateCase)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_cases",
		Description: "List every registered case.",
	}, s.handleListCases)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "switch_case",
		Description: "Record a case as the registry's active case. Other tools do not fall back to it; each takes an explicit case_id.",
	}, s.handleSwitchCase)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "close_case",
		Description: "Mark a case Closed.",
	}, s.handleCloseCase)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "archive_case",
		Description: "Archive a case, compacting its store. ingest_document rejects an archived case; ingest_folder and sync_folder do not check case status.",
	}, s.handleArchiveCase)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_case",
		Description: "Permanently delete a case and all of its documents, chunks, and embeddings.",
	}, s.handleDeleteCase)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Extract and ingest a single file on disk into a case.",
	}, s.handleIngestDocument)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ingest_folder",
		Description: "Extract and ingest every supported file under a folder into a case.",
	}, s.handleIngestFolder)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "sync_folder",
		Description: "Reconcile a watched folder against a case's ingested documents: ingest new files, reindex changed ones, flag or remove deleted ones.",
	}, s.handleSyncFolder)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_documents",
		Description: "List every document ingested into a case.",
	}, s.handleListDocuments)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch one document's record by id.",
	}, s.handleGetDocument)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and every chunk, embedding, entity mention, and citation mention it owns.",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_chunk",
		Description: "Fetch one chunk by id, with its provenance.",
	}, s.handleGetChunk)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_document_chunks",
		Description: "List every chunk of a document in sequence order.",
	}, s.handleGetDocumentChunks)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_source_context",
		Description: "Fetch a chunk plus its immediate preceding and following chunks, for reading a passage in context.",
	}, s.handleGetSourceContext)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_case",
		Description: "Run hybrid lexical+semantic search over a case's ingested documents.",
	}, s.handleSearchCase)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reindex_document",
		Description: "Delete and re-extract/re-ingest one document from its tracked source file, re-running chunking, embedding, and entity/citation extraction.",
	}, s.handleReindexDocument)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reindex_case",
		Description: "Reindex every document in a case.",
	}, s.handleReindexCase)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Report a case's document/chunk counts and which embedders are configured.",
	}, s.handleGetIndexStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "watch_folder",
		Description: "Register a folder to be watched and synced into a case.",
	}, s.handleWatchFolder)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "unwatch_folder",
		Description: "Remove a watched folder registration.",
	}, s.handleUnwatchFolder)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_watches",
		Description: "List every registered watch.",
	}, s.handleListWatches)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_sync_schedule",
		Description: "Change an existing watch's sync schedule.",
	}, s.handleSetSyncSchedule)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_storage_summary",
		Description: "Report a case's on-disk storage size and staleness.",
	}, s.handleGetStorageSummary)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "compact_case",
		Description: "Run storage compaction over a case's store.",
	}, s.handleCompactCase)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_case_summary",
		Description: "Report a case's document, chunk, entity, and citation counts.",
	}, s.handleGetCaseSummary)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_citations",
		Description: "List every legal citation recognized in a case.",
	}, s.handleListCitations)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_citation_references",
		Description: "List every chunk that mentions a given citation.",
	}, s.handleGetCitationReferences)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_entities",
		Description: "List every named entity recognized in a case.",
	}, s.handleListEntities)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_entity_mentions",
		Description: "List every chunk that mentions a given entity.",
	}, s.handleGetEntityMentions)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_related_documents",
		Description: "Rank other documents in the case by shared entity mentions and document-embedding similarity with the given document, fused by reciprocal rank.",
	}, s.handleFindRelatedDocuments)

	s.logger.Info("MCP tools registered", slog.Int("count", 31))
}
