package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/legalcase/caseintel/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var transport string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP tool-request server",
		Long: `Start the MCP server that exposes caseintel's tool-request surface
(case lifecycle, documents, chunks, search, index, watches, storage, and
context-graph tools) to an external agent such as Claude Code or Cursor.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, transport)
		},
	}

	c.Flags().StringVar(&transport, "transport", "", "override the configured MCP transport (default from config)")
	return c
}

// runServe wires config → registry → watch registry → embedding engine →
// extract registry → mcp.Server, per spec.md §9's initialization order, and
// blocks serving the configured transport until ctx is cancelled.
func runServe(ctx context.Context, transportOverride string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return fmt.Errorf("opening case registry: %w", err)
	}

	watches, err := openWatches(cfg)
	if err != nil {
		_ = reg.Close()
		return fmt.Errorf("opening watch registry: %w", err)
	}

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		_ = reg.Close()
		return fmt.Errorf("starting embedding engine: %w", err)
	}

	extractReg := newExtractRegistry()

	srv, err := mcp.NewServer(reg, watches, extractReg, engine, cfg)
	if err != nil {
		_ = engine.Close()
		_ = reg.Close()
		return fmt.Errorf("constructing MCP server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	transport := cfg.Server.Transport
	if transportOverride != "" {
		transport = transportOverride
	}

	return srv.Serve(ctx, transport)
}
