package cmd

import (
	"context"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/extract"
	"github.com/legalcase/caseintel/internal/registry"
	"github.com/legalcase/caseintel/internal/watch"
)

// resolvedDataDir returns the --data-dir override if set, else "" so
// config.Load falls back to its own default (~/.caseintel).
func resolvedDataDir() string {
	return dataDir
}

// loadConfig loads the engine configuration for the resolved data directory.
func loadConfig() (*config.Config, error) {
	return config.Load(resolvedDataDir())
}

// openRegistry opens the case registry under cfg.DataDir, bounded by
// cfg.Tier, per spec.md §9's initialization order (config before registry).
func openRegistry(cfg *config.Config) (*registry.Registry, error) {
	return registry.New(cfg.DataDir, registry.Limits{
		MaxOpenCaseHandles:  cfg.Tier.MaxOpenCaseHandles,
		MaxCasesTotal:       cfg.Tier.MaxCasesTotal,
		MaxDocumentsPerCase: cfg.Tier.MaxDocumentsPerCase,
	})
}

// openWatches opens the watches.json registry under cfg.DataDir.
func openWatches(cfg *config.Config) (*watch.Registry, error) {
	return watch.Open(cfg.DataDir)
}

// newEngine builds the configured embedding engine, per spec.md §9
// (registry and watch manager open before the embedder engine).
func newEngine(ctx context.Context, cfg *config.Config) (embed.Engine, error) {
	return embed.NewEngine(ctx, cfg.Embed)
}

// newExtractRegistry builds the document-decoder registry used to turn a
// source file on disk into an ingest.Request.
func newExtractRegistry() *extract.Registry {
	return extract.NewRegistry()
}
