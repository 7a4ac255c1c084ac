package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/output"
)

func newSetupCmd() *cobra.Command {
	var check bool
	var offline bool

	c := &cobra.Command{
		Use:   "setup",
		Short: "Check and configure the embedding backend",
		Long: `Check whether the configured embedding backend (native, ollama, or
static) is reachable, and write that choice to config.yaml under the data
directory.

Use --check to only report status. Use --offline to pin the engine to the
deterministic static fallback, which needs no model weights and no running
embedding server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd.Context(), cmd, check, offline)
		},
	}

	c.Flags().BoolVar(&check, "check", false, "only report status, make no changes")
	c.Flags().BoolVar(&offline, "offline", false, "pin the engine to the static embedding fallback")
	return c
}

func runSetup(ctx context.Context, cmd *cobra.Command, checkOnly, offline bool) error {
	out := output.New(cmd.OutOrStdout())
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	out.Status("", "caseintel setup")
	out.Newline()

	if offline {
		cfg.Embed.Backend = "static"
		if checkOnly {
			out.Status("", "offline mode requested; static backend needs no verification")
			return nil
		}
		if err := writeConfig(cfg); err != nil {
			return err
		}
		out.Success("configured offline mode (static embeddings, no model download required)")
		return nil
	}

	out.Statusf("", "checking %s backend...", backendLabel(cfg.Embed.Backend))
	engine, probeErr := embed.NewEngine(ctx, cfg.Embed)
	if probeErr != nil {
		out.Warningf("backend not reachable: %v", probeErr)
		if checkOnly {
			return nil
		}
		out.Status("", "run 'caseintel setup --offline' to fall back to static embeddings")
		return probeErr
	}
	defer func() { _ = engine.Close() }()

	out.Successf("backend ready (slots: %v)", engine.ConfiguredSlots())

	if checkOnly {
		return nil
	}
	return writeConfig(cfg)
}

func backendLabel(backend string) string {
	if backend == "" {
		return "static"
	}
	return backend
}

// writeConfig persists cfg to config.yaml under cfg.DataDir.
func writeConfig(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return os.WriteFile(filepath.Join(cfg.DataDir, "config.yaml"), data, 0o644)
}
