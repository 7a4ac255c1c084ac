// Package cmd provides the CLI commands for the caseintel engine: the
// `serve` entrypoint that fronts the MCP tool-request surface, and the
// out-of-band administrative commands spec.md §6 names (`setup`, `update`,
// `uninstall`, `strip-embeddings`, `purge-archived`) plus an interactive
// `switch` case picker.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/legalcase/caseintel/internal/logging"
	"github.com/legalcase/caseintel/pkg/version"
)

var (
	dataDir        string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the caseintel CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "caseintel",
		Short:         "Local, per-case legal document intelligence engine",
		Long:          `caseintel runs a hybrid-search MCP server over your ingested case documents, entirely on your own machine.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("caseintel version {{.Version}}\n")

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the engine's data directory (default ~/.caseintel)")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logCfg := logging.DefaultConfig()
		if debugMode {
			logCfg = logging.DebugConfig()
		}
		logger, cleanup, err := logging.Setup(logCfg)
		if err != nil {
			return err
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
		return nil
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSetupCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newUninstallCmd())
	root.AddCommand(newStripEmbeddingsCmd())
	root.AddCommand(newPurgeArchivedCmd())
	root.AddCommand(newSwitchCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
