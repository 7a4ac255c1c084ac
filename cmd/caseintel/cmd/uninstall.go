package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/legalcase/caseintel/internal/output"
)

func newUninstallCmd() *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the engine's data directory",
		Long: `Delete the entire data directory (cases, watches, cached license, and
config), per spec.md §6's on-disk layout. This is irreversible; archived
cases you have not exported with 'purge-archived' are lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd, yes)
		},
	}

	c.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return c
}

func runUninstall(cmd *cobra.Command, yes bool) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		out.Status("", "nothing to uninstall")
		return nil
	}

	if !yes {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return newInvalidArgsError("refusing to uninstall non-interactively without --yes")
		}
		out.Warningf("this deletes %s and every case in it", cfg.DataDir)
		fmt.Fprint(cmd.OutOrStdout(), "type \"yes\" to continue: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			out.Status("", "aborted")
			return nil
		}
	}

	if err := os.RemoveAll(cfg.DataDir); err != nil {
		return fmt.Errorf("removing data directory: %w", err)
	}
	out.Successf("removed %s", cfg.DataDir)
	return nil
}
