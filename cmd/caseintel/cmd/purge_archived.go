package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/legalcase/caseintel/internal/config"
	"github.com/legalcase/caseintel/internal/lifecycle"
	"github.com/legalcase/caseintel/internal/output"
	"github.com/legalcase/caseintel/internal/registry"
)

func newPurgeArchivedCmd() *cobra.Command {
	var caseID string
	var outputPath string

	c := &cobra.Command{
		Use:   "purge-archived",
		Short: "Export an archived case to a .ctcase file and reclaim its disk space",
		Long: `Export one archived case (or, with --case omitted, every archived
case) into a .ctcase ZIP export, per spec.md §4.L/§6, then delete the
expanded on-disk case directory.

With --case, --output names the export file directly. Without --case,
--output names a directory and each archived case is exported to
<output>/<case-id>.ctcase.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurgeArchived(cmd.Context(), cmd, caseID, outputPath)
		},
	}

	c.Flags().StringVar(&caseID, "case", "", "case id to purge (omit to purge every archived case)")
	c.Flags().StringVar(&outputPath, "output", "", "export file (single case) or directory (all cases); required")
	return c
}

func runPurgeArchived(ctx context.Context, cmd *cobra.Command, caseID, outputPath string) error {
	if outputPath == "" {
		return newInvalidArgsError("--output is required")
	}

	out := output.New(cmd.OutOrStdout())
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return fmt.Errorf("opening case registry: %w", err)
	}
	defer func() { _ = reg.Close() }()

	embedders, err := configuredEmbedders(ctx, cfg)
	if err != nil {
		out.Warningf("could not determine configured embedders: %v", err)
	}

	if caseID != "" {
		c, ok, err := reg.Get(caseID)
		if err != nil {
			return fmt.Errorf("looking up case %s: %w", caseID, err)
		}
		if !ok {
			return newInvalidArgsError(fmt.Sprintf("case %s not found", caseID))
		}
		return purgeOne(reg, out, c, outputPath, embedders)
	}

	cases, err := reg.List()
	if err != nil {
		return fmt.Errorf("listing cases: %w", err)
	}

	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	failures := 0
	for _, c := range cases {
		if c.Status != registry.StatusArchived {
			continue
		}
		dest := filepath.Join(outputPath, c.ID+".ctcase")
		if err := purgeOne(reg, out, c, dest, embedders); err != nil {
			failures++
			out.Errorf("case %q (%s): %v", c.Name, c.ID, err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d case(s) failed to purge", failures)
	}
	return nil
}

func purgeOne(reg *registry.Registry, out *output.Writer, c *registry.Case, dest string, embedders []string) error {
	h, err := reg.OpenHandle(c.ID)
	if err != nil {
		return fmt.Errorf("opening case: %w", err)
	}

	if _, err := lifecycle.PurgeArchived(reg, h, reg.CaseDir(c.ID), dest, c, embedders); err != nil {
		return err
	}

	out.Successf("purged case %q (%s) to %s", c.Name, c.ID, dest)
	return nil
}

// configuredEmbedders reports the embedding slots the current config would
// produce, for the export manifest's informational "embedders" field.
func configuredEmbedders(ctx context.Context, cfg *config.Config) ([]string, error) {
	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = engine.Close() }()

	slots := engine.ConfiguredSlots()
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return names, nil
}
