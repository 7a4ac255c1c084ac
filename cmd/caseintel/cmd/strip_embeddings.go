package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legalcase/caseintel/internal/embed"
	"github.com/legalcase/caseintel/internal/lifecycle"
	"github.com/legalcase/caseintel/internal/output"
)

func newStripEmbeddingsCmd() *cobra.Command {
	var caseID string
	var embedder string

	c := &cobra.Command{
		Use:   "strip-embeddings",
		Short: "Clear one embedding modality from every chunk in a case",
		Long: `Clear the named embedding slot (dense, sparse, or token) from every
chunk in a case and compact the store afterward, per spec.md §4.L. Useful
once reranking is disabled and the token slot is no longer needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStripEmbeddings(cmd, caseID, embedder)
		},
	}

	c.Flags().StringVar(&caseID, "case", "", "case id to strip embeddings from (required)")
	c.Flags().StringVar(&embedder, "embedder", "", "embedding slot to clear: dense, sparse, or token (required)")
	return c
}

func runStripEmbeddings(cmd *cobra.Command, caseID, embedder string) error {
	if caseID == "" {
		return newInvalidArgsError("--case is required")
	}

	slot, err := parseSlot(embedder)
	if err != nil {
		return err
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

	h, err := reg.OpenHandle(caseID)
	if err != nil {
		return fmt.Errorf("opening case %s: %w", caseID, err)
	}

	stripped, err := lifecycle.StripEmbeddings(h, slot)
	if err != nil {
		return fmt.Errorf("stripping %s embeddings: %w", slot, err)
	}

	out.Successf("stripped %s embeddings from %d chunk(s) in case %s", slot, stripped, caseID)
	return nil
}

func parseSlot(embedder string) (embed.Slot, error) {
	switch embed.Slot(embedder) {
	case embed.SlotDense, embed.SlotSparse, embed.SlotToken:
		return embed.Slot(embedder), nil
	default:
		return "", newInvalidArgsError(fmt.Sprintf("--embedder must be one of dense, sparse, token (got %q)", embedder))
	}
}
