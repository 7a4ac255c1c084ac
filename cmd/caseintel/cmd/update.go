package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
	"github.com/legalcase/caseintel/internal/output"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Migrate every case to the current schema version",
		Long: `Open every case in the registry, which runs schema migration
automatically (spec.md §4.B) if a case's store predates this build. A case
whose stored schema version is newer than this build supports is reported
and left untouched; install a newer build to open it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd)
		},
	}
}

func runUpdate(cmd *cobra.Command) error {
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

	cases, err := reg.List()
	if err != nil {
		return fmt.Errorf("listing cases: %w", err)
	}

	if len(cases) == 0 {
		out.Status("", "no cases to update")
		return nil
	}

	failures := 0
	for _, c := range cases {
		h, err := reg.OpenHandle(c.ID)
		if err != nil {
			failures++
			var caseErr *caseerrors.CaseError
			if errors.As(err, &caseErr) && caseErr.Code == caseerrors.ErrCodeFutureSchemaVersion {
				out.Warningf("case %q (%s): %s — install a newer build", c.Name, c.ID, caseErr.Message)
				continue
			}
			out.Errorf("case %q (%s): %v", c.Name, c.ID, err)
			continue
		}
		_ = h // opening already migrated the store; nothing further to do
		out.Successf("case %q (%s) up to date", c.Name, c.ID)
	}

	if failures > 0 {
		return fmt.Errorf("%d case(s) failed to migrate", failures)
	}
	return nil
}
