package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/healthlog/internal/tracker"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move entries from the flat store into SQLite",
		Long: `Copies every entry in the flat store into the SQLite database and then
clears the flat store. Running it again with an empty flat store is a no-op.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	s, err := a.openStructured(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	}()

	migrated, err := tracker.MigrateFlat(ctx, a.flat, s, a.loc, nil)
	if err != nil {
		return err
	}
	if migrated {
		fmt.Fprintln(cmd.OutOrStdout(), "migrated flat store entries")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to migrate")
	}
	return nil
}
