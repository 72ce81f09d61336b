package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/vbonduro/healthlog/internal/domain"
)

func newEntriesCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Print entries as JSON",
		Long: `Prints every entry grouped by day, or a single day's entries with --date.

Examples:
  healthlog entries
  healthlog entries --date 2024-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntries(cmd, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to print (YYYY-MM-DD)")
	return cmd
}

func runEntries(cmd *cobra.Command, date string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tr := a.newTracker(nil)
	tr.Open(cmd.Context())
	defer func() {
		if err := tr.Close(); err != nil {
			a.logger.Error("failed to close tracker", "error", err)
		}
	}()

	var out any = tr.Entries()
	if date != "" {
		day, err := domain.ParseDay(date, a.loc)
		if err != nil {
			return err
		}
		entries := tr.EntriesOn(day)
		if entries == nil {
			entries = []*domain.Entry{}
		}
		out = entries
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
