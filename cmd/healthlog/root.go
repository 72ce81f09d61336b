package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "healthlog",
		Short: "Health tracker storage service",
		Long: `healthlog stores meals, sleep, body measurements and exercise.

Entries live in a SQLite database. When that database cannot be opened the
service keeps working from a flat key/value store and promotes its contents
into SQLite on the next successful start.

Configuration comes from the environment (or a .env file):
  LISTEN_ADDR, DB_PATH, FLAT_BACKEND, FLAT_PATH, TIMEZONE,
  LIBRARY_LIMIT, LOG_LEVEL, LOG_FILE, LOG_FORMAT`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newEntriesCmd())
	return cmd
}
