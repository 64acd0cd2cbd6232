package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"example.com/lifelog/backend/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			version, _, err := database.MigrationStatus(cmd.Context(), db)
			if err != nil {
				return err
			}
			slog.Info("schema is up to date", slog.Int64("version", version))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the schema version and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			version, pending, err := database.MigrationStatus(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d\npending: %d\n", version, pending)
			return nil
		},
	})

	return cmd
}
