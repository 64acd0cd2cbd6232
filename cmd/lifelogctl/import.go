package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"example.com/lifelog/backend/internal/journal"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/server"
)

func importCmd() *cobra.Command {
	var (
		pattern string
		email   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import daily journal files (YYYY-MM-DD.md) for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := journal.Discover(pattern)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				slog.Warn("no journal files matched", slog.String("glob", pattern))
				return nil
			}

			cfg, db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := repository.NewUserRepository(db).GetByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("find user %s: %w", email, err)
			}

			services := server.NewServices(cfg, db, nil, nil)
			summary, err := journal.Import(cmd.Context(), services.Daily, user.ID, paths)
			if err != nil {
				return err
			}

			slog.Info("journal imported",
				slog.Int("files", summary.Files),
				slog.Int("todos_created", summary.TodosCreated),
				slog.Int("todos_closed", summary.TodosClosed),
				slog.Int("learning_created", summary.LearningCreated),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "glob", "journal/**/*.md", "Glob of journal files")
	cmd.Flags().StringVar(&email, "user", "", "Email of the user to import for")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
