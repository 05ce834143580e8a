package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"smartqueue/backend/internal/store/postgres"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := cmd.Context()

			log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
			db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2})
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = postgres.Close(db) }()

			m := postgres.NewMigrator(db)
			switch args[0] {
			case "up":
				group, err := m.Up(ctx)
				if err != nil {
					return err
				}
				if group == "" {
					log.Info("no new migrations to apply")
					return nil
				}
				log.Info("migrations applied", slog.String("group", group))
			case "down":
				group, err := m.Down(ctx)
				if err != nil {
					return err
				}
				if group == "" {
					log.Info("no migrations to roll back")
					return nil
				}
				log.Info("migrations rolled back", slog.String("group", group))
			case "status":
				status, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, name := range status.Applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied  %s\n", name)
				}
				for _, name := range status.Pending {
					fmt.Fprintf(cmd.OutOrStdout(), "pending  %s\n", name)
				}
			}
			return nil
		},
	}
}
