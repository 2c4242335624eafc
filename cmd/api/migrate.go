package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/tripsmith/itinerary-api/internal/config"
	"github.com/tripsmith/itinerary-api/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withProvider(func(ctx context.Context, p *goose.Provider, log *slog.Logger) error {
				results, err := p.Up(ctx)
				for _, r := range results {
					log.Info("migration applied", "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
				}
				return err
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withProvider(func(ctx context.Context, p *goose.Provider, log *slog.Logger) error {
				r, err := p.Down(ctx)
				if errors.Is(err, goose.ErrNoNextVersion) {
					log.Info("nothing to roll back")
					return nil
				}
				if err != nil {
					return err
				}
				log.Info("migration rolled back", "version", r.Source.Version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: withProvider(func(ctx context.Context, p *goose.Provider, log *slog.Logger) error {
				statuses, err := p.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					log.Info("migration", "version", s.Source.Version, "state", string(s.State), "applied_at", s.AppliedAt)
				}
				return nil
			}),
		},
	)
	return cmd
}

// withProvider loads config, opens the database and hands a goose provider to fn.
func withProvider(fn func(ctx context.Context, p *goose.Provider, log *slog.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		p, closeDB, err := openProvider(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer closeDB()
		return fn(cmd.Context(), p, logger)
	}
}

// migrateUp applies pending migrations; used by "serve --migrate".
func migrateUp(ctx context.Context, dsn string, log *slog.Logger) error {
	p, closeDB, err := openProvider(dsn)
	if err != nil {
		return err
	}
	defer closeDB()

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("migrations applied", "count", len(results))
	return nil
}

// openProvider uses database/sql because goose does not accept a pgx pool.
func openProvider(dsn string) (*goose.Provider, func(), error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create goose provider: %w", err)
	}
	return p, func() { db.Close() }, nil
}
