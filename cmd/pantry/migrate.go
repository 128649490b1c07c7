package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/pantry/pkg/logger"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := migrateSetup(opts)
				if err != nil {
					return err
				}
				if cfg.Database.Driver == "sqlite" {
					// SQLite has no versioned migrations; the schema is created from the models.
					db, err := sqlite.SetupDatabase(cfg.Database.Path, postgres.LogLevel(cfg.Database.LogLevel), true)
					if err != nil {
						return err
					}
					if sqlDB, err := db.DB(); err == nil {
						_ = sqlDB.Close()
					}
					log.Info("SQLite schema is up to date", zap.String("path", cfg.Database.Path))
					return nil
				}
				return withMigrator(cfg, log, func(m *migrations.Migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := migrateSetup(opts)
				if err != nil {
					return err
				}
				return withMigrator(cfg, log, func(m *migrations.Migrator) error { return m.Down() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := migrateSetup(opts)
				if err != nil {
					return err
				}
				return withMigrator(cfg, log, func(m *migrations.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark the schema as VERSION without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				cfg, log, err := migrateSetup(opts)
				if err != nil {
					return err
				}
				return withMigrator(cfg, log, func(m *migrations.Migrator) error { return m.Force(version) })
			},
		},
	)
	return cmd
}

func migrateSetup(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withMigrator runs fn against the postgres schema. The gorm auto-migration
// is turned off so the versioned scripts own the schema.
func withMigrator(cfg *config.Config, log *zap.Logger, fn func(*migrations.Migrator) error) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("versioned migrations need the postgres driver, got %q", cfg.Database.Driver)
	}

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false
	cm, err := postgres.NewConnectionManager(dbCfg, log)
	if err != nil {
		return err
	}

	m, err := migrations.New(cm.SQLDB(), dbCfg.Database, log)
	if err != nil {
		_ = cm.Close()
		return err
	}
	// Closing the migrator also closes the connection pool.
	defer m.Close()

	return fn(m)
}
