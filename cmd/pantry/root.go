package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/container"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pantry",
		Short:         "Pantry inventory and recipe suggestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override app.log_level")

	cmd.AddCommand(
		newServeCmd(opts),
		newItemsCmd(opts),
		newSuggestCmd(opts),
		newMigrateCmd(opts),
		newHealthCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	return cfg, nil
}

// dataModules is the container without the HTTP servers and lifecycle
// hooks, for commands that work on the store directly.
func dataModules(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		container.LoggerModule,
		container.PrivateRegistryModule,
		container.MonitoringModule,
		container.DatabaseModule,
		container.CacheModule,
		container.CompletionModule,
		container.StorageModule,
		container.ServiceModule,
	)
}

// runWith starts a data-only container, runs fn and stops the container.
func runWith(ctx context.Context, cfg *config.Config, fn func(context.Context) error, populate ...any) error {
	app := fx.New(
		fx.NopLogger,
		dataModules(cfg),
		fx.Populate(populate...),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx)
}
