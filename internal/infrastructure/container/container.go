// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/inventory"
	"github.com/alchemorsel/pantry/internal/application/suggestion"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/server"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	gormstore "github.com/alchemorsel/pantry/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/pantry/internal/infrastructure/storage"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/alchemorsel/pantry/pkg/logger"
)

// Module returns every dependency injection module for a loaded config
func Module(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		LoggerModule,
		RegistryModule,
		MonitoringModule,
		DatabaseModule,
		CacheModule,
		CompletionModule,
		StorageModule,
		ServiceModule,
		HTTPModule,
		LifecycleModule,
	)
}

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// RegistryModule exposes the process-wide Prometheus registry
var RegistryModule = fx.Provide(
	func() (prometheus.Registerer, prometheus.Gatherer) {
		return prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	},
)

// PrivateRegistryModule gives the container its own registry, for short-lived
// commands and tests that build more than one container per process.
var PrivateRegistryModule = fx.Provide(
	func() (prometheus.Registerer, prometheus.Gatherer) {
		reg := prometheus.NewRegistry()
		return reg, reg
	},
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	func(reg prometheus.Registerer, gatherer prometheus.Gatherer, log *zap.Logger) *monitoring.MetricsCollector {
		return monitoring.NewMetricsCollector(reg, gatherer, log)
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
	func(cfg *config.Config, log *zap.Logger) *healthcheck.Reporter {
		return healthcheck.New(cfg.App.Version, log.Named("health"))
	},
)

// Database is the document store chosen by database.driver
type Database struct {
	Store outbound.DocumentStore
	// SQL is nil for the memory driver.
	SQL *sql.DB
}

// NewDatabase opens the configured backend
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Database, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Info("Using in-memory document store")
		return &Database{Store: memory.NewDocumentStore()}, nil

	case "postgres":
		cm, err := postgres.NewConnectionManager(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})
		return &Database{Store: gormstore.NewDocumentStore(cm.GetDB()), SQL: cm.SQLDB()}, nil

	default:
		db, err := sqlite.SetupDatabase(cfg.Database.Path, postgres.LogLevel(cfg.Database.LogLevel), cfg.Database.AutoMigrate)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		if cfg.IsDevelopment() {
			if err := sqlite.SeedDatabase(db); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlDB.Close() }})

		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
		return &Database{Store: gormstore.NewDocumentStore(db), SQL: sqlDB}, nil
	}
}

// DatabaseModule provides the instrumented document store
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(db *Database, metrics *monitoring.MetricsCollector, health *healthcheck.Reporter) outbound.DocumentStore {
		store := monitoring.NewInstrumentedStore(db.Store, metrics)
		if db.SQL != nil {
			health.Register(healthcheck.SQLStore(db.SQL))
		} else {
			health.Register(healthcheck.Store(store.Ping))
		}
		return store
	},
)

// Cache is the completion cache backend
type Cache struct {
	Repo outbound.CacheRepository
	// Redis is nil when the in-memory cache is used.
	Redis goredis.UniversalClient
}

// NewCache connects to Redis when enabled and falls back to memory
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector, health *healthcheck.Reporter) (*Cache, error) {
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		health.Register(healthcheck.RedisCache(client))
		repo := redis.NewCacheRepository(client, "pantry:", log)
		return &Cache{Repo: monitoring.NewInstrumentedCache(repo, metrics), Redis: client}, nil
	}

	log.Info("Using in-memory completion cache")
	repo := memory.NewCacheRepository()
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go repo.Run(ctx, time.Minute)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return &Cache{Repo: monitoring.NewInstrumentedCache(repo, metrics)}, nil
}

// CacheModule provides caching
var CacheModule = fx.Provide(NewCache)

// CompletionModule provides the hot-swappable completion backend
var CompletionModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, health *healthcheck.Reporter) (*ai.Provider, error) {
		provider, err := ai.NewProvider(cfg.AI, log)
		if err != nil {
			return nil, err
		}
		health.Register(healthcheck.Completion(provider.Name, ai.NewHealthChecker(provider, log).Check))
		return provider, nil
	},
	func(provider *ai.Provider, metrics *monitoring.MetricsCollector) outbound.CompletionService {
		return monitoring.NewInstrumentedCompletion(provider, metrics)
	},
)

// StorageModule provides item image storage
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.StorageService, error) {
		return storage.New(context.Background(), cfg.Storage, log)
	},
)

// SuggestionOptions maps the ai config section onto request options
func SuggestionOptions(c config.AIConfig) suggestion.Options {
	opts := suggestion.DefaultOptions()
	if c.MaxTokens > 0 {
		opts.MaxTokens = c.MaxTokens
	}
	if c.Temperature > 0 {
		opts.Temperature = c.Temperature
	}
	if c.EnableCache {
		opts.CacheTTL = c.CacheTTL
	}
	return opts
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(metrics *monitoring.MetricsCollector, log *zap.Logger) shared.EventDispatcher {
		d := shared.NewSyncDispatcher()
		monitoring.NewEventRecorder(metrics, log).Register(d)
		return d
	},
	fx.Annotate(
		inventory.NewController,
		fx.As(new(inbound.InventoryService)),
	),
	func(cfg *config.Config, completion outbound.CompletionService, cache *Cache, log *zap.Logger) *suggestion.Service {
		return suggestion.NewService(completion, cache.Repo, nil, SuggestionOptions(cfg.AI), log)
	},
	func(s *suggestion.Service) inbound.SuggestionService { return s },
	handlers.NewWorkspace,
)

// HTTPModule provides the API and ops servers
var HTTPModule = fx.Provide(
	func(cfg *config.Config, ws *handlers.Workspace, metrics *monitoring.MetricsCollector, images outbound.StorageService, log *zap.Logger) *server.Server {
		uploads := ""
		if fs, ok := images.(*storage.FilesystemStore); ok {
			uploads = fs.Root()
		}
		return server.NewServer(cfg, ws, metrics, uploads, log)
	},
	func(cfg *config.Config, metrics *monitoring.MetricsCollector, health *healthcheck.Reporter, log *zap.Logger) *monitoring.OpsServer {
		return monitoring.NewOpsServer(cfg.GetMetricsAddr(), "/metrics", cfg.Monitoring.HealthCheckPath, metrics, health, log)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts the servers, loads the pantry and follows
// ai config changes.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	inv inbound.InventoryService,
	provider *ai.Provider,
	svc *suggestion.Service,
	api *server.Server,
	ops *monitoring.OpsServer,
	_ *monitoring.TracingProvider,
) {
	serve := func(name string, start func() error) {
		go func() {
			if err := start(); err != nil {
				log.Error("Server stopped", zap.String("server", name), zap.Error(err))
				_ = shutdowner.Shutdown(fx.ExitCode(1))
			}
		}()
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting pantry service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.String("completion_provider", provider.Name()),
			)

			// A store outage at boot is not fatal; clients can POST /load.
			if err := inv.Load(ctx); err != nil {
				log.Warn("Initial pantry load failed", zap.Error(err))
			}

			cfg.WatchAI(func(aiCfg config.AIConfig) {
				if err := provider.Reload(aiCfg); err != nil {
					log.Error("Failed to reload completion provider", zap.Error(err))
					return
				}
				svc.SetOptions(SuggestionOptions(aiCfg))
				log.Info("Completion provider reloaded", zap.String("provider", provider.Name()))
			}, func(err error) {
				log.Warn("Ignoring ai config change", zap.Error(err))
			})

			serve("api", api.Start)
			if cfg.Monitoring.EnableMetrics {
				serve("ops", ops.Start)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down pantry service")

			if err := api.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			if cfg.Monitoring.EnableMetrics {
				if err := ops.Shutdown(ctx); err != nil {
					log.Error("Failed to shutdown ops server", zap.Error(err))
				}
			}
			_ = log.Sync()
			return nil
		},
	})
}
