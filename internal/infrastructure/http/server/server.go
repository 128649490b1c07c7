// Package server wires the pantry REST API onto a chi router
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer builds the API router. metrics may be nil; uploadsDir, when
// set, is served under /uploads for the filesystem image store.
func NewServer(
	cfg *config.Config,
	ws *handlers.Workspace,
	metrics *monitoring.MetricsCollector,
	uploadsDir string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("http"),
	}
	s.router = s.setupRouter(ws, metrics, uploadsDir)

	s.server = &http.Server{
		Addr:              cfg.GetServerAddr(),
		Handler:           otelhttp.NewHandler(s.router, "pantry-api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
	return s
}

func (s *Server) setupRouter(ws *handlers.Workspace, metrics *monitoring.MetricsCollector, uploadsDir string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, s.config.Monitoring.HealthCheckPath))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}
	if s.config.Server.EnableCompression {
		r.Use(compressor().Handler)
	}
	if metrics != nil {
		r.Use(metrics.ChiMiddleware)
	}

	limit := middleware.RateLimit(s.config.RateLimit, s.logger)
	pantryAPI := handlers.NewPantryAPI(ws, handlers.UploadLimits{
		MaxBytes:     s.config.Storage.MaxFileSize,
		AllowedTypes: s.config.Storage.AllowedTypes,
	}, s.logger)
	selectionAPI := handlers.NewSelectionAPI(ws, s.logger)
	recipesAPI := handlers.NewRecipesAPI(ws, s.logger)

	r.With(limit).Post("/generate-recipes", recipesAPI.GenerateRecipes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/openapi.yaml", serveOpenAPI)
		r.Get("/docs", serveSwaggerUI)
		r.Route("/pantry", pantryAPI.Routes)
		r.Route("/selection", selectionAPI.Routes)
		r.Route("/recipes", func(r chi.Router) {
			recipesAPI.Routes(r, limit)
		})
	})

	if uploadsDir != "" {
		files := http.FileServer(http.Dir(uploadsDir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", files))
	}

	return r
}

// compressor adds brotli ahead of chi's gzip and deflate encoders
func compressor() *chimiddleware.Compressor {
	c := chimiddleware.NewCompressor(5, "application/json", "text/plain")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// Handler returns the instrumented router
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown. It never returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
