package monitoring

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/pkg/healthcheck"
)

// OpsServer exposes metrics and health endpoints on a separate port
type OpsServer struct {
	server *http.Server
	logger *zap.Logger
}

// NewOpsServer builds the gin router for /metrics and /health
func NewOpsServer(addr, metricsPath, healthPath string, metrics *MetricsCollector, health *healthcheck.Reporter, logger *zap.Logger) *OpsServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.GinMiddleware())

	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if healthPath == "" {
		healthPath = "/health"
	}
	router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	router.GET(healthPath, health.Handler())
	router.GET(healthPath+"/live", health.LivenessHandler())
	router.GET(healthPath+"/ready", health.ReadinessHandler())

	return &OpsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("ops"),
	}
}

// Handler returns the router, mainly for tests
func (s *OpsServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown. It never returns http.ErrServerClosed.
func (s *OpsServer) Start() error {
	s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the ops server
func (s *OpsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops server")
	return s.server.Shutdown(ctx)
}
