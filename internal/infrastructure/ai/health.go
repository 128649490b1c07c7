package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HealthStatus represents the health of the active completion provider
type HealthStatus struct {
	Overall   string    `json:"overall"`
	Provider  string    `json:"provider"`
	Details   string    `json:"details"`
	LastCheck time.Time `json:"last_check"`
}

// HealthChecker provides health check functionality for the completion provider
type HealthChecker struct {
	provider *Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHealthChecker creates a new AI health checker
func NewHealthChecker(provider *Provider, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		provider: provider,
		timeout:  10 * time.Second,
		logger:   logger.Named("ai-health"),
	}
}

// CheckHealth probes the active provider
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Provider:  h.provider.Name(),
		LastCheck: time.Now(),
	}

	healthCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.provider.HealthCheck(healthCtx); err != nil {
		status.Overall = "critical"
		status.Details = fmt.Sprintf("Unhealthy: %v", err)
		h.logger.Warn("Completion provider health check failed",
			zap.String("provider", status.Provider),
			zap.Error(err))
		return status
	}

	status.Overall = "healthy"
	status.Details = "Healthy"
	h.logger.Debug("Completion provider health check passed", zap.String("provider", status.Provider))
	return status
}

// Check reduces CheckHealth to an error for healthcheck.Completion
func (h *HealthChecker) Check(ctx context.Context) error {
	status := h.CheckHealth(ctx)
	if status.Overall != "healthy" {
		return fmt.Errorf("%s: %s", status.Provider, status.Details)
	}
	return nil
}
