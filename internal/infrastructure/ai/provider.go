// Package ai selects and hot-swaps the completion provider
package ai

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/ai/mock"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// New builds the completion service named by cfg.Provider
func New(cfg config.AIConfig, logger *zap.Logger) (outbound.CompletionService, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.Timeout,
		}, logger), nil
	case "ollama":
		return ollama.NewClient(ollama.Config{
			Host:    cfg.OllamaHost,
			Model:   cfg.OllamaModel,
			Timeout: cfg.Timeout,
		}, logger), nil
	case "mock":
		return mock.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// Provider is a CompletionService whose backend can be replaced at runtime.
type Provider struct {
	mu      sync.RWMutex
	current outbound.CompletionService
	logger  *zap.Logger
}

// NewProvider builds the initial backend from cfg
func NewProvider(cfg config.AIConfig, logger *zap.Logger) (*Provider, error) {
	svc, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Provider{current: svc, logger: logger.Named("ai-provider")}, nil
}

var _ outbound.CompletionService = (*Provider)(nil)

// Reload swaps the backend. On error the previous backend stays active.
func (p *Provider) Reload(cfg config.AIConfig) error {
	svc, err := New(cfg, p.logger)
	if err != nil {
		return err
	}
	p.mu.Lock()
	old := p.current.Name()
	p.current = svc
	p.mu.Unlock()

	p.logger.Info("Completion provider reloaded",
		zap.String("previous", old),
		zap.String("provider", svc.Name()))
	return nil
}

func (p *Provider) backend() outbound.CompletionService {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Name implements outbound.CompletionService
func (p *Provider) Name() string {
	return p.backend().Name()
}

// Complete implements outbound.CompletionService
func (p *Provider) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	return p.backend().Complete(ctx, req)
}

// HealthCheck delegates to the backend when it supports health checks
func (p *Provider) HealthCheck(ctx context.Context) error {
	if hc, ok := p.backend().(interface{ HealthCheck(context.Context) error }); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
