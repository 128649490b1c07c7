// Package suggestion provides the application layer for recipe suggestions:
// prompt construction, one completion call per request and tolerant parsing.
package suggestion

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/selection"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
)

var tracer = otel.Tracer("github.com/alchemorsel/pantry/internal/application/suggestion")

// Options tune the completion request and the prompt cache. A zero
// CacheTTL leaves the cache untouched so every call reaches the provider.
type Options struct {
	MaxTokens   int
	Temperature float64
	CacheTTL    time.Duration
}

// DefaultOptions matches the request the service has always sent. Caching
// is off.
func DefaultOptions() Options {
	return Options{
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

// Service implements inbound.SuggestionService
type Service struct {
	completion outbound.CompletionService
	cache      *completionCache
	parser     recipe.Parser
	logger     *zap.Logger

	mu       sync.RWMutex
	opts     Options
	last     []recipe.Recipe
	inFlight atomic.Bool
}

// NewService creates a suggestion service. cache may be nil to disable
// completion caching; parser defaults to recipe.TextParser.
func NewService(
	completion outbound.CompletionService,
	cache outbound.CacheRepository,
	parser recipe.Parser,
	opts Options,
	logger *zap.Logger,
) *Service {
	if parser == nil {
		parser = recipe.NewTextParser()
	}
	logger = logger.Named("suggestion")
	return &Service{
		completion: completion,
		cache:      newCompletionCache(cache, logger),
		parser:     parser,
		opts:       opts,
		logger:     logger,
	}
}

var _ inbound.SuggestionService = (*Service)(nil)

// SetOptions replaces the request options, e.g. after a config reload.
func (s *Service) SetOptions(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

func (s *Service) options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Generate sends exactly one completion request for prompt. A second call
// while one is outstanding is rejected with a conflict. Only when CacheTTL is
// set can a repeated prompt be answered from the cache.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	text, _, err := s.generate(ctx, prompt)
	return text, err
}

func (s *Service) generate(ctx context.Context, prompt string) (string, bool, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", false, errors.NewValidationError("prompt is required; select at least one ingredient")
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return "", false, errors.NewConflictError("a recipe generation is already in progress")
	}
	defer s.inFlight.Store(false)

	ctx, span := tracer.Start(ctx, "suggestion.generate")
	defer span.End()

	opts := s.options()
	req := outbound.CompletionRequest{
		System:      recipe.SystemInstruction,
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	span.SetAttributes(
		attribute.String("completion.provider", s.completion.Name()),
		attribute.Int("completion.max_tokens", req.MaxTokens),
	)

	key := s.cache.key(s.completion.Name(), req)
	if text, ok := s.cache.get(ctx, key, opts.CacheTTL); ok {
		span.SetAttributes(attribute.Bool("completion.cached", true))
		s.logger.Debug("Completion served from cache", zap.String("key", key))
		return text, true, nil
	}

	start := time.Now()
	text, err := s.completion.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		s.logger.Error("Completion failed",
			zap.String("provider", s.completion.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", false, errors.NewGenerationError(s.completion.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty completion")
		s.logger.Warn("Completion returned no content", zap.String("provider", s.completion.Name()))
		return "", false, errors.NewGenerationError(s.completion.Name(), nil).
			WithMetadata("reason", "empty completion")
	}

	s.cache.set(ctx, key, text, opts.CacheTTL)

	s.logger.Info("Completion received",
		zap.String("provider", s.completion.Name()),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, false, nil
}

// Suggest builds the prompt for active, generates and parses the recipes.
// On failure the previous recipes are kept.
func (s *Service) Suggest(ctx context.Context, active selection.Active) (*inbound.SuggestionResult, error) {
	prompt := recipe.BuildPrompt(active)
	if prompt == "" {
		return nil, errors.NewValidationError("select at least one ingredient")
	}

	text, cached, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	recipes := s.parser.Parse(text)
	if len(recipes) == 0 {
		s.logger.Warn("Completion contained no recognisable recipes",
			zap.String("parser", s.parser.Version()),
			zap.Int("chars", len(text)),
		)
	}

	s.mu.Lock()
	s.last = recipes
	s.mu.Unlock()

	return &inbound.SuggestionResult{
		Prompt:        prompt,
		Recipes:       recipes,
		ParserVersion: s.parser.Version(),
		Cached:        cached,
	}, nil
}

// LastRecipes returns the recipes of the last successful Suggest.
func (s *Service) LastRecipes() []recipe.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]recipe.Recipe{}, s.last...)
}

// ClearRecipes forgets the last recipes.
func (s *Service) ClearRecipes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}
