package monitoring

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

var tracer = otel.Tracer("github.com/alchemorsel/pantry/internal/infrastructure/monitoring")

// InstrumentedStore wraps a DocumentStore with a span and metrics per call
type InstrumentedStore struct {
	next    outbound.DocumentStore
	metrics *MetricsCollector
}

// NewInstrumentedStore decorates next
func NewInstrumentedStore(next outbound.DocumentStore, metrics *MetricsCollector) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics}
}

var _ outbound.DocumentStore = (*InstrumentedStore)(nil)

func (s *InstrumentedStore) observe(ctx context.Context, op, collection string, call func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.operation", op),
			attribute.String("db.collection", collection),
		))
	defer span.End()

	start := time.Now()
	err := call(ctx)
	s.metrics.StoreOperation(op, collection, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
	}
	return err
}

func (s *InstrumentedStore) ListAll(ctx context.Context, collection string) ([]outbound.Document, error) {
	var docs []outbound.Document
	err := s.observe(ctx, "list", collection, func(ctx context.Context) error {
		var err error
		docs, err = s.next.ListAll(ctx, collection)
		return err
	})
	return docs, err
}

func (s *InstrumentedStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	var id string
	err := s.observe(ctx, "create", collection, func(ctx context.Context) error {
		var err error
		id, err = s.next.Create(ctx, collection, fields)
		return err
	})
	return id, err
}

func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.observe(ctx, "update", collection, func(ctx context.Context) error {
		return s.next.Update(ctx, collection, id, fields)
	})
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) error {
	return s.observe(ctx, "delete", collection, func(ctx context.Context) error {
		return s.next.Delete(ctx, collection, id)
	})
}

// InstrumentedCompletion records request counts and latency per provider
type InstrumentedCompletion struct {
	next    outbound.CompletionService
	metrics *MetricsCollector
}

// NewInstrumentedCompletion decorates next
func NewInstrumentedCompletion(next outbound.CompletionService, metrics *MetricsCollector) *InstrumentedCompletion {
	return &InstrumentedCompletion{next: next, metrics: metrics}
}

var _ outbound.CompletionService = (*InstrumentedCompletion)(nil)

func (c *InstrumentedCompletion) Name() string {
	return c.next.Name()
}

func (c *InstrumentedCompletion) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "completion."+c.next.Name(), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	text, err := c.next.Complete(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
	}
	c.metrics.Generation(c.next.Name(), status, time.Since(start))
	return text, err
}

// InstrumentedCache counts cache hits and misses
type InstrumentedCache struct {
	next    outbound.CacheRepository
	metrics *MetricsCollector
}

// NewInstrumentedCache decorates next
func NewInstrumentedCache(next outbound.CacheRepository, metrics *MetricsCollector) *InstrumentedCache {
	return &InstrumentedCache{next: next, metrics: metrics}
}

var _ outbound.CacheRepository = (*InstrumentedCache)(nil)

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.next.Get(ctx, key)
	switch {
	case err == nil:
		c.metrics.CacheOperation("get", "hit")
	case errors.Is(err, outbound.ErrCacheMiss):
		c.metrics.CacheOperation("get", "miss")
	default:
		c.metrics.CacheOperation("get", "error")
	}
	return data, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	c.metrics.CacheOperation("set", statusOf(err))
	return err
}

func (c *InstrumentedCache) Delete(ctx context.Context, key string) error {
	err := c.next.Delete(ctx, key)
	c.metrics.CacheOperation("delete", statusOf(err))
	return err
}

func (c *InstrumentedCache) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := c.next.Exists(ctx, key)
	c.metrics.CacheOperation("exists", statusOf(err))
	return ok, err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Ping forwards to the wrapped store when it supports health checks.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
