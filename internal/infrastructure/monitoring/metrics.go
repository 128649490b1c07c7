package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "pantry"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Domain metrics
	inventoryEventsTotal *prometheus.CounterVec
	inventoryItems       prometheus.Gauge
	generationTotal      *prometheus.CounterVec
	generationDuration   *prometheus.HistogramVec

	// Dependency metrics
	storeOpDuration *prometheus.HistogramVec
	storeOpErrors   *prometheus.CounterVec
	cacheOperations *prometheus.CounterVec
}

// NewMetricsCollector registers the metrics on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsCollector(reg prometheus.Registerer, gatherer prometheus.Gatherer, logger *zap.Logger) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		gatherer: gatherer,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"server", "method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"server", "method", "path"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"server", "method", "path"},
		),

		inventoryEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inventory_events_total",
				Help:      "Pantry domain events by name",
			},
			[]string{"event"},
		),
		inventoryItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "inventory_items",
				Help:      "Items in the pantry after the last load",
			},
		),
		generationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_requests_total",
				Help:      "Completion requests by provider and status",
			},
			[]string{"provider", "status"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Completion request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"provider"},
		),

		storeOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Document store operation duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation", "collection"},
		),
		storeOpErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operation_errors_total",
				Help:      "Failed document store operations",
			},
			[]string{"operation", "collection"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Total number of cache operations",
			},
			[]string{"operation", "status"},
		),
	}
}

func (m *MetricsCollector) observeHTTP(server, method, path string, status, size int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(server, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(server, method, path).Observe(duration.Seconds())
	m.httpResponseSize.WithLabelValues(server, method, path).Observe(float64(size))
}

// GinMiddleware records HTTP metrics for the ops router
func (m *MetricsCollector) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.observeHTTP("ops", c.Request.Method, c.FullPath(), c.Writer.Status(), c.Writer.Size(), time.Since(start))
	}
}

// ChiMiddleware records HTTP metrics for the API router, labelled by route
// pattern to keep cardinality bounded.
func (m *MetricsCollector) ChiMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.observeHTTP("api", r.Method, path, status, ww.BytesWritten(), time.Since(start))
	})
}

// InventoryEvent counts a pantry domain event
func (m *MetricsCollector) InventoryEvent(name string) {
	m.inventoryEventsTotal.WithLabelValues(name).Inc()
}

// InventorySize records the item count after a load
func (m *MetricsCollector) InventorySize(n int) {
	m.inventoryItems.Set(float64(n))
}

// Generation records one completion request
func (m *MetricsCollector) Generation(provider, status string, duration time.Duration) {
	m.generationTotal.WithLabelValues(provider, status).Inc()
	m.generationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// StoreOperation records one document store call
func (m *MetricsCollector) StoreOperation(operation, collection string, duration time.Duration, err error) {
	m.storeOpDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		m.storeOpErrors.WithLabelValues(operation, collection).Inc()
	}
}

// CacheOperation counts a cache call; status is hit, miss, ok or error
func (m *MetricsCollector) CacheOperation(operation, status string) {
	m.cacheOperations.WithLabelValues(operation, status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
