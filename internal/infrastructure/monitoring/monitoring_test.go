package monitoring

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/alchemorsel/pantry/test/testutils"
)

type MonitoringTestSuite struct {
	suite.Suite
	ctx      context.Context
	registry *prometheus.Registry
	metrics  *MetricsCollector
}

func (suite *MonitoringTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.registry = prometheus.NewRegistry()
	suite.metrics = NewMetricsCollector(suite.registry, suite.registry, zap.NewNop())
}

func (suite *MonitoringTestSuite) TestInstrumentedStore() {
	suite.Run("Create_ShouldPassThrough", func() {
		// Arrange
		store := NewInstrumentedStore(memory.NewDocumentStore(), suite.metrics)

		// Act
		id, err := store.Create(suite.ctx, pantry.Collection, map[string]any{"name": "Tomato"})
		docs, listErr := store.ListAll(suite.ctx, pantry.Collection)

		// Assert
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), listErr)
		require.Len(suite.T(), docs, 1)
		assert.Equal(suite.T(), id, docs[0].ID)
		assert.Equal(suite.T(), 0.0, testutil.ToFloat64(suite.metrics.storeOpErrors.WithLabelValues("create", pantry.Collection)))
		assert.NoError(suite.T(), store.Ping(suite.ctx))
	})

	suite.Run("Failure_ShouldCountError", func() {
		inner := new(testutils.MockDocumentStore)
		inner.On("Delete", mock.Anything, pantry.Collection, "x").Return(outbound.ErrDocumentNotFound)
		store := NewInstrumentedStore(inner, suite.metrics)

		err := store.Delete(suite.ctx, pantry.Collection, "x")

		assert.ErrorIs(suite.T(), err, outbound.ErrDocumentNotFound)
		assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.storeOpErrors.WithLabelValues("delete", pantry.Collection)))
	})
}

func (suite *MonitoringTestSuite) TestInstrumentedCompletion() {
	// Arrange
	inner := new(testutils.MockCompletionService)
	inner.On("Complete", mock.Anything, mock.Anything).Return("Recipe 1: Soup - warm", nil).Once()
	inner.On("Complete", mock.Anything, mock.Anything).Return("", stderrors.New("boom")).Once()
	completion := NewInstrumentedCompletion(inner, suite.metrics)

	// Act
	_, okErr := completion.Complete(suite.ctx, outbound.CompletionRequest{Prompt: "a"})
	_, failErr := completion.Complete(suite.ctx, outbound.CompletionRequest{Prompt: "b"})

	// Assert
	assert.NoError(suite.T(), okErr)
	assert.Error(suite.T(), failErr)
	assert.Equal(suite.T(), "mock", completion.Name())
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.generationTotal.WithLabelValues("mock", "success")))
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.generationTotal.WithLabelValues("mock", "error")))
}

func (suite *MonitoringTestSuite) TestInstrumentedCache() {
	// Arrange
	cache := NewInstrumentedCache(memory.NewCacheRepository(), suite.metrics)

	// Act
	_, missErr := cache.Get(suite.ctx, "k")
	require.NoError(suite.T(), cache.Set(suite.ctx, "k", []byte("v"), time.Minute))
	value, hitErr := cache.Get(suite.ctx, "k")

	// Assert
	assert.ErrorIs(suite.T(), missErr, outbound.ErrCacheMiss)
	assert.NoError(suite.T(), hitErr)
	assert.Equal(suite.T(), []byte("v"), value)
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.cacheOperations.WithLabelValues("get", "miss")))
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.cacheOperations.WithLabelValues("get", "hit")))
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.cacheOperations.WithLabelValues("set", "ok")))
}

func (suite *MonitoringTestSuite) TestEventRecorder() {
	// Arrange
	dispatcher := shared.NewSyncDispatcher()
	NewEventRecorder(suite.metrics, zap.NewNop()).Register(dispatcher)

	// Act
	require.NoError(suite.T(), dispatcher.Dispatch(pantry.InventoryLoadedEvent{Count: 7, LoadedAt: time.Now()}))
	require.NoError(suite.T(), dispatcher.Dispatch(pantry.ItemAddedEvent{ItemID: "1", Name: "Egg", AddedAt: time.Now()}))

	// Assert
	assert.Equal(suite.T(), 7.0, testutil.ToFloat64(suite.metrics.inventoryItems))
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.inventoryEventsTotal.WithLabelValues("pantry.item.added")))
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.inventoryEventsTotal.WithLabelValues("pantry.inventory.loaded")))
}

func (suite *MonitoringTestSuite) TestChiMiddleware() {
	// Arrange
	r := chi.NewRouter()
	r.Use(suite.metrics.ChiMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	// Act
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))

	// Assert
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(
		suite.metrics.httpRequestsTotal.WithLabelValues("api", http.MethodGet, "/items/{id}", "418")))
}

func (suite *MonitoringTestSuite) TestOpsServer() {
	// Arrange
	health := healthcheck.New("test", zap.NewNop())
	health.Register(healthcheck.Store(memory.NewDocumentStore().Ping))
	suite.metrics.InventorySize(3)
	ops := NewOpsServer(":0", "", "", suite.metrics, health, zap.NewNop())

	suite.Run("Metrics_ShouldExposeDomainGauge", func() {
		rec := httptest.NewRecorder()
		ops.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(suite.T(), http.StatusOK, rec.Code)
		assert.True(suite.T(), strings.Contains(rec.Body.String(), "pantry_inventory_items 3"))
	})

	suite.Run("Ready_ShouldBeOK", func() {
		rec := httptest.NewRecorder()
		ops.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(suite.T(), http.StatusOK, rec.Code)
		assert.Contains(suite.T(), rec.Body.String(), "ready")
	})
}

func (suite *MonitoringTestSuite) TestTracingDisabled() {
	// Act
	tp, err := NewTracingProvider(suite.ctx, TracingConfig{ServiceName: "pantry"}, zap.NewNop())

	// Assert
	require.NoError(suite.T(), err)
	assert.NoError(suite.T(), tp.Shutdown(suite.ctx))
	assert.Empty(suite.T(), TraceIDFromContext(suite.ctx))
}

func TestMonitoringTestSuite(t *testing.T) {
	suite.Run(t, new(MonitoringTestSuite))
}
