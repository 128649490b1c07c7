// Package healthcheck reports whether the pantry service can serve its two
// capabilities: the inventory (backed by the document store) and recipe
// suggestions (backed by the completion provider). Auxiliary backends such
// as the completion cache only ever degrade the report.
package healthcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Capability is a user-facing feature that depends on a backend
type Capability string

const (
	Inventory   Capability = "inventory"
	Suggestions Capability = "suggestions"
)

// Degraded is returned by a probe whose backend answers but is under
// pressure. The capability it serves stays available.
type Degraded struct {
	Reason string
}

func (d *Degraded) Error() string { return d.Reason }

// Probe checks one backend. details may be nil.
type Probe func(ctx context.Context) (details map[string]interface{}, err error)

// Dependency is a backend the service talks to.
type Dependency struct {
	Name string
	// Serves is empty for backends no capability relies on.
	Serves Capability
	// Required dependencies make the service unhealthy when they fail;
	// the others only degrade it.
	Required bool
	Probe    Probe
}

// Check is the outcome of probing one dependency
type Check struct {
	Name       string                 `json:"name"`
	Serves     Capability             `json:"serves,omitempty"`
	Status     Status                 `json:"status"`
	Message    string                 `json:"message,omitempty"`
	CheckedAt  time.Time              `json:"last_checked"`
	DurationMs float64                `json:"duration_ms"`
	Details    map[string]interface{} `json:"metadata,omitempty"`
}

// Report is the /health payload
type Report struct {
	Status       Status              `json:"status"`
	Version      string              `json:"version"`
	Timestamp    time.Time           `json:"timestamp"`
	Capabilities map[Capability]bool `json:"capabilities"`
	Checks       []Check             `json:"checks"`
	DurationMs   float64             `json:"total_duration_ms"`
}

// Available reports whether c can currently be served
func (r Report) Available(c Capability) bool {
	return r.Capabilities[c]
}

// Reporter probes the registered dependencies and caches the last report
type Reporter struct {
	version  string
	logger   *zap.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	deps     map[string]Dependency
	cache    *Report
	cacheTTL time.Duration
}

// New creates a reporter
func New(version string, logger *zap.Logger) *Reporter {
	return &Reporter{
		version:  version,
		logger:   logger,
		timeout:  10 * time.Second,
		deps:     make(map[string]Dependency),
		cacheTTL: 5 * time.Second,
	}
}

// Register adds dep, replacing any dependency with the same name
func (h *Reporter) Register(dep Dependency) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deps[dep.Name] = dep
	h.cache = nil
}

// SetCacheTTL sets how long a report is reused
func (h *Reporter) SetCacheTTL(ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cacheTTL = ttl
}

// Check probes every dependency concurrently
func (h *Reporter) Check(ctx context.Context) Report {
	h.mu.RLock()
	if h.cache != nil && time.Since(h.cache.Timestamp) < h.cacheTTL {
		cached := *h.cache
		h.mu.RUnlock()
		return cached
	}
	deps := make([]Dependency, 0, len(h.deps))
	for _, d := range h.deps {
		deps = append(deps, d)
	}
	h.mu.RUnlock()

	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })

	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	checks := make([]Check, len(deps))
	var wg sync.WaitGroup
	for i, d := range deps {
		wg.Add(1)
		go func(i int, d Dependency) {
			defer wg.Done()
			checks[i] = probe(checkCtx, d)
		}(i, d)
	}
	wg.Wait()

	report := Report{
		Status:       StatusHealthy,
		Version:      h.version,
		Timestamp:    start,
		Capabilities: map[Capability]bool{Inventory: true, Suggestions: true},
		Checks:       checks,
	}
	for i, c := range checks {
		switch c.Status {
		case StatusUnhealthy:
			if c.Serves != "" {
				report.Capabilities[c.Serves] = false
			}
			if deps[i].Required {
				report.Status = StatusUnhealthy
			} else if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
		if c.Status != StatusHealthy {
			h.logger.Warn("Dependency not healthy",
				zap.String("check", c.Name),
				zap.String("serves", string(c.Serves)),
				zap.String("status", string(c.Status)),
				zap.String("message", c.Message))
		}
	}
	report.DurationMs = milliseconds(time.Since(start))

	h.mu.Lock()
	h.cache = &report
	h.mu.Unlock()

	return report
}

func probe(ctx context.Context, d Dependency) Check {
	start := time.Now()
	details, err := d.Probe(ctx)
	check := Check{
		Name:       d.Name,
		Serves:     d.Serves,
		Status:     StatusHealthy,
		CheckedAt:  start,
		DurationMs: milliseconds(time.Since(start)),
		Details:    details,
	}

	var degraded *Degraded
	switch {
	case err == nil:
	case errors.As(err, &degraded):
		check.Status = StatusDegraded
		check.Message = degraded.Reason
	default:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// Handler serves the full report; 503 only when a required dependency fails
func (h *Reporter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.Check(c.Request.Context())
		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}

// LivenessHandler answers as long as the process serves requests
func (h *Reporter) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
		})
	}
}

// ReadinessHandler reports ready while the inventory can be served. Losing
// suggestions leaves the service ready with the capability switched off.
func (h *Reporter) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.Check(c.Request.Context())
		if !report.Available(Inventory) || report.Status == StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":       "not_ready",
				"reason":       "pantry store unavailable",
				"capabilities": report.Capabilities,
				"checks":       report.Checks,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "ready",
			"capabilities": report.Capabilities,
			"timestamp":    report.Timestamp,
		})
	}
}

// PoolPressure is the in-use share of the connection pool above which the
// store is reported degraded.
const PoolPressure = 0.9

// SQLStore probes the pantry document store through its connection pool
func SQLStore(db *sql.DB) Dependency {
	return Dependency{
		Name:     "database",
		Serves:   Inventory,
		Required: true,
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			if err := db.PingContext(ctx); err != nil {
				return nil, err
			}
			stats := db.Stats()
			details := map[string]interface{}{
				"open_conns":   stats.OpenConnections,
				"in_use_conns": stats.InUse,
				"idle_conns":   stats.Idle,
				"max_conns":    stats.MaxOpenConnections,
			}
			if stats.MaxOpenConnections > 0 &&
				float64(stats.InUse)/float64(stats.MaxOpenConnections) > PoolPressure {
				return details, &Degraded{Reason: "High connection pool utilization"}
			}
			return details, nil
		},
	}
}

// Store probes a document store without a SQL pool, e.g. the memory driver
func Store(ping func(ctx context.Context) error) Dependency {
	return Dependency{
		Name:     "database",
		Serves:   Inventory,
		Required: true,
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			return nil, ping(ctx)
		},
	}
}

// Completion probes the recipe completion provider. provider is read on
// every probe because the backend can be swapped at runtime.
func Completion(provider func() string, ping func(ctx context.Context) error) Dependency {
	return Dependency{
		Name:   "completion",
		Serves: Suggestions,
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			return map[string]interface{}{"provider": provider()}, ping(ctx)
		},
	}
}

// RedisCache probes the completion cache. Suggestions work without it.
func RedisCache(client redis.UniversalClient) Dependency {
	return Dependency{
		Name: "cache",
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			pong, err := client.Ping(ctx).Result()
			if err != nil {
				return nil, err
			}
			if pong != "PONG" {
				return nil, fmt.Errorf("unexpected ping response %q", pong)
			}
			return nil, nil
		},
	}
}
