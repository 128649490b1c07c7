//go:build integration

package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/redis"
)

// TestDatabase is a throwaway postgres container and a connection to it
type TestDatabase struct {
	Container testcontainers.Container
	Config    config.DatabaseConfig
	Conn      *postgres.ConnectionManager
}

// SetupTestDatabase starts postgres:15-alpine and connects without running
// any migration; tests pick gorm auto-migration or the versioned scripts.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "pantry_test",
				"POSTGRES_USER":     "test_user",
				"POSTGRES_PASSWORD": "test_password",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("5432/tcp"),
			),
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:             "postgres",
		Host:               host,
		Port:               port.Int(),
		Database:           "pantry_test",
		Username:           "test_user",
		Password:           "test_password",
		SSLMode:            "disable",
		MaxOpenConns:       5,
		MaxIdleConns:       1,
		ConnMaxLifetime:    time.Hour,
		LogLevel:           "silent",
		SlowQueryThreshold: time.Second,
	}

	conn, err := postgres.NewConnectionManager(cfg, zap.NewNop())
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = conn.Close() })

	return &TestDatabase{Container: container, Config: cfg, Conn: conn}
}

// Truncate empties the documents table between tests
func (td *TestDatabase) Truncate(t *testing.T) {
	t.Helper()
	require.NoError(t, td.Conn.GetDB().Exec("TRUNCATE TABLE documents").Error)
}

// SetupTestRedis starts redis:7-alpine and returns a connected client
func SetupTestRedis(t *testing.T) goredis.UniversalClient {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := redis.NewClient(config.RedisConfig{
		Enabled:      true,
		Host:         host,
		Port:         port.Int(),
		PoolSize:     5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err, fmt.Sprintf("Failed to connect to redis at %s:%d", host, port.Int()))
	t.Cleanup(func() { _ = client.Close() })

	return client
}
