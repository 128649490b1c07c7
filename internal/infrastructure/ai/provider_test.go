package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	for _, name := range []string{"openai", "ollama", "mock"} {
		t.Run(name+"_ShouldBuildProvider", func(t *testing.T) {
			svc, err := New(config.AIConfig{Provider: name}, zap.NewNop())

			require.NoError(t, err)
			assert.Equal(t, name, svc.Name())
		})
	}

	t.Run("Unknown_ShouldFail", func(t *testing.T) {
		_, err := New(config.AIConfig{Provider: "bard"}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestProviderReload(t *testing.T) {
	// Arrange
	p, err := NewProvider(config.AIConfig{Provider: "mock"}, zap.NewNop())
	require.NoError(t, err)

	// Act
	failed := p.Reload(config.AIConfig{Provider: "bard"})
	swapped := p.Reload(config.AIConfig{Provider: "ollama"})

	// Assert
	assert.Error(t, failed)
	require.NoError(t, swapped)
	assert.Equal(t, "ollama", p.Name())
}

func TestHealthChecker(t *testing.T) {
	t.Run("Mock_ShouldBeHealthy", func(t *testing.T) {
		p, _ := NewProvider(config.AIConfig{Provider: "mock"}, zap.NewNop())

		status := NewHealthChecker(p, zap.NewNop()).CheckHealth(context.Background())

		assert.Equal(t, "healthy", status.Overall)
		assert.Equal(t, "mock", status.Provider)
	})

	t.Run("UnreachableOllama_ShouldBeCritical", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		p, _ := NewProvider(config.AIConfig{Provider: "ollama", OllamaHost: server.URL}, zap.NewNop())

		err := NewHealthChecker(p, zap.NewNop()).Check(context.Background())

		assert.Error(t, err)
	})
}
