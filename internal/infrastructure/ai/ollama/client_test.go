package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

func TestClient(t *testing.T) {
	t.Run("Complete_ShouldSendNonStreamingChat", func(t *testing.T) {
		// Arrange
		var got ChatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/chat", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(ChatResponse{
				Message: ChatMessage{Role: "assistant", Content: "Recipe 1: Stew - Slow."},
				Done:    true,
			})
		}))
		defer server.Close()
		client := NewClient(Config{Host: server.URL, Model: "tiny"}, zap.NewNop())

		// Act
		text, err := client.Complete(context.Background(), outbound.CompletionRequest{
			System: "sys", Prompt: "user", MaxTokens: 500, Temperature: 0.7,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Recipe 1: Stew - Slow.", text)
		assert.False(t, got.Stream)
		assert.Equal(t, "tiny", got.Model)
		assert.EqualValues(t, 500, got.Options["num_predict"])
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
	})

	t.Run("Incomplete_ShouldReturnError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"part"},"done":false}`))
		}))
		defer server.Close()
		client := NewClient(Config{Host: server.URL}, zap.NewNop())

		_, err := client.Complete(context.Background(), outbound.CompletionRequest{Prompt: "x"})

		assert.Error(t, err)
	})

	t.Run("HealthCheck_ShouldRequireModel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[{"name":"tiny"}]}`))
		}))
		defer server.Close()

		assert.NoError(t, NewClient(Config{Host: server.URL, Model: "tiny"}, zap.NewNop()).HealthCheck(context.Background()))
		assert.Error(t, NewClient(Config{Host: server.URL, Model: "big"}, zap.NewNop()).HealthCheck(context.Background()))
	})
}
