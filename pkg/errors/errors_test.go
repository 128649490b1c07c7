package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := map[*AppError]int{
		NewValidationError("x"):                http.StatusBadRequest,
		NewBadRequestError("x"):                http.StatusBadRequest,
		NewItemNotFoundError("1"):              http.StatusNotFound,
		NewNotFoundError("Catalog ingredient"): http.StatusNotFound,
		NewConflictError("busy"):               http.StatusConflict,
		NewTooManyRequestsError():              http.StatusTooManyRequests,
		NewRepositoryError("list", nil):        http.StatusServiceUnavailable,
		NewPersistenceError("create", nil):     http.StatusBadGateway,
		NewGenerationError("openai", nil):      http.StatusBadGateway,
		NewInternalError(""):                   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.StatusCode(), string(err.Code))
	}
}

func TestWrapAndIs(t *testing.T) {
	t.Run("AppError_ShouldBeReturnedAsIs", func(t *testing.T) {
		// Arrange
		original := NewItemNotFoundError("abc")
		wrapped := fmt.Errorf("commit: %w", original)

		// Act
		got := Wrap(wrapped, "ignored")

		// Assert
		assert.Same(t, original, got)
		assert.True(t, Is(wrapped, CodeItemNotFound))
		assert.Equal(t, CodeItemNotFound, GetCode(wrapped))
	})

	t.Run("PlainError_ShouldBecomeInternal", func(t *testing.T) {
		cause := stderrors.New("disk full")

		got := Wrap(cause, "Unexpected failure")

		require.NotNil(t, got)
		assert.Equal(t, CodeInternal, got.Code)
		assert.Equal(t, "Unexpected failure", got.Message)
		assert.ErrorIs(t, got, cause)
		assert.False(t, Is(cause, CodeInternal))
		assert.Equal(t, CodeInternal, GetCode(cause))
	})

	t.Run("Nil_ShouldStayNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "x"))
	})
}

func TestErrorConstructors(t *testing.T) {
	t.Run("Persistence_ShouldKeepCause", func(t *testing.T) {
		cause := stderrors.New("connection reset")

		err := NewPersistenceError("update pantry item", cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "Failed to update pantry item", err.Details)
		assert.Contains(t, err.Error(), "PERSISTENCE_ERROR")
	})

	t.Run("Generation_ShouldTagProvider", func(t *testing.T) {
		err := NewGenerationError("ollama", nil)

		assert.Equal(t, "ollama", err.Metadata["provider"])
		assert.Nil(t, err.Unwrap())
	})

	t.Run("ItemNotFound_ShouldTagID", func(t *testing.T) {
		err := NewItemNotFoundError("42")

		assert.Equal(t, "42", err.Metadata["item_id"])
		assert.Contains(t, err.Details, "42")
	})

	t.Run("StackTrace_ShouldSkipThisPackage", func(t *testing.T) {
		err := NewInternalError("boom")

		assert.NotEmpty(t, err.StackTrace)
		assert.NotContains(t, err.StackTrace, "pkg/errors/errors.go")
	})
}

func TestValidationErrors(t *testing.T) {
	t.Run("Multiple_ShouldJoinMessages", func(t *testing.T) {
		// Arrange
		fields := []ValidationError{
			{Field: "prompt", Tag: "required", Message: "prompt is required"},
			{Field: "name", Tag: "max", Message: "name is too long"},
		}

		// Act
		err := NewValidationErrors(fields)

		// Assert
		assert.Equal(t, CodeValidationFailed, err.Code)
		assert.Equal(t, "prompt is required; name is too long", err.Details)
		assert.Equal(t, ValidationErrors(fields), err.Metadata["validation_errors"])
	})

	t.Run("Empty_ShouldUseGenericMessage", func(t *testing.T) {
		assert.Equal(t, "validation failed", ValidationErrors(nil).Error())
	})
}

func TestToErrorResponse(t *testing.T) {
	err := NewConflictError("a recipe generation is already in progress")

	resp := ToErrorResponse(err, "req-1")

	assert.Equal(t, CodeConflict, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.NotEmpty(t, resp.Error.Timestamp)
}
