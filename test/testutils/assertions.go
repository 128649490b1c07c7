package testutils

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(resp *http.Response, target interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	err := json.NewDecoder(resp.Body).Decode(target)
	require.NoError(ha.t, err, "Response should be valid JSON")
}

// ErrorCode asserts the structured error code of an error response
func (ha *HTTPAssertions) ErrorCode(resp *http.Response, expected apperrors.ErrorCode) {
	var body apperrors.ErrorResponse
	ha.JSONResponse(resp, &body)
	assert.Equal(ha.t, expected, body.Error.Code)
}

// ItemsEqual asserts two lists hold the same items in the same order
func ItemsEqual(t *testing.T, expected, actual []pantry.Item, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, pantry.Names(expected), pantry.Names(actual), msgAndArgs...)
	assert.Equal(t, expected, actual, msgAndArgs...)
}
