// Package handlers provides HTTP handlers for the pantry REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/selection"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/pkg/errors"
)

// Workspace is the single editing session the API drives: the inventory
// controller, the ingredient selection over its names and the suggestion
// service. The controller and the selection are not goroutine safe, so
// every handler touches them under mu.
type Workspace struct {
	mu         sync.Mutex
	inventory  inbound.InventoryService
	selection  *selection.State
	suggestion inbound.SuggestionService
	inFlight   sync.Map
}

// NewWorkspace creates the shared session state for the handlers
func NewWorkspace(inventory inbound.InventoryService, suggestion inbound.SuggestionService) *Workspace {
	return &Workspace{
		inventory:  inventory,
		selection:  selection.New(),
		suggestion: suggestion,
	}
}

// acquire marks a remote call against key as outstanding. A second call for
// the same key is rejected until release runs.
func (ws *Workspace) acquire(key string) (release func(), err error) {
	if _, busy := ws.inFlight.LoadOrStore(key, struct{}{}); busy {
		return nil, errors.NewConflictError("an operation on this item is already in progress").
			WithMetadata("key", key)
	}
	return func() { ws.inFlight.Delete(key) }, nil
}

// syncSelection drops classifications for names no longer in the pantry.
// Callers hold mu.
func (ws *Workspace) syncSelection() {
	ws.selection.Sync(ws.inventory.Names())
}

var validate = validator.New()

// decode reads a JSON body into dst and validates its struct tags
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewBadRequestError("Invalid JSON body").WithCause(err)
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return errors.NewValidationError(err.Error()).WithCause(err)
		}
		out := make([]errors.ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, errors.ValidationError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Tag:     fe.Tag(),
				Message: fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag()),
			})
		}
		return errors.NewValidationErrors(out)
	}
	return nil
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError logs server-side failures and renders the error response
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := errors.Wrap(err, "An unexpected error occurred")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("code", string(appErr.Code)),
			zap.String("details", appErr.Details),
			zap.Error(appErr.Cause),
		)
	}
	middleware.WriteError(w, r, appErr)
}
