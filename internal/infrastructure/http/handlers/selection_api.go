package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/selection"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/pkg/errors"
)

// SelectionView is the classification of every non-neutral ingredient plus
// the input the next suggestion would use.
type SelectionView struct {
	Statuses map[string]selection.Status `json:"statuses"`
	Active   selection.Active            `json:"active"`
}

// SelectionAPI exposes the tri-state ingredient selection
type SelectionAPI struct {
	ws     *Workspace
	logger *zap.Logger
}

// NewSelectionAPI creates the selection handlers
func NewSelectionAPI(ws *Workspace, logger *zap.Logger) *SelectionAPI {
	return &SelectionAPI{ws: ws, logger: logger.Named("selection-api")}
}

// Routes mounts the selection endpoints on r
func (h *SelectionAPI) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/select", h.Select)
	r.Post("/exclude", h.Exclude)
	r.Post("/star", h.Star)
	r.Post("/reset", h.Reset)
}

func (h *SelectionAPI) respond(w http.ResponseWriter) {
	writeJSON(w, h.logger, http.StatusOK, SelectionView{
		Statuses: h.ws.selection.Snapshot(),
		Active:   h.ws.selection.Active(),
	})
}

// Get handles GET /api/v1/selection
func (h *SelectionAPI) Get(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	h.ws.syncSelection()
	h.respond(w)
}

// Select handles POST /api/v1/selection/select
func (h *SelectionAPI) Select(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(name string) error {
		h.ws.selection.ToggleSelect(name)
		return nil
	})
}

// Exclude handles POST /api/v1/selection/exclude
func (h *SelectionAPI) Exclude(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(name string) error {
		h.ws.selection.ToggleExclude(name)
		return nil
	})
}

// Star handles POST /api/v1/selection/star
func (h *SelectionAPI) Star(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(name string) error {
		if _, err := h.ws.selection.SetStar(name); err != nil {
			return errors.NewValidationError(err.Error()).WithCause(err).WithMetadata("name", name)
		}
		return nil
	})
}

// Reset handles POST /api/v1/selection/reset
func (h *SelectionAPI) Reset(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	h.ws.selection.Reset()
	h.respond(w)
}

// apply validates that name is a loaded pantry item before running op.
func (h *SelectionAPI) apply(w http.ResponseWriter, r *http.Request, op func(name string) error) {
	var cmd inbound.IngredientCommand
	if err := decode(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	h.ws.syncSelection()
	if !h.ws.inventory.Loaded() {
		writeError(w, r, h.logger, errors.NewValidationError("load the pantry before selecting ingredients"))
		return
	}
	if !contains(h.ws.inventory.Names(), cmd.Name) {
		writeError(w, r, h.logger, errors.NewNotFoundError("Pantry ingredient").WithMetadata("name", cmd.Name))
		return
	}
	if err := op(cmd.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
