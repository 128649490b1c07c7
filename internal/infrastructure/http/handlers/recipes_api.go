package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
)

// MessageResponse is the body of the generate-recipes error responses
type MessageResponse struct {
	Message string `json:"message"`
}

// GenerateRecipesResponse carries the completion split into lines
type GenerateRecipesResponse struct {
	Recipes []string `json:"recipes"`
}

// RecipesAPI exposes recipe generation
type RecipesAPI struct {
	ws     *Workspace
	logger *zap.Logger
}

// NewRecipesAPI creates the recipe handlers
func NewRecipesAPI(ws *Workspace, logger *zap.Logger) *RecipesAPI {
	return &RecipesAPI{ws: ws, logger: logger.Named("recipes-api")}
}

// Routes mounts the structured recipe endpoints on r. limit guards the
// generating route.
func (h *RecipesAPI) Routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/", h.Last)
	r.Delete("/", h.Clear)
	r.With(limit).Post("/suggest", h.Suggest)
}

// GenerateRecipes handles POST /generate-recipes. Any failure after the
// prompt check is reported as a generic 500.
func (h *RecipesAPI) GenerateRecipes(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.GenerateRecipesCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || strings.TrimSpace(cmd.Prompt) == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, MessageResponse{Message: "Prompt is required"})
		return
	}
	if err := validate.Struct(cmd); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, MessageResponse{Message: "Prompt is too long"})
		return
	}

	text, err := h.ws.suggestion.Generate(r.Context(), cmd.Prompt)
	if err != nil {
		h.logger.Error("Error generating recipes", zap.Error(err))
		writeJSON(w, h.logger, http.StatusInternalServerError, MessageResponse{Message: "Error generating recipes"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, GenerateRecipesResponse{Recipes: recipe.SplitLines(text)})
}

// Suggest handles POST /api/v1/recipes/suggest using the current selection
func (h *RecipesAPI) Suggest(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	h.ws.syncSelection()
	active := h.ws.selection.Active()
	h.ws.mu.Unlock()

	result, err := h.ws.suggestion.Suggest(r.Context(), active)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if result.Recipes == nil {
		result.Recipes = []recipe.Recipe{}
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

// Last handles GET /api/v1/recipes
func (h *RecipesAPI) Last(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{"recipes": h.ws.suggestion.LastRecipes()})
}

// Clear handles DELETE /api/v1/recipes
func (h *RecipesAPI) Clear(w http.ResponseWriter, r *http.Request) {
	h.ws.suggestion.ClearRecipes()
	w.WriteHeader(http.StatusNoContent)
}
