package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/pkg/errors"
)

// UploadLimits constrain item photos
type UploadLimits struct {
	MaxBytes     int64
	AllowedTypes []string
}

// PantryAPI exposes the inventory controller
type PantryAPI struct {
	ws        *Workspace
	maxUpload int64
	allowed   map[string]struct{}
	logger    *zap.Logger
}

// NewPantryAPI creates the pantry handlers. An empty AllowedTypes accepts
// any content type.
func NewPantryAPI(ws *Workspace, limits UploadLimits, logger *zap.Logger) *PantryAPI {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = 5 << 20
	}
	var allowed map[string]struct{}
	if len(limits.AllowedTypes) > 0 {
		allowed = make(map[string]struct{}, len(limits.AllowedTypes))
		for _, t := range limits.AllowedTypes {
			allowed[t] = struct{}{}
		}
	}
	return &PantryAPI{ws: ws, maxUpload: limits.MaxBytes, allowed: allowed, logger: logger.Named("pantry-api")}
}

// Routes mounts the pantry endpoints on r
func (h *PantryAPI) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/load", h.Load)
	r.Post("/sort", h.Sort)
	r.Post("/new", h.BeginNew)
	r.Get("/catalog", h.Catalog)
	r.Route("/items/{id}", func(r chi.Router) {
		r.Patch("/", h.UpdateField)
		r.Delete("/", h.Remove)
		r.Post("/edit", h.BeginEdit)
		r.Post("/commit", h.Commit)
		r.Post("/cancel", h.Cancel)
		r.Post("/quantity", h.AdjustQuantity)
		r.Post("/catalog", h.ApplyCatalog)
		r.Put("/image", h.AttachImage)
	})
}

// view builds the read model. Callers hold ws.mu.
func (h *PantryAPI) view() inbound.InventoryView {
	inv := h.ws.inventory
	items := inv.View()
	if items == nil {
		items = []pantry.Item{}
	}
	return inbound.InventoryView{
		Items:   items,
		Total:   len(inv.Items()),
		Query:   inv.Query(),
		Sort:    inv.Sort(),
		Session: inv.Session(),
		Loaded:  inv.Loaded(),
	}
}

func (h *PantryAPI) respond(w http.ResponseWriter) {
	writeJSON(w, h.logger, http.StatusOK, h.view())
}

// List handles GET /api/v1/pantry. A q parameter replaces the filter.
func (h *PantryAPI) List(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if r.URL.Query().Has("q") {
		h.ws.inventory.SetQuery(r.URL.Query().Get("q"))
	}
	h.respond(w)
}

// Load handles POST /api/v1/pantry/load
func (h *PantryAPI) Load(w http.ResponseWriter, r *http.Request) {
	release, err := h.ws.acquire("load")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer release()

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.Load(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.ws.syncSelection()
	h.respond(w)
}

// Sort handles POST /api/v1/pantry/sort
func (h *PantryAPI) Sort(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.SortCommand
	if err := decode(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.SortBy(cmd.Key); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w)
}

// BeginNew handles POST /api/v1/pantry/new
func (h *PantryAPI) BeginNew(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	h.ws.inventory.BeginNew()
	h.respond(w)
}

// Catalog handles GET /api/v1/pantry/catalog
func (h *PantryAPI) Catalog(w http.ResponseWriter, r *http.Request) {
	entries := h.ws.inventory.Catalog(r.URL.Query().Get("prefix"))
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{"entries": entries})
}

// BeginEdit handles POST /api/v1/pantry/items/{id}/edit
func (h *PantryAPI) BeginEdit(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.BeginEdit(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w)
}

// UpdateField handles PATCH /api/v1/pantry/items/{id}
func (h *PantryAPI) UpdateField(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.UpdateFieldCommand
	if err := decode(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.UpdateField(chi.URLParam(r, "id"), cmd.Field, cmd.Value); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w)
}

// ApplyCatalog handles POST /api/v1/pantry/items/{id}/catalog
func (h *PantryAPI) ApplyCatalog(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.CatalogCommand
	if err := decode(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.ApplyCatalog(chi.URLParam(r, "id"), cmd.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w)
}

// Commit handles POST /api/v1/pantry/items/{id}/commit. For "new" it adds
// the draft as a new item.
func (h *PantryAPI) Commit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	release, err := h.ws.acquire("item:" + id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer release()

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.Commit(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.ws.syncSelection()
	h.respond(w)
}

// Cancel handles POST /api/v1/pantry/items/{id}/cancel
func (h *PantryAPI) Cancel(w http.ResponseWriter, r *http.Request) {
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	h.ws.inventory.CancelEdit(chi.URLParam(r, "id"))
	h.respond(w)
}

// Remove handles DELETE /api/v1/pantry/items/{id}
func (h *PantryAPI) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	release, err := h.ws.acquire("item:" + id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer release()

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.Remove(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.ws.syncSelection()
	h.respond(w)
}

// AdjustQuantity handles POST /api/v1/pantry/items/{id}/quantity
func (h *PantryAPI) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.AdjustQuantityCommand
	if err := decode(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	if err := h.ws.inventory.AdjustQuantity(chi.URLParam(r, "id"), cmd.Delta); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w)
}

// AttachImage handles PUT /api/v1/pantry/items/{id}/image with a multipart
// "image" file.
func (h *PantryAPI) AttachImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("image upload is too large or malformed").WithCause(err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("image file is required").WithCause(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, h.logger, errors.NewBadRequestError("Failed to read image").WithCause(err))
		return
	}
	// The declared part type is ignored; only the bytes decide.
	contentType := http.DetectContentType(data)
	if h.allowed != nil {
		if _, ok := h.allowed[contentType]; !ok {
			writeError(w, r, h.logger, errors.NewValidationError("unsupported image type").
				WithMetadata("content_type", contentType).
				WithMetadata("declared_type", header.Header.Get("Content-Type")))
			return
		}
	}

	release, err := h.ws.acquire("image:" + id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer release()

	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()

	url, err := h.ws.inventory.AttachImage(r.Context(), id, inbound.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"url":     url,
		"session": h.ws.inventory.Session(),
	})
}
