// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
)

// InventoryService is the pantry inventory controller. Implementations are
// single-threaded; driving adapters serialise calls.
type InventoryService interface {
	// Remote operations
	Load(ctx context.Context) error
	Commit(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	AddNew(ctx context.Context) error
	AttachImage(ctx context.Context, id string, upload ImageUpload) (string, error)

	// Edit session
	BeginEdit(id string) error
	BeginNew()
	UpdateField(id, field, value string) error
	ApplyCatalog(id, name string) error
	CancelEdit(id string)
	Session() *pantry.EditSession

	// Local list state
	AdjustQuantity(id string, delta int) error
	SortBy(key string) error
	SetQuery(query string)
	Filter(query string) []pantry.Item
	View() []pantry.Item

	// Queries
	Items() []pantry.Item
	Names() []string
	Loaded() bool
	Query() string
	Sort() pantry.SortState
	Catalog(prefix string) []pantry.CatalogEntry
}

// ImageUpload is an item photo received from a client
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Command objects for operations

// UpdateFieldCommand edits one draft field
type UpdateFieldCommand struct {
	Field string `json:"field" validate:"required,oneof=name quantity image expirationDate"`
	Value string `json:"value" validate:"max=2048"`
}

// CatalogCommand autofills the draft from a predefined ingredient
type CatalogCommand struct {
	Name string `json:"name" validate:"required,max=200"`
}

// SortCommand selects or toggles the sort key
type SortCommand struct {
	Key string `json:"key" validate:"required,oneof=name quantity expirationDate"`
}

// AdjustQuantityCommand applies a quantity delta
type AdjustQuantityCommand struct {
	Delta int `json:"delta" validate:"min=-10000,max=10000"`
}

// InventoryView is the read model returned to clients
type InventoryView struct {
	Items   []pantry.Item       `json:"items"`
	Total   int                 `json:"total"`
	Query   string              `json:"query"`
	Sort    pantry.SortState    `json:"sort"`
	Session *pantry.EditSession `json:"session,omitempty"`
	Loaded  bool                `json:"loaded"`
}
