// Package inventory provides the application layer for the pantry inventory.
// Controller owns the canonical item list and implements inbound.InventoryService.
package inventory

import (
	"context"
	stderrors "errors"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
)

// ImagePrefix is the storage folder for item photos.
const ImagePrefix = "pantry-images/"

// Controller holds the pantry list, the sort and filter state and the single
// edit session. It is not safe for concurrent use.
type Controller struct {
	shared.AggregateRoot

	store  outbound.DocumentStore
	images outbound.StorageService
	events shared.EventDispatcher
	logger *zap.Logger
	now    func() time.Time

	items   []pantry.Item
	loaded  bool
	sort    pantry.SortState
	query   string
	session *pantry.EditSession
}

// NewController creates a controller. images and events may be nil.
func NewController(
	store outbound.DocumentStore,
	images outbound.StorageService,
	events shared.EventDispatcher,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		store:  store,
		images: images,
		events: events,
		logger: logger.Named("inventory"),
		now:    time.Now,
	}
}

var _ inbound.InventoryService = (*Controller)(nil)

// Load replaces the list with the store contents. On failure the current
// list is kept.
func (c *Controller) Load(ctx context.Context) error {
	docs, err := c.store.ListAll(ctx, pantry.Collection)
	if err != nil {
		c.logger.Error("Failed to list pantry items", zap.Error(err))
		return errors.NewRepositoryError("list pantry items", err)
	}

	items := make([]pantry.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := pantry.FromDocument(doc.ID, doc.Fields)
		if err != nil {
			c.logger.Error("Malformed pantry record", zap.String("item_id", doc.ID), zap.Error(err))
			return errors.NewRepositoryError("decode pantry items", err)
		}
		items = append(items, item)
	}

	c.sort.Sort(items)
	c.items = items
	c.loaded = true

	if c.session != nil && !c.session.IsNew() && c.indexOf(c.session.Target) < 0 {
		c.logger.Info("Edited item no longer exists, dropping session", zap.String("item_id", c.session.Target))
		c.session = nil
	}

	c.AddEvent(pantry.InventoryLoadedEvent{Count: len(items), LoadedAt: c.now()})
	c.publish()

	c.logger.Info("Pantry loaded", zap.Int("count", len(items)))
	return nil
}

// BeginEdit opens the edit session on an existing item. Any other session,
// including unsaved changes, is discarded.
func (c *Controller) BeginEdit(id string) error {
	if id == "" || id == pantry.NewItemID {
		c.BeginNew()
		return nil
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return errors.NewItemNotFoundError(id)
	}
	c.replaceSession(pantry.NewEditSession(c.items[idx]))
	return nil
}

// BeginNew opens the edit session on an empty add-row draft.
func (c *Controller) BeginNew() {
	c.replaceSession(pantry.NewDraftSession())
}

func (c *Controller) replaceSession(s *pantry.EditSession) {
	if c.session != nil && c.session.Target != s.Target {
		c.logger.Debug("Discarding edit session", zap.String("item_id", c.session.Target))
	}
	c.session = s
}

// UpdateField changes one field of the draft under edit.
func (c *Controller) UpdateField(id, field, value string) error {
	s, err := c.sessionFor(id)
	if err != nil {
		return err
	}
	if err := s.Set(field, value); err != nil {
		return errors.NewValidationError(err.Error()).WithCause(err)
	}
	return nil
}

// Commit persists the draft. For the add-row it behaves like AddNew. On
// failure the session stays open so the call can be retried.
func (c *Controller) Commit(ctx context.Context, id string) error {
	s, err := c.sessionFor(id)
	if err != nil {
		return err
	}
	if s.IsNew() {
		return c.AddNew(ctx)
	}

	idx := c.indexOf(s.Target)
	if idx < 0 {
		c.session = nil
		return errors.NewItemNotFoundError(s.Target)
	}

	draft := s.Draft
	if strings.TrimSpace(draft.Name) == "" {
		return errors.NewValidationError(pantry.ErrNameRequired.Error()).WithCause(pantry.ErrNameRequired)
	}

	if err := c.store.Update(ctx, pantry.Collection, draft.ID, draft.Fields()); err != nil {
		c.logger.Error("Failed to update pantry item", zap.String("item_id", draft.ID), zap.Error(err))
		if stderrors.Is(err, outbound.ErrDocumentNotFound) {
			return errors.NewItemNotFoundError(draft.ID).WithCause(err)
		}
		return errors.NewPersistenceError("update pantry item", err)
	}

	before := c.items[idx]
	c.items[idx] = draft
	c.session = nil

	c.AddEvent(pantry.ItemUpdatedEvent{ItemID: draft.ID, Before: before, After: draft, UpdatedAt: c.now()})
	c.publish()

	c.logger.Info("Pantry item updated", zap.String("item_id", draft.ID))
	return nil
}

// CancelEdit discards the draft. The canonical row is unchanged.
func (c *Controller) CancelEdit(id string) {
	if c.session == nil {
		return
	}
	if id == "" {
		id = pantry.NewItemID
	}
	if c.session.Target == id {
		c.session = nil
	}
}

// Remove deletes an item from the store and then from the list.
func (c *Controller) Remove(ctx context.Context, id string) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return errors.NewItemNotFoundError(id)
	}

	if err := c.store.Delete(ctx, pantry.Collection, id); err != nil {
		c.logger.Error("Failed to delete pantry item", zap.String("item_id", id), zap.Error(err))
		return errors.NewPersistenceError("delete pantry item", err)
	}

	removed := c.items[idx]
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	if c.session != nil && c.session.Target == id {
		c.session = nil
	}

	c.AddEvent(pantry.ItemRemovedEvent{ItemID: id, Name: removed.Name, RemovedAt: c.now()})
	c.publish()

	c.logger.Info("Pantry item removed", zap.String("item_id", id))
	return nil
}

// AddNew validates the add-row draft, creates it in the store and appends it
// to the list without re-sorting. Validation failures never reach the store.
func (c *Controller) AddNew(ctx context.Context) error {
	if c.session == nil || !c.session.IsNew() {
		return errors.NewValidationError(pantry.ErrNoEditSession.Error()).WithCause(pantry.ErrNoEditSession)
	}

	draft := c.session.Draft
	draft.Name = strings.TrimSpace(draft.Name)
	if err := draft.ValidateNew(); err != nil {
		return errors.NewValidationError(err.Error()).WithCause(err)
	}

	id, err := c.store.Create(ctx, pantry.Collection, draft.Fields())
	if err != nil {
		c.logger.Error("Failed to create pantry item", zap.String("name", draft.Name), zap.Error(err))
		return errors.NewPersistenceError("create pantry item", err)
	}

	draft.ID = id
	c.items = append(c.items, draft)
	c.session = nil

	c.AddEvent(pantry.ItemAddedEvent{ItemID: id, Name: draft.Name, Quantity: draft.Quantity, AddedAt: c.now()})
	c.publish()

	c.logger.Info("Pantry item added", zap.String("item_id", id), zap.String("name", draft.Name))
	return nil
}

// AdjustQuantity applies delta to the draft under edit: the add-row draft
// for id "" or "new", otherwise the draft of the row being edited. The
// canonical row only changes on Commit. Results are floored at zero.
func (c *Controller) AdjustQuantity(id string, delta int) error {
	if id != "" && id != pantry.NewItemID && c.indexOf(id) < 0 {
		return errors.NewItemNotFoundError(id)
	}
	s, err := c.sessionFor(id)
	if err != nil {
		return err
	}
	s.Adjust(delta)
	return nil
}

// SortBy toggles the sort on key and stably reorders the list.
func (c *Controller) SortBy(key string) error {
	k, err := pantry.ParseSortKey(key)
	if err != nil {
		return errors.NewValidationError(err.Error()).WithCause(err)
	}
	c.sort = c.sort.Toggle(k)
	c.sort.Sort(c.items)
	return nil
}

// SetQuery stores the filter applied by View.
func (c *Controller) SetQuery(query string) {
	c.query = query
}

// Filter derives the items matching query without touching the list.
func (c *Controller) Filter(query string) []pantry.Item {
	return pantry.Filter(c.items, query)
}

// View is the list filtered by the current query.
func (c *Controller) View() []pantry.Item {
	return pantry.Filter(c.items, c.query)
}

// AttachImage uploads an item photo and sets it on the draft being edited.
func (c *Controller) AttachImage(ctx context.Context, id string, upload inbound.ImageUpload) (string, error) {
	if c.images == nil {
		return "", errors.NewAppError(errors.CodeServiceUnavailable, "Image storage is not configured", "")
	}
	s, err := c.sessionFor(id)
	if err != nil {
		return "", err
	}

	name := path.Base(strings.ReplaceAll(upload.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", errors.NewValidationError("image filename is required")
	}

	url, err := c.images.Upload(ctx, ImagePrefix+name, upload.Data, upload.ContentType)
	if err != nil {
		c.logger.Error("Failed to upload item image", zap.String("file", name), zap.Error(err))
		return "", errors.NewPersistenceError("upload item image", err)
	}

	s.Draft.Image = url
	return url, nil
}

// ApplyCatalog fills the draft's name and image from the predefined
// ingredient called name.
func (c *Controller) ApplyCatalog(id, name string) error {
	s, err := c.sessionFor(id)
	if err != nil {
		return err
	}
	entry, ok := pantry.LookupCatalog(name)
	if !ok {
		return errors.NewNotFoundError("Catalog ingredient").WithMetadata("name", name)
	}
	s.ApplyCatalog(entry)
	return nil
}

// Catalog returns predefined ingredients matching prefix.
func (c *Controller) Catalog(prefix string) []pantry.CatalogEntry {
	return pantry.Catalog(prefix)
}

// Items returns a copy of the canonical list.
func (c *Controller) Items() []pantry.Item {
	return append([]pantry.Item(nil), c.items...)
}

// Names returns the item names, or nil before the first successful load.
func (c *Controller) Names() []string {
	if !c.loaded {
		return nil
	}
	return pantry.Names(c.items)
}

func (c *Controller) Loaded() bool           { return c.loaded }
func (c *Controller) Query() string          { return c.query }
func (c *Controller) Sort() pantry.SortState { return c.sort }

// Session returns a copy of the edit session, or nil.
func (c *Controller) Session() *pantry.EditSession {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Controller) sessionFor(id string) (*pantry.EditSession, error) {
	if id == "" {
		id = pantry.NewItemID
	}
	if c.session == nil || c.session.Target != id {
		return nil, errors.NewValidationError(pantry.ErrNoEditSession.Error()).
			WithCause(pantry.ErrNoEditSession).
			WithMetadata("item_id", id)
	}
	return c.session, nil
}

func (c *Controller) indexOf(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) publish() {
	if err := shared.DispatchAll(c.events, &c.AggregateRoot); err != nil {
		c.logger.Warn("Event handler failed", zap.Error(err))
	}
}
