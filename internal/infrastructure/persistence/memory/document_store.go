package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// DocumentStore keeps collections in memory. ListAll returns documents in
// creation order.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	order []string
	docs  map[string]map[string]any
}

// NewDocumentStore creates an empty store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]*collection)}
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}

// ListAll returns copies of every document in the collection
func (s *DocumentStore) ListAll(ctx context.Context, name string) ([]outbound.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []outbound.Document{}, nil
	}
	docs := make([]outbound.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, outbound.Document{ID: id, Fields: copyFields(c.docs[id])})
	}
	return docs, nil
}

// Create stores fields under a new UUID
func (s *DocumentStore) Create(ctx context.Context, name string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := s.coll(name)
	c.order = append(c.order, id)
	c.docs[id] = copyFields(fields)
	return id, nil
}

// Update replaces the fields of an existing document
func (s *DocumentStore) Update(ctx context.Context, name, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", outbound.ErrDocumentNotFound, name, id)
	}
	c.docs[id] = copyFields(fields)
	return nil
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, name, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", outbound.ErrDocumentNotFound, name, id)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds; it satisfies the health checker.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
