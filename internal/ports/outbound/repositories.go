// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by Update and Delete for an unknown id.
var ErrDocumentNotFound = errors.New("document not found")

// ErrCacheMiss is returned by CacheRepository.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// Document is a stored record: a store-assigned id plus flat fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the remote collection store. Writes are last-writer-wins
// and there are no concurrency tokens.
type DocumentStore interface {
	ListAll(ctx context.Context, collection string) ([]Document, error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// CompletionRequest is one prompt for the text-completion service
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionService returns one free-text completion per call. Adapters do
// not retry.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageService defines the interface for item image storage
type StorageService interface {
	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
