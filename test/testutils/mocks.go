// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// MockDocumentStore provides a mock implementation of DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

// ListAll lists a collection
func (m *MockDocumentStore) ListAll(ctx context.Context, collection string) ([]outbound.Document, error) {
	args := m.Called(ctx, collection)
	docs, _ := args.Get(0).([]outbound.Document)
	return docs, args.Error(1)
}

// Create creates a document
func (m *MockDocumentStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	args := m.Called(ctx, collection, fields)
	return args.String(0), args.Error(1)
}

// Update updates a document
func (m *MockDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

// Delete deletes a document
func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

// MockCompletionService provides a mock implementation of CompletionService
type MockCompletionService struct {
	mock.Mock
}

// Complete returns the configured completion
func (m *MockCompletionService) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Name returns the provider name
func (m *MockCompletionService) Name() string {
	return "mock"
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// Get gets a value
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Set sets a value
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete deletes a key
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists checks a key
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockStorageService provides a mock implementation of StorageService
type MockStorageService struct {
	mock.Mock
}

// Upload uploads an object
func (m *MockStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// Download downloads an object
func (m *MockStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Delete deletes an object
func (m *MockStorageService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GeneratePresignedURL returns a URL
func (m *MockStorageService) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

var (
	_ outbound.DocumentStore     = (*MockDocumentStore)(nil)
	_ outbound.CompletionService = (*MockCompletionService)(nil)
	_ outbound.CacheRepository   = (*MockCacheRepository)(nil)
	_ outbound.StorageService    = (*MockStorageService)(nil)
)
