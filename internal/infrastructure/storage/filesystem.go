package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// FilesystemStore keeps objects under a root directory and serves them from
// a public base URL.
type FilesystemStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewFilesystemStore creates the root directory if needed
func NewFilesystemStore(root, baseURL string, logger *zap.Logger) (*FilesystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FilesystemStore{
		root:    root,
		baseURL: baseURL,
		logger:  logger.Named("fs-storage"),
	}, nil
}

var _ outbound.StorageService = (*FilesystemStore)(nil)

// Root is the directory served for public URLs
func (s *FilesystemStore) Root() string {
	return s.root
}

func (s *FilesystemStore) path(key string) (string, string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Upload writes data atomically and returns the public URL
func (s *FilesystemStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k, p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	s.logger.Debug("Object stored",
		zap.String("key", k),
		zap.Int("bytes", len(data)),
		zap.String("content_type", contentType))
	return joinURL(s.baseURL, k), nil
}

// Download reads an object
func (s *FilesystemStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return data, err
}

// Delete removes an object. Missing objects are not an error.
func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GeneratePresignedURL returns the public URL; local files are not signed.
func (s *FilesystemStore) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	k, _, err := s.path(key)
	if err != nil {
		return "", err
	}
	return joinURL(s.baseURL, k), nil
}
