// Package storage provides item image storage on the local filesystem or S3
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// ErrInvalidKey is returned for keys that are empty or escape the root
var ErrInvalidKey = errors.New("invalid storage key")

// ErrObjectNotFound is returned by Download for an unknown key
var ErrObjectNotFound = errors.New("object not found")

// New builds the storage service selected by cfg.Provider
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (outbound.StorageService, error) {
	switch cfg.Provider {
	case "fs", "":
		return NewFilesystemStore(cfg.LocalPath, cfg.PublicBaseURL, logger)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			PathStyle:       cfg.UsePathStyle,
			PublicBaseURL:   cfg.PublicBaseURL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// cleanKey normalises key to a relative slash path inside the store
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
