package gorm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// DocumentStore implements outbound.DocumentStore on a relational database
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new document store
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

// ListAll returns the documents of a collection in creation order
func (s *DocumentStore) ListAll(ctx context.Context, collection string) ([]outbound.Document, error) {
	var models []DocumentModel
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("seq ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	docs := make([]outbound.Document, 0, len(models))
	for _, m := range models {
		docs = append(docs, outbound.Document{ID: m.ID.String(), Fields: map[string]any(m.Fields)})
	}
	return docs, nil
}

// Create inserts a document and returns its generated id
func (s *DocumentStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	model := DocumentModel{Collection: collection, Fields: JSONField(fields)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last struct{ Seq int64 }
		if err := tx.Model(&DocumentModel{}).
			Select("COALESCE(MAX(seq), 0) AS seq").
			Where("collection = ?", collection).
			Scan(&last).Error; err != nil {
			return err
		}
		model.Seq = last.Seq + 1
		return tx.Create(&model).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return model.ID.String(), nil
}

// Update replaces the fields of a document
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s/%s", outbound.ErrDocumentNotFound, collection, id)
	}

	result := s.db.WithContext(ctx).
		Model(&DocumentModel{}).
		Where("id = ? AND collection = ?", uid, collection).
		Updates(map[string]interface{}{"fields": JSONField(fields)})
	if result.Error != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s/%s", outbound.ErrDocumentNotFound, collection, id)
	}
	return nil
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s/%s", outbound.ErrDocumentNotFound, collection, id)
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND collection = ?", uid, collection).
		Delete(&DocumentModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s/%s", outbound.ErrDocumentNotFound, collection, id)
	}
	return nil
}

// Ping checks the underlying connection
func (s *DocumentStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
