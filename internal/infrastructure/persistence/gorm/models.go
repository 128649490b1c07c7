// Package gorm provides the GORM-backed document store
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentModel stores one document of a collection as a JSON field map
type DocumentModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	Collection string    `gorm:"type:varchar(100);not null;index:idx_documents_collection_seq,priority:1"`
	Seq        int64     `gorm:"not null;index:idx_documents_collection_seq,priority:2"`
	Fields     JSONField `gorm:"type:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JSONField custom type for handling JSON fields
type JSONField map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = JSONField{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for DocumentModel
func (d *DocumentModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (DocumentModel) TableName() string {
	return "documents"
}

// AllModels lists the models managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{&DocumentModel{}}
}
