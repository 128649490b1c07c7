// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "github.com/alchemorsel/pantry/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the SQLite database at dbPath and migrates the schema.
// An empty path opens a private in-memory database.
func SetupDatabase(dbPath string, logLevel logger.LogLevel, autoMigrate bool) (*gorm.DB, error) {
	if dbPath == "" || dbPath == ":memory:" {
		dbPath = "file::memory:"
	} else if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if autoMigrate {
		if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}

// SeedDatabase populates an empty pantry with a few starter items
func SeedDatabase(db *gorm.DB) error {
	var count int64
	if err := db.Model(&gormModels.DocumentModel{}).Where("collection = ?", "pantry").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count pantry items: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	seed := []gormModels.JSONField{
		{"name": "Tomato", "quantity": 4, "image": "https://www.themealdb.com/images/ingredients/Tomato.png", "expirationDate": ""},
		{"name": "Salmon", "quantity": 2, "image": "https://www.themealdb.com/images/ingredients/Salmon.png", "expirationDate": ""},
		{"name": "Lettuce", "quantity": 1, "image": "https://www.themealdb.com/images/ingredients/Lettuce.png", "expirationDate": ""},
	}
	for i, fields := range seed {
		doc := gormModels.DocumentModel{Collection: "pantry", Seq: int64(i + 1), Fields: fields}
		if err := db.Create(&doc).Error; err != nil {
			return fmt.Errorf("failed to seed pantry item: %w", err)
		}
	}
	return nil
}
