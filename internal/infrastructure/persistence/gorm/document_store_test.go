package gorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

type DocumentStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	store *DocumentStore
}

func (suite *DocumentStoreTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(suite.T(), db.AutoMigrate(AllModels()...))

	suite.ctx = context.Background()
	suite.db = db
	suite.store = NewDocumentStore(db)
}

func (suite *DocumentStoreTestSuite) TearDownTest() {
	sqlDB, _ := suite.db.DB()
	_ = sqlDB.Close()
}

func (suite *DocumentStoreTestSuite) TestCreateAndList() {
	// Arrange
	first := map[string]any{"name": "Salt", "quantity": 2, "image": "", "expirationDate": ""}
	second := map[string]any{"name": "Flour", "quantity": 1, "image": "", "expirationDate": "2026-01-01"}

	// Act
	id1, err1 := suite.store.Create(suite.ctx, "pantry", first)
	id2, err2 := suite.store.Create(suite.ctx, "pantry", second)
	_, err3 := suite.store.Create(suite.ctx, "other", first)
	docs, err := suite.store.ListAll(suite.ctx, "pantry")

	// Assert
	require.NoError(suite.T(), err1)
	require.NoError(suite.T(), err2)
	require.NoError(suite.T(), err3)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), docs, 2)
	assert.Equal(suite.T(), id1, docs[0].ID)
	assert.Equal(suite.T(), id2, docs[1].ID)
	assert.Equal(suite.T(), "Salt", docs[0].Fields["name"])
	assert.EqualValues(suite.T(), 2, docs[0].Fields["quantity"])
	assert.Equal(suite.T(), "2026-01-01", docs[1].Fields["expirationDate"])
}

func (suite *DocumentStoreTestSuite) TestUpdate() {
	suite.Run("Existing_ShouldReplaceFields", func() {
		id, err := suite.store.Create(suite.ctx, "pantry", map[string]any{"name": "Rice", "quantity": 1})
		require.NoError(suite.T(), err)

		err = suite.store.Update(suite.ctx, "pantry", id, map[string]any{"name": "Brown Rice", "quantity": 4})

		require.NoError(suite.T(), err)
		docs, _ := suite.store.ListAll(suite.ctx, "pantry")
		require.Len(suite.T(), docs, 1)
		assert.Equal(suite.T(), "Brown Rice", docs[0].Fields["name"])
	})

	suite.Run("Missing_ShouldReturnNotFound", func() {
		err := suite.store.Update(suite.ctx, "pantry", "00000000-0000-0000-0000-000000000001", map[string]any{})
		assert.ErrorIs(suite.T(), err, outbound.ErrDocumentNotFound)
	})

	suite.Run("MalformedID_ShouldReturnNotFound", func() {
		err := suite.store.Update(suite.ctx, "pantry", "not-a-uuid", map[string]any{})
		assert.ErrorIs(suite.T(), err, outbound.ErrDocumentNotFound)
	})
}

func (suite *DocumentStoreTestSuite) TestDelete() {
	// Arrange
	id, err := suite.store.Create(suite.ctx, "pantry", map[string]any{"name": "Oats", "quantity": 1})
	require.NoError(suite.T(), err)

	// Act
	err = suite.store.Delete(suite.ctx, "pantry", id)
	again := suite.store.Delete(suite.ctx, "pantry", id)

	// Assert
	require.NoError(suite.T(), err)
	assert.ErrorIs(suite.T(), again, outbound.ErrDocumentNotFound)
	docs, _ := suite.store.ListAll(suite.ctx, "pantry")
	assert.Empty(suite.T(), docs)
	assert.NoError(suite.T(), suite.store.Ping(suite.ctx))
}

func TestDocumentStoreTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreTestSuite))
}
