package stocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.StockEntry{}))

	return db
}

func TestGetByProductIDs(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.BulkInsert([]*entities.StockEntry{
		{CompanyID: 1, ProductID: 1, Quantity: 5},
		{CompanyID: 1, ProductID: 2, Quantity: 0},
		{CompanyID: 2, ProductID: 1, Quantity: 9},
	}))

	got, err := repo.GetByProductIDs(1, []uint{1, 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.GetByProductIDs(1, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateQuantity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	entry := &entities.StockEntry{CompanyID: 1, ProductID: 1, Quantity: 5}
	require.NoError(t, repo.BulkInsert([]*entities.StockEntry{entry}))

	require.NoError(t, repo.UpdateQuantity(entry, 2.5))

	var got entities.StockEntry
	require.NoError(t, db.First(&got, entry.ID).Error)
	assert.Equal(t, 2.5, got.Quantity)
}

func TestGetForCompany(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.BulkInsert([]*entities.StockEntry{
		{CompanyID: 1, ProductID: 1, Quantity: 5},
		{CompanyID: 2, ProductID: 1, Quantity: 9},
	}))

	got, err := repo.GetForCompany(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ProductID)
}

func TestUniquePerCompanyAndProduct(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.BulkInsert([]*entities.StockEntry{{CompanyID: 1, ProductID: 1, Quantity: 5}}))

	err := repo.BulkInsert([]*entities.StockEntry{{CompanyID: 1, ProductID: 1, Quantity: 6}})
	assert.Error(t, err)
}
