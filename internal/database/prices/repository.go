// Package prices provides database operations for price list entries.
package prices

import (
	"time"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// Repository handles price entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new price repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByProductIDs loads existing entries for one price list covering the
// given products, in a single query.
func (r *Repository) GetByProductIDs(priceListID uint, productIDs []uint) ([]entities.PriceEntry, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var entries []entities.PriceEntry
	err := r.db.Where("price_list_id = ? AND product_id IN ?", priceListID, productIDs).Find(&entries).Error
	return entries, err
}

// BulkInsert creates all new entries in one insert statement.
func (r *Repository) BulkInsert(entries []*entities.PriceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(entries).Error
}

// UpdatePrice overwrites the price of an existing entry in place.
func (r *Repository) UpdatePrice(entry *entities.PriceEntry, price float64) error {
	return r.db.Model(entry).Updates(map[string]any{
		"price":      price,
		"updated_at": time.Now().UTC(),
	}).Error
}

// GetForProduct returns all price entries of a product across lists.
func (r *Repository) GetForProduct(productID uint) ([]entities.PriceEntry, error) {
	var entries []entities.PriceEntry
	err := r.db.Where("product_id = ?", productID).Find(&entries).Error
	return entries, err
}
