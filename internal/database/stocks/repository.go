// Package stocks provides database operations for company-scoped stock
// entries.
package stocks

import (
	"time"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// Repository handles stock entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stock repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByProductIDs loads existing stock entries for the company covering the
// given products, in a single query.
func (r *Repository) GetByProductIDs(companyID uint, productIDs []uint) ([]entities.StockEntry, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var entries []entities.StockEntry
	err := r.db.Where("company_id = ? AND product_id IN ?", companyID, productIDs).Find(&entries).Error
	return entries, err
}

// BulkInsert creates all new entries in one insert statement.
func (r *Repository) BulkInsert(entries []*entities.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(entries).Error
}

// UpdateQuantity overwrites the quantity of an existing entry in place.
func (r *Repository) UpdateQuantity(entry *entities.StockEntry, quantity float64) error {
	return r.db.Model(entry).Updates(map[string]any{
		"quantity":   quantity,
		"updated_at": time.Now().UTC(),
	}).Error
}

// GetForCompany returns all stock entries of a company.
func (r *Repository) GetForCompany(companyID uint) ([]entities.StockEntry, error) {
	var entries []entities.StockEntry
	err := r.db.Where("company_id = ?", companyID).Find(&entries).Error
	return entries, err
}
