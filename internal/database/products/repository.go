// Package products provides bulk database operations for catalog products,
// shaped for the batch reconciler: one load per batch, one insert call, one
// save call, with per-row fallbacks for failure isolation.
package products

import (
	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// Repository handles catalog product database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByCodes loads all products for the company whose code is in the given
// set, in a single query.
func (r *Repository) GetByCodes(companyID uint, codes []string) ([]entities.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var products []entities.Product
	err := r.db.Where("company_id = ? AND code IN ?", companyID, codes).Find(&products).Error
	return products, err
}

// GetByCode loads one product by its company-scoped code.
func (r *Repository) GetByCode(companyID uint, code string) (*entities.Product, error) {
	var product entities.Product
	err := r.db.Where("company_id = ? AND code = ?", companyID, code).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// BulkInsert creates all rows in one insert statement.
func (r *Repository) BulkInsert(products []*entities.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.Create(products).Error
}

// BulkSave persists all updated rows.
func (r *Repository) BulkSave(products []*entities.Product) error {
	if len(products) == 0 {
		return nil
	}
	for _, p := range products {
		if err := r.db.Save(p).Error; err != nil {
			return err
		}
	}
	return nil
}

// Insert creates a single row. Used as the fallback path when a bulk insert
// fails and the bad row has to be isolated.
func (r *Repository) Insert(product *entities.Product) error {
	return r.db.Create(product).Error
}

// Save persists a single updated row.
func (r *Repository) Save(product *entities.Product) error {
	return r.db.Save(product).Error
}

// CountForCompany returns how many products the company has.
func (r *Repository) CountForCompany(companyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Product{}).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}
