package entities

import "time"

// StockEntry holds company-specific stock for a catalog product, decoupled
// from the canonical product row so the same product can carry a different
// quantity per company.
type StockEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"uniqueIndex:idx_stock_company_product;not null" json:"company_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_stock_company_product;not null" json:"product_id"`
	Quantity  float64   `gorm:"type:decimal(15,4)" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StockEntry) TableName() string {
	return "stock_entries"
}
