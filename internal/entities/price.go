package entities

import "time"

// PriceEntry holds a product's price on one price list. A product may have
// zero or many entries across lists, independent of the product row itself.
type PriceEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"uniqueIndex:idx_prices_product_list;not null" json:"product_id"`
	PriceListID uint      `gorm:"uniqueIndex:idx_prices_product_list;not null" json:"price_list_id"`
	Price       float64   `gorm:"type:decimal(15,4)" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PriceEntry) TableName() string {
	return "price_entries"
}
