package entities

import "time"

// DefaultUnit is the unit of measure assigned to products first seen through
// the feed, until merchandising sets one.
const DefaultUnit = "UN"

// Product is one catalog row, unique per (company, code).
//
// Its fields split into two disjoint ownership groups. The feed-owned group
// (Description through LastFeedSyncAt) is overwritten on every feed sighting.
// The catalog-curated group (Visible through Unit) belongs to merchandising
// and must never be touched by a sync-sourced write — see UpdateFromFeed.
type Product struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"uniqueIndex:idx_products_company_code;not null" json:"company_id"`
	Code      string `gorm:"uniqueIndex:idx_products_company_code;size:50;not null" json:"code"`

	// Feed-owned fields.
	Description    string     `gorm:"size:500" json:"description"`
	CategoryCode   int        `gorm:"index" json:"category_code"`
	Group1Code     int        `json:"group1_code"`
	Group2Code     int        `json:"group2_code"`
	Group3Code     int        `json:"group3_code"`
	FeedCreatedAt  *time.Time `json:"feed_created_at,omitempty"`
	FeedModifiedAt *time.Time `json:"feed_modified_at,omitempty"`
	InAccounting   bool       `json:"in_accounting"`
	Available      bool       `json:"available"`
	LocationCode   string     `gorm:"size:50" json:"location_code"`
	LastFeedSyncAt *time.Time `json:"last_feed_sync_at,omitempty"`

	// Catalog-curated fields.
	Visible          bool   `gorm:"default:true" json:"visible"`
	Featured         bool   `json:"featured"`
	DisplayOrder     int    `json:"display_order"`
	ImageURL         string `gorm:"size:500" json:"image_url"`
	ImageAlt         string `gorm:"size:255" json:"image_alt"`
	ShortDescription string `gorm:"size:500" json:"short_description"`
	LongDescription  string `gorm:"type:text" json:"long_description"`
	Tags             string `gorm:"type:text" json:"tags"`
	Barcode          string `gorm:"size:100" json:"barcode"`
	Brand            string `gorm:"size:100" json:"brand"`
	Unit             string `gorm:"size:10" json:"unit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// FeedFields carries the feed-owned field values for one product sighting.
type FeedFields struct {
	Description    string
	CategoryCode   int
	Group1Code     int
	Group2Code     int
	Group3Code     int
	FeedCreatedAt  *time.Time
	FeedModifiedAt *time.Time
	InAccounting   bool
	Available      bool
	LocationCode   string
}

// NewProductFromFeed builds a row for a code first seen through the feed.
// Catalog-curated fields get their documented defaults: visible, not
// featured, empty text fields, unit "UN".
func NewProductFromFeed(companyID uint, code string, fields FeedFields, seenAt time.Time) *Product {
	p := &Product{
		CompanyID: companyID,
		Code:      code,
		Visible:   true,
		Unit:      DefaultUnit,
	}
	p.UpdateFromFeed(fields, seenAt)
	return p
}

// UpdateFromFeed overwrites only the feed-owned field group and stamps the
// feed sync timestamp. Catalog-curated fields are left untouched even though
// the whole row is loaded and saved.
func (p *Product) UpdateFromFeed(fields FeedFields, seenAt time.Time) {
	p.Description = fields.Description
	p.CategoryCode = fields.CategoryCode
	p.Group1Code = fields.Group1Code
	p.Group2Code = fields.Group2Code
	p.Group3Code = fields.Group3Code
	p.FeedCreatedAt = fields.FeedCreatedAt
	p.FeedModifiedAt = fields.FeedModifiedAt
	p.InAccounting = fields.InAccounting
	p.Available = fields.Available
	p.LocationCode = fields.LocationCode
	ts := seenAt.UTC()
	p.LastFeedSyncAt = &ts
}
