package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductFromFeed(t *testing.T) {
	now := time.Now().UTC()
	p := NewProductFromFeed(3, "A100", FeedFields{
		Description:  "Alfajor triple",
		CategoryCode: 12,
		Group1Code:   1,
		Available:    true,
		LocationCode: "DEP-1",
	}, now)

	assert.Equal(t, uint(3), p.CompanyID)
	assert.Equal(t, "A100", p.Code)
	assert.Equal(t, "Alfajor triple", p.Description)

	// Curated defaults for a row the feed created.
	assert.True(t, p.Visible)
	assert.False(t, p.Featured)
	assert.Equal(t, "", p.ImageURL)
	assert.Equal(t, "", p.Brand)
	assert.Equal(t, DefaultUnit, p.Unit)

	require.NotNil(t, p.LastFeedSyncAt)
	assert.Equal(t, now, *p.LastFeedSyncAt)
}

func TestProduct_UpdateFromFeed_LeavesCuratedFieldsAlone(t *testing.T) {
	p := &Product{
		CompanyID:        3,
		Code:             "A100",
		Description:      "old description",
		Visible:          false,
		Featured:         true,
		DisplayOrder:     9,
		ImageURL:         "https://cdn.example.com/a100.jpg",
		ImageAlt:         "Alfajor",
		ShortDescription: "curated short",
		LongDescription:  "curated long",
		Tags:             "promo,destacado",
		Barcode:          "779123456",
		Brand:            "Guaymallen",
		Unit:             "CJ",
	}
	curated := *p

	p.UpdateFromFeed(FeedFields{
		Description:  "new feed description",
		CategoryCode: 44,
		Available:    true,
	}, time.Now())

	// Feed-owned fields changed.
	assert.Equal(t, "new feed description", p.Description)
	assert.Equal(t, 44, p.CategoryCode)
	assert.True(t, p.Available)
	assert.NotNil(t, p.LastFeedSyncAt)

	// Every curated field is byte-identical.
	assert.Equal(t, curated.Visible, p.Visible)
	assert.Equal(t, curated.Featured, p.Featured)
	assert.Equal(t, curated.DisplayOrder, p.DisplayOrder)
	assert.Equal(t, curated.ImageURL, p.ImageURL)
	assert.Equal(t, curated.ImageAlt, p.ImageAlt)
	assert.Equal(t, curated.ShortDescription, p.ShortDescription)
	assert.Equal(t, curated.LongDescription, p.LongDescription)
	assert.Equal(t, curated.Tags, p.Tags)
	assert.Equal(t, curated.Barcode, p.Barcode)
	assert.Equal(t, curated.Brand, p.Brand)
	assert.Equal(t, curated.Unit, p.Unit)
}
