package sync

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

func TestValidatePriceGroup(t *testing.T) {
	tests := []struct {
		name  string
		group []PriceRecord
		valid bool
	}{
		{"valid group", []PriceRecord{{ProductID: 1, PriceListID: 2, Price: 99.90}}, true},
		{"zero price is valid", []PriceRecord{{ProductID: 1, PriceListID: 2, Price: 0}}, true},
		{"missing product id", []PriceRecord{{PriceListID: 2, Price: 10}}, false},
		{"missing price list id", []PriceRecord{{ProductID: 1, Price: 10}}, false},
		{"negative price", []PriceRecord{{ProductID: 1, PriceListID: 2, Price: -1}}, false},
		{"NaN price", []PriceRecord{{ProductID: 1, PriceListID: 2, Price: math.NaN()}}, false},
		{"infinite price", []PriceRecord{{ProductID: 1, PriceListID: 2, Price: math.Inf(1)}}, false},
		{"one bad record rejects the group", []PriceRecord{
			{ProductID: 1, PriceListID: 2, Price: 10},
			{ProductID: 2, PriceListID: 2, Price: -3},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePriceGroup(2, tt.group)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPriceData)
			}
		})
	}
}

func TestPriceReconcilerUpsert(t *testing.T) {
	db := setupTestDB(t)

	seeded := &entities.PriceEntry{ProductID: 1, PriceListID: 2, Price: 50}
	require.NoError(t, db.Create(seeded).Error)

	rejected, err := newPriceReconciler(db).reconcile([]PriceRecord{
		{ProductID: 1, PriceListID: 2, Price: 60},  // update in place
		{ProductID: 2, PriceListID: 2, Price: 75},  // new entry
		{ProductID: 3, PriceListID: 4, Price: 120}, // new entry on another list
	})
	require.NoError(t, err)
	assert.NoError(t, rejected)

	var entries []entities.PriceEntry
	require.NoError(t, db.Order("price_list_id, product_id").Find(&entries).Error)
	require.Len(t, entries, 3)

	assert.Equal(t, seeded.ID, entries[0].ID)
	assert.Equal(t, float64(60), entries[0].Price)
	assert.Equal(t, float64(75), entries[1].Price)
	assert.Equal(t, uint(4), entries[2].PriceListID)
}

func TestPriceReconcilerCollapsesRepeatedProduct(t *testing.T) {
	db := setupTestDB(t)

	rejected, err := newPriceReconciler(db).reconcile([]PriceRecord{
		{ProductID: 1, PriceListID: 2, Price: 10},
		{ProductID: 1, PriceListID: 2, Price: 15},
	})
	require.NoError(t, err)
	assert.NoError(t, rejected)

	var entries []entities.PriceEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(15), entries[0].Price)
}

func TestPriceReconcilerRejectsGroupKeepsOthers(t *testing.T) {
	db := setupTestDB(t)

	rejected, err := newPriceReconciler(db).reconcile([]PriceRecord{
		{ProductID: 1, PriceListID: 2, Price: -10},
		{ProductID: 2, PriceListID: 3, Price: 30},
	})
	require.NoError(t, err)
	require.Error(t, rejected)
	assert.ErrorIs(t, rejected, ErrInvalidPriceData)

	var entries []entities.PriceEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(3), entries[0].PriceListID)
}
