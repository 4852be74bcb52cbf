package sync

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/database/prices"
	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// PriceRecord is one incoming (product, price list, price) triple.
type PriceRecord struct {
	ProductID   uint
	PriceListID uint
	Price       float64
}

// priceReconciler applies one batch of price records, grouped by price list.
// Unlike products, prices have no partial-object semantics worth preserving:
// a malformed entry is a caller contract violation and rejects its whole
// group, while the remaining groups are still applied.
type priceReconciler struct {
	prices *prices.Repository
}

func newPriceReconciler(tx *gorm.DB) *priceReconciler {
	return &priceReconciler{prices: prices.NewRepository(tx)}
}

// reconcile applies all valid price list groups. The first return value
// aggregates rejected groups (each wrapping ErrInvalidPriceData); the second
// is reserved for infrastructure failures, which roll the batch back.
func (p *priceReconciler) reconcile(records []PriceRecord) (error, error) {
	if len(records) == 0 {
		return nil, nil
	}

	groups := make(map[uint][]PriceRecord)
	var order []uint
	for _, rec := range records {
		if _, seen := groups[rec.PriceListID]; !seen {
			order = append(order, rec.PriceListID)
		}
		groups[rec.PriceListID] = append(groups[rec.PriceListID], rec)
	}

	var rejected []error
	for _, listID := range order {
		group := groups[listID]
		if err := validatePriceGroup(listID, group); err != nil {
			rejected = append(rejected, err)
			continue
		}
		if err := p.applyGroup(listID, group); err != nil {
			return errors.Join(rejected...), err
		}
	}
	return errors.Join(rejected...), nil
}

// applyGroup upserts one price list group: one load for the whole group,
// update-in-place for existing rows, one bulk insert for the rest.
func (p *priceReconciler) applyGroup(listID uint, group []PriceRecord) error {
	productIDs := make([]uint, len(group))
	for i, rec := range group {
		productIDs[i] = rec.ProductID
	}

	existing, err := p.prices.GetByProductIDs(listID, productIDs)
	if err != nil {
		return fmt.Errorf("load price entries for list %d: %w", listID, err)
	}
	byProduct := make(map[uint]*entities.PriceEntry, len(existing))
	for i := range existing {
		byProduct[existing[i].ProductID] = &existing[i]
	}

	var toInsert []*entities.PriceEntry
	pending := make(map[uint]*entities.PriceEntry)
	for _, rec := range group {
		if entry, ok := byProduct[rec.ProductID]; ok {
			if err := p.prices.UpdatePrice(entry, rec.Price); err != nil {
				return fmt.Errorf("update price for product %d on list %d: %w", rec.ProductID, listID, err)
			}
			continue
		}
		// A repeated product within the group collapses onto one new row.
		if entry, ok := pending[rec.ProductID]; ok {
			entry.Price = rec.Price
			continue
		}
		entry := &entities.PriceEntry{
			ProductID:   rec.ProductID,
			PriceListID: listID,
			Price:       rec.Price,
		}
		pending[rec.ProductID] = entry
		toInsert = append(toInsert, entry)
	}

	if err := p.prices.BulkInsert(toInsert); err != nil {
		return fmt.Errorf("insert price entries for list %d: %w", listID, err)
	}
	return nil
}

func validatePriceGroup(listID uint, group []PriceRecord) error {
	for _, rec := range group {
		switch {
		case rec.ProductID == 0:
			return fmt.Errorf("price list %d: missing product id: %w", listID, ErrInvalidPriceData)
		case rec.PriceListID == 0:
			return fmt.Errorf("missing price list id: %w", ErrInvalidPriceData)
		case rec.Price < 0 || math.IsNaN(rec.Price) || math.IsInf(rec.Price, 0):
			return fmt.Errorf("price list %d: invalid price %v for product %d: %w", listID, rec.Price, rec.ProductID, ErrInvalidPriceData)
		}
	}
	return nil
}
