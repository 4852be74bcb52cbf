package sync

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/database/products"
	"github.com/pablopelardas/dulceysalado-sync/internal/database/stocks"
	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// ProductRecord is one incoming product sighting from the feed. It carries
// only feed-owned fields plus an optional stock quantity.
type ProductRecord struct {
	Code           string
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
	StockQuantity  *float64
	// Price, when set, upserts the product's entry on the session's target
	// price list once the row exists.
	Price *float64
}

// feedFields extracts the feed-owned field group for the entity layer.
func (r ProductRecord) feedFields() entities.FeedFields {
	return entities.FeedFields{
		Description:    r.Description,
		CategoryCode:   r.CategoryCode,
		Group1Code:     r.Group1Code,
		Group2Code:     r.Group2Code,
		Group3Code:     r.Group3Code,
		FeedCreatedAt:  r.FeedCreatedAt,
		FeedModifiedAt: r.FeedModifiedAt,
		InAccounting:   r.InAccounting,
		Available:      r.Available,
		LocationCode:   r.LocationCode,
	}
}

// BatchResult reports the outcome of one submitted batch. For every batch,
// Created + Updated + len(Failed) equals the number of incoming records.
type BatchResult struct {
	Created int
	Updated int
	Failed  []entities.SessionError

	// Revisited is the subset of Updated covering products already
	// reconciled earlier in the same session (or sighted earlier in the same
	// batch). The session counts each product once, so revisits do not
	// re-enter its product total.
	Revisited int

	// PriceErrors aggregates rejected price list groups from the same call.
	// Each wrapped error matches ErrInvalidPriceData. Rejected groups never
	// abort the batch; the other groups are still applied.
	PriceErrors error
}

// Total returns how many product records the batch accounted for.
func (r *BatchResult) Total() int {
	return r.Created + r.Updated + len(r.Failed)
}

// batchReconciler applies one batch of product records for one company.
// It is constructed per batch, bound to that batch's transaction.
type batchReconciler struct {
	products *products.Repository
	stocks   *stocks.Repository
}

func newBatchReconciler(tx *gorm.DB) *batchReconciler {
	return &batchReconciler{
		products: products.NewRepository(tx),
		stocks:   stocks.NewRepository(tx),
	}
}

// pendingProduct tracks one matched or new row through the batch.
type pendingProduct struct {
	row    *entities.Product
	record ProductRecord
	isNew  bool
	// priorSync marks a row the session already reconciled in an earlier
	// batch; revisits counts sightings of an already-counted product.
	priorSync bool
	revisits  int
}

// reconcile matches every incoming record against existing rows and applies
// an insert-or-update with field partitioning. A failure on one record never
// aborts the batch; it is classified and recorded instead. Records carrying
// a price come back as price records for the session's target list, with the
// product id resolved. Rows whose last feed sync falls inside the current
// session are flagged as revisits so the session can count each product
// once. The returned error is reserved for whole-batch infrastructure
// failures, which roll the transaction back.
func (b *batchReconciler) reconcile(companyID, priceListID uint, sessionStart time.Time, records []ProductRecord) (*BatchResult, []PriceRecord, error) {
	result := &BatchResult{}
	if len(records) == 0 {
		return result, nil, nil
	}

	codes := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Code != "" {
			codes = append(codes, rec.Code)
		}
	}

	existing, err := b.products.GetByCodes(companyID, codes)
	if err != nil {
		return nil, nil, fmt.Errorf("load existing products: %w", err)
	}

	byCode := make(map[string]*pendingProduct, len(existing))
	for i := range existing {
		byCode[existing[i].Code] = &pendingProduct{
			row: &existing[i],
			priorSync: existing[i].LastFeedSyncAt != nil &&
				!existing[i].LastFeedSyncAt.Before(sessionStart),
		}
	}

	now := time.Now().UTC()
	var toInsert []*pendingProduct
	var toUpdate []*pendingProduct

	for _, rec := range records {
		if rec.Code == "" {
			result.Failed = append(result.Failed, entities.SessionError{
				ProductCode: rec.Code,
				Message:     "validation failed: empty product code",
				Kind:        entities.ErrorKindValidation,
			})
			continue
		}

		if pending, ok := byCode[rec.Code]; ok {
			// Later sighting of a code already in this batch, or an existing
			// row: overwrite only the feed-owned field group.
			sighted := pending.record.Code != ""
			pending.row.UpdateFromFeed(rec.feedFields(), now)
			pending.record = rec
			if pending.priorSync || sighted {
				pending.revisits++
				result.Revisited++
			}
			if !pending.isNew && !sighted {
				toUpdate = append(toUpdate, pending)
			}
			result.Updated++
			continue
		}

		pending := &pendingProduct{
			row:    entities.NewProductFromFeed(companyID, rec.Code, rec.feedFields(), now),
			record: rec,
			isNew:  true,
		}
		byCode[rec.Code] = pending
		toInsert = append(toInsert, pending)
		result.Created++
	}

	failedInserts := b.insertNew(toInsert, result)
	failedUpdates := b.saveUpdated(toUpdate, result)

	survivors := make([]*pendingProduct, 0, len(toInsert)+len(toUpdate))
	for _, p := range toInsert {
		if !failedInserts[p] {
			survivors = append(survivors, p)
		}
	}
	for _, p := range toUpdate {
		if !failedUpdates[p] {
			survivors = append(survivors, p)
		}
	}
	b.applyStock(companyID, survivors)

	var priceRecords []PriceRecord
	if priceListID != 0 {
		for _, p := range survivors {
			if p.record.Price != nil && p.row.ID != 0 {
				priceRecords = append(priceRecords, PriceRecord{
					ProductID:   p.row.ID,
					PriceListID: priceListID,
					Price:       *p.record.Price,
				})
			}
		}
	}

	return result, priceRecords, nil
}

// insertNew writes all new rows in one bulk insert. If the bulk call fails,
// rows are retried one by one so a single bad row does not sink the rest.
func (b *batchReconciler) insertNew(toInsert []*pendingProduct, result *BatchResult) map[*pendingProduct]bool {
	failed := make(map[*pendingProduct]bool)
	if len(toInsert) == 0 {
		return failed
	}

	rows := make([]*entities.Product, len(toInsert))
	for i, p := range toInsert {
		rows[i] = p.row
	}

	if err := b.products.BulkInsert(rows); err == nil {
		return failed
	}

	for _, p := range toInsert {
		p.row.ID = 0
		if err := b.products.Insert(p.row); err != nil {
			failed[p] = true
			result.Created--
			result.Failed = append(result.Failed, entities.SessionError{
				ProductCode: p.row.Code,
				Message:     err.Error(),
				Kind:        ClassifyError(err),
			})
		}
	}
	return failed
}

// saveUpdated persists all matched rows, falling back to per-row saves for
// failure isolation when the bulk call fails.
func (b *batchReconciler) saveUpdated(toUpdate []*pendingProduct, result *BatchResult) map[*pendingProduct]bool {
	failed := make(map[*pendingProduct]bool)
	if len(toUpdate) == 0 {
		return failed
	}

	rows := make([]*entities.Product, len(toUpdate))
	for i, p := range toUpdate {
		rows[i] = p.row
	}

	if err := b.products.BulkSave(rows); err == nil {
		return failed
	}

	for _, p := range toUpdate {
		if err := b.products.Save(p.row); err != nil {
			failed[p] = true
			result.Updated--
			// A failed revisit still has to count once on the session.
			if p.revisits > 0 {
				p.revisits--
				result.Revisited--
			}
			result.Failed = append(result.Failed, entities.SessionError{
				ProductCode: p.row.Code,
				Message:     err.Error(),
				Kind:        ClassifyError(err),
			})
		}
	}
	return failed
}

// applyStock upserts stock entries for records that carried a quantity.
// Stock write failures are logged, not counted against the batch: product
// accounting covers products only.
func (b *batchReconciler) applyStock(companyID uint, pendings []*pendingProduct) {
	var productIDs []uint
	withStock := make([]*pendingProduct, 0, len(pendings))
	for _, p := range pendings {
		if p.record.StockQuantity != nil && p.row.ID != 0 {
			withStock = append(withStock, p)
			productIDs = append(productIDs, p.row.ID)
		}
	}
	if len(withStock) == 0 {
		return
	}

	existing, err := b.stocks.GetByProductIDs(companyID, productIDs)
	if err != nil {
		log.Printf("[SYNC] stock lookup failed for company %d: %v", companyID, err)
		return
	}
	byProduct := make(map[uint]*entities.StockEntry, len(existing))
	for i := range existing {
		byProduct[existing[i].ProductID] = &existing[i]
	}

	var newEntries []*entities.StockEntry
	for _, p := range withStock {
		if entry, ok := byProduct[p.row.ID]; ok {
			if err := b.stocks.UpdateQuantity(entry, *p.record.StockQuantity); err != nil {
				log.Printf("[SYNC] stock update failed for product %s: %v", p.row.Code, err)
			}
			continue
		}
		newEntries = append(newEntries, &entities.StockEntry{
			CompanyID: companyID,
			ProductID: p.row.ID,
			Quantity:  *p.record.StockQuantity,
		})
	}
	if err := b.stocks.BulkInsert(newEntries); err != nil {
		log.Printf("[SYNC] stock insert failed for company %d: %v", companyID, err)
	}
}
