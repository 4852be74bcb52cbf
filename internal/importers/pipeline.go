package importers

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
	"github.com/pablopelardas/dulceysalado-sync/internal/sync"
)

// Engine is the slice of the sync engine the pipeline drives.
type Engine interface {
	OpenSession(input sync.OpenSessionInput) (*entities.SyncSession, error)
	SubmitBatch(sessionID string, products []sync.ProductRecord, prices []sync.PriceRecord) (*sync.BatchResult, error)
	FinalizeSession(sessionID string, opts sync.FinalizeOptions) (*entities.SyncLog, error)
	CancelSession(sessionID, reason string) error
}

// RunResult summarizes one full feed ingestion run.
type RunResult struct {
	SessionID       string
	Batches         int
	ProductsCreated int
	ProductsUpdated int
	ProductsFailed  int
	LogStatus       entities.SyncLogStatus
}

// Pipeline handles the common ingestion workflow:
// parse → open session → submit ordered batches → finalize.
type Pipeline struct {
	engine    Engine
	batchSize int
}

// NewPipeline creates a feed pipeline over the sync engine.
func NewPipeline(engine Engine, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Pipeline{engine: engine, batchSize: batchSize}
}

// RunFile ingests one exported feed file for a company. Batches are
// submitted in feed order; a batch-level failure cancels the session so the
// company is not left locked out of its next run.
func (p *Pipeline) RunFile(companyID, priceListID uint, path, initiatedBy string) (*RunResult, error) {
	feed, err := ParseFeedFile(path)
	if err != nil {
		return nil, err
	}
	if feed.PriceListID != 0 {
		priceListID = feed.PriceListID
	}
	return p.Run(companyID, priceListID, feed.Products, filepath.Base(path), initiatedBy)
}

// Run ingests pre-parsed feed records.
func (p *Pipeline) Run(companyID, priceListID uint, products []FeedProduct, sourceFileName, initiatedBy string) (*RunResult, error) {
	batches := p.chunk(products)

	session, err := p.engine.OpenSession(sync.OpenSessionInput{
		CompanyID:       companyID,
		PriceListID:     priceListID,
		ExpectedBatches: len(batches),
		InitiatedBy:     initiatedBy,
	})
	if err != nil {
		return nil, err
	}

	result := &RunResult{SessionID: session.ID}

	for i, batch := range batches {
		productRecords := p.convert(batch)

		batchResult, err := p.engine.SubmitBatch(session.ID, productRecords, nil)
		if err != nil {
			// Infrastructure failure: give the session back rather than
			// leaving the company locked behind an orphaned run.
			if cancelErr := p.engine.CancelSession(session.ID, fmt.Sprintf("batch %d failed: %v", i+1, err)); cancelErr != nil {
				log.Printf("[FEED] Failed to cancel session %s: %v", session.ID, cancelErr)
			}
			return nil, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}

		result.Batches++
		result.ProductsCreated += batchResult.Created
		result.ProductsUpdated += batchResult.Updated
		result.ProductsFailed += len(batchResult.Failed)
		if batchResult.PriceErrors != nil {
			log.Printf("[FEED] Session %s batch %d rejected price groups: %v", session.ID, i+1, batchResult.PriceErrors)
		}
	}

	logEntry, err := p.engine.FinalizeSession(session.ID, sync.FinalizeOptions{SourceFileName: sourceFileName})
	if err != nil {
		return nil, fmt.Errorf("finalize run: %w", err)
	}
	result.LogStatus = logEntry.Status

	return result, nil
}

func (p *Pipeline) chunk(products []FeedProduct) [][]FeedProduct {
	var batches [][]FeedProduct
	for start := 0; start < len(products); start += p.batchSize {
		end := start + p.batchSize
		if end > len(products) {
			end = len(products)
		}
		batches = append(batches, products[start:end])
	}
	return batches
}

// convert maps feed lines onto engine records. The feed references products
// by code, not id, so prices travel on the product record and the engine
// resolves them onto the session's target price list once the row exists.
func (p *Pipeline) convert(batch []FeedProduct) []sync.ProductRecord {
	productRecords := make([]sync.ProductRecord, 0, len(batch))
	for _, fp := range batch {
		productRecords = append(productRecords, sync.ProductRecord{
			Code:           fp.Code,
			Description:    fp.Description,
			CategoryCode:   fp.CategoryCode,
			Group1Code:     fp.Group1Code,
			Group2Code:     fp.Group2Code,
			Group3Code:     fp.Group3Code,
			FeedCreatedAt:  parseFeedTime(fp.CreatedAt),
			FeedModifiedAt: parseFeedTime(fp.ModifiedAt),
			InAccounting:   fp.InAccounting,
			Available:      fp.Available,
			LocationCode:   fp.LocationCode,
			StockQuantity:  fp.StockQuantity,
			Price:          fp.Price,
		})
	}
	return productRecords
}
