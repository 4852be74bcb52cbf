// Package synclogs provides database operations for the immutable sync audit
// trail. Rows are written once at session finalization and never mutated.
package synclogs

import (
	"time"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// CompanyStats aggregates the audit trail of one company over a window.
type CompanyStats struct {
	TotalRuns       int64      `json:"total_runs"`
	ProductsCreated int64      `json:"products_created"`
	ProductsUpdated int64      `json:"products_updated"`
	ErrorCount      int64      `json:"error_count"`
	AvgDurationMs   float64    `json:"avg_duration_ms"`
	SuccessRate     float64    `json:"success_rate"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
}

// Repository handles sync log database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync log repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create writes one audit row.
func (r *Repository) Create(logEntry *entities.SyncLog) error {
	if logEntry.ProcessedAt.IsZero() {
		logEntry.ProcessedAt = time.Now().UTC()
	}
	return r.db.Create(logEntry).Error
}

// RecentForCompany returns the n most recent audit rows for a company.
func (r *Repository) RecentForCompany(companyID uint, n int) ([]entities.SyncLog, error) {
	if n <= 0 {
		n = 10
	}
	var logs []entities.SyncLog
	err := r.db.Where("company_id = ?", companyID).
		Order("processed_at DESC").
		Limit(n).
		Find(&logs).Error
	return logs, err
}

// StatsForCompany aggregates the company's runs over the trailing window.
func (r *Repository) StatsForCompany(companyID uint, days int) (*CompanyStats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var row struct {
		TotalRuns       int64
		ProductsCreated int64
		ProductsUpdated int64
		ErrorCount      int64
		AvgDurationMs   float64
		SuccessfulRuns  int64
	}
	err := r.db.Model(&entities.SyncLog{}).
		Select(
			"COUNT(*) AS total_runs,"+
				" COALESCE(SUM(products_created), 0) AS products_created,"+
				" COALESCE(SUM(products_updated), 0) AS products_updated,"+
				" COALESCE(SUM(error_count), 0) AS error_count,"+
				" COALESCE(AVG(processing_time_ms), 0) AS avg_duration_ms,"+
				" COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS successful_runs",
			entities.SyncLogStatusSuccessful,
		).
		Where("company_id = ? AND processed_at >= ?", companyID, since).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &CompanyStats{
		TotalRuns:       row.TotalRuns,
		ProductsCreated: row.ProductsCreated,
		ProductsUpdated: row.ProductsUpdated,
		ErrorCount:      row.ErrorCount,
		AvgDurationMs:   row.AvgDurationMs,
	}
	if row.TotalRuns > 0 {
		stats.SuccessRate = float64(row.SuccessfulRuns) / float64(row.TotalRuns)

		var last entities.SyncLog
		err = r.db.Where("company_id = ? AND processed_at >= ?", companyID, since).
			Order("processed_at DESC").
			First(&last).Error
		if err != nil {
			return nil, err
		}
		stats.LastRunAt = &last.ProcessedAt
	}
	return stats, nil
}
