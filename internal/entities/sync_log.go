package entities

import "time"

type SyncLogStatus string

const (
	SyncLogStatusSuccessful SyncLogStatus = "successful"
	SyncLogStatusWithErrors SyncLogStatus = "with_errors"
	SyncLogStatusFailed     SyncLogStatus = "failed"
)

// SyncLog is the immutable audit record written once per finished run. It has
// its own lifecycle: it is created at finalization and never mutated, and it
// survives the retention sweep that deletes old sessions.
type SyncLog struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	CompanyID        uint          `gorm:"index" json:"company_id"`
	SourceFileName   string        `gorm:"size:255" json:"source_file_name,omitempty"`
	ProcessedAt      time.Time     `gorm:"index" json:"processed_at"`
	ProductsUpdated  int           `json:"products_updated"`
	ProductsCreated  int           `json:"products_created"`
	ErrorCount       int           `json:"error_count"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Status           SyncLogStatus `gorm:"size:20" json:"status"`
	ErrorDetails     string        `gorm:"type:text" json:"error_details,omitempty"`
	ProcessedBy      string        `gorm:"size:100" json:"processed_by"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
