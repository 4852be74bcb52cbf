package entities

import (
	"encoding/json"
	"time"
)

type SessionState string

const (
	SessionStateStarted    SessionState = "started"
	SessionStateProcessing SessionState = "processing"
	SessionStateCompleted  SessionState = "completed"
	SessionStateFailed     SessionState = "failed"
	SessionStateCancelled  SessionState = "cancelled"
)

// Terminal reports whether no further batch submissions are accepted.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionStateCompleted, SessionStateFailed, SessionStateCancelled:
		return true
	}
	return false
}

type ErrorKind string

const (
	ErrorKindDuplicate  ErrorKind = "duplicate"
	ErrorKindConstraint ErrorKind = "constraint"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// SessionError records one failed product inside a batch.
type SessionError struct {
	ProductCode string    `json:"product_code"`
	Message     string    `json:"message"`
	Kind        ErrorKind `json:"kind"`
}

// SyncSession is one ingestion run for one company. It is mutated by every
// batch submission and becomes immutable once it reaches a terminal state.
type SyncSession struct {
	ID               string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID        uint         `gorm:"index;not null" json:"company_id"`
	PriceListID      uint         `json:"price_list_id"`
	State            SessionState `gorm:"size:20;index" json:"state"`
	ExpectedBatches  int          `json:"expected_batches"`
	BatchesProcessed int          `json:"batches_processed"`
	ProductsTotal    int          `json:"products_total"`
	ProductsUpdated  int          `json:"products_updated"`
	ProductsCreated  int          `json:"products_created"`
	ProductsFailed   int          `json:"products_failed"`
	ErrorDetails     string       `gorm:"type:text" json:"error_details,omitempty"`
	Metrics          string       `gorm:"type:text" json:"metrics,omitempty"`
	StartedAt        time.Time    `json:"started_at"`
	FinishedAt       *time.Time   `json:"finished_at,omitempty"`
	TotalDurationMs  int64        `json:"total_duration_ms"`
	InitiatedBy      string       `gorm:"size:100" json:"initiated_by"`
	SourceAddress    string       `gorm:"size:45" json:"source_address,omitempty"`
	CancelReason     string       `gorm:"size:500" json:"cancel_reason,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (SyncSession) TableName() string {
	return "sync_sessions"
}

// NewSyncSession creates a session in its initial state. The id is assigned
// by the caller so it can be an opaque global token.
func NewSyncSession(id string, companyID, priceListID uint, expectedBatches int, initiatedBy, sourceAddress string) *SyncSession {
	now := time.Now().UTC()
	return &SyncSession{
		ID:              id,
		CompanyID:       companyID,
		PriceListID:     priceListID,
		State:           SessionStateStarted,
		ExpectedBatches: expectedBatches,
		InitiatedBy:     initiatedBy,
		SourceAddress:   sourceAddress,
		StartedAt:       now,
		UpdatedAt:       now,
	}
}

// Errors deserializes the accumulated per-product errors.
func (s *SyncSession) Errors() []SessionError {
	if s.ErrorDetails == "" {
		return nil
	}
	var errs []SessionError
	if err := json.Unmarshal([]byte(s.ErrorDetails), &errs); err != nil {
		return nil
	}
	return errs
}

// AppendErrors adds batch failures to the session's error list, keeping order.
func (s *SyncSession) AppendErrors(errs []SessionError) {
	if len(errs) == 0 {
		return
	}
	all := append(s.Errors(), errs...)
	data, err := json.Marshal(all)
	if err != nil {
		return
	}
	s.ErrorDetails = string(data)
}

// MetricsSnapshot deserializes the session's metrics, returning a zero value
// for sessions that have not recorded any batch yet.
func (s *SyncSession) MetricsSnapshot() SyncMetrics {
	var m SyncMetrics
	if s.Metrics == "" {
		return m
	}
	if err := json.Unmarshal([]byte(s.Metrics), &m); err != nil {
		return SyncMetrics{}
	}
	return m
}

// SetMetrics serializes metrics back onto the session row.
func (s *SyncSession) SetMetrics(m SyncMetrics) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	s.Metrics = string(data)
}

// ErrorRate returns the fraction of failed products over all products seen.
func (s *SyncSession) ErrorRate() float64 {
	if s.ProductsTotal == 0 {
		return 0
	}
	return float64(s.ProductsFailed) / float64(s.ProductsTotal)
}
