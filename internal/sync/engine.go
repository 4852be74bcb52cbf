package sync

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/database/sessions"
	"github.com/pablopelardas/dulceysalado-sync/internal/database/synclogs"
	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// DefaultErrorRateThreshold is used when the configuration does not carry an
// explicit threshold. At or above this failed-product ratio a finalized
// session is marked failed instead of completed.
const DefaultErrorRateThreshold = 0.1

// DefaultSlowBatchMs is the slow-batch threshold used when the configuration
// does not carry one.
const DefaultSlowBatchMs = 5000

// StockCacheInvalidator drops a company's cached stock after a finished run.
// Invalidation is fire-and-forget from the engine's perspective: a failure is
// logged, never propagated as a session failure.
type StockCacheInvalidator interface {
	InvalidateCompany(companyID uint) error
}

// Config carries the engine's tunables.
type Config struct {
	// ErrorRateThreshold is the failed-product ratio at which a finalized
	// session flips from completed to failed.
	ErrorRateThreshold float64

	// SlowBatchMs is the batch duration above which a batch is flagged as
	// slow in the log.
	SlowBatchMs int64
}

// slowBatch reports whether a batch duration crosses the slow threshold.
func (c Config) slowBatch(durationMs int64) bool {
	return c.SlowBatchMs > 0 && durationMs > c.SlowBatchMs
}

// Engine owns the sync session state machine: it opens sessions under the
// single-active-session guard, drives batch submission, finalization and
// cleanup, and writes the immutable audit trail.
type Engine struct {
	db          *gorm.DB
	sessions    *sessions.Repository
	logs        *synclogs.Repository
	invalidator StockCacheInvalidator
	cfg         Config
}

// NewEngine creates the sync engine on top of an open GORM connection.
// The invalidator may be nil when no stock cache is deployed.
func NewEngine(db *gorm.DB, invalidator StockCacheInvalidator, cfg Config) *Engine {
	if cfg.ErrorRateThreshold <= 0 {
		cfg.ErrorRateThreshold = DefaultErrorRateThreshold
	}
	if cfg.SlowBatchMs <= 0 {
		cfg.SlowBatchMs = DefaultSlowBatchMs
	}
	return &Engine{
		db:          db,
		sessions:    sessions.NewRepository(db),
		logs:        synclogs.NewRepository(db),
		invalidator: invalidator,
		cfg:         cfg,
	}
}

// OpenSessionInput carries everything needed to start an ingestion run.
type OpenSessionInput struct {
	CompanyID       uint
	PriceListID     uint
	ExpectedBatches int
	InitiatedBy     string
	SourceAddress   string
}

// OpenSession starts a new run for the company. Guard check and session
// creation are atomic: two concurrent callers for the same company cannot
// both succeed; the loser gets ErrActiveSessionConflict.
func (e *Engine) OpenSession(input OpenSessionInput) (*entities.SyncSession, error) {
	session := entities.NewSyncSession(
		uuid.NewString(),
		input.CompanyID,
		input.PriceListID,
		input.ExpectedBatches,
		input.InitiatedBy,
		input.SourceAddress,
	)

	if err := e.sessions.CreateWithGuard(session); err != nil {
		if errors.Is(err, sessions.ErrActiveSessionExists) {
			return nil, fmt.Errorf("company %d: %w", input.CompanyID, ErrActiveSessionConflict)
		}
		return nil, fmt.Errorf("create sync session: %w", err)
	}

	log.Printf("[SYNC] Session %s opened for company %d (expected batches: %d)",
		session.ID, input.CompanyID, input.ExpectedBatches)
	return session, nil
}

// SubmitBatch reconciles one batch of product and price records into the
// catalog. The whole batch, counters included, commits in one transaction;
// if it fails, BatchesProcessed stays unincremented and the same batch is
// safe to retry. Item-level failures never abort the batch: they come back
// classified in the result and accumulate on the session.
func (e *Engine) SubmitBatch(sessionID string, productRecords []ProductRecord, priceRecords []PriceRecord) (*BatchResult, error) {
	session, err := e.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.State.Terminal() {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, session.State, ErrInvalidSessionState)
	}
	if session.ExpectedBatches > 0 && session.BatchesProcessed >= session.ExpectedBatches {
		return nil, fmt.Errorf("session %s already received all %d expected batches: %w",
			sessionID, session.ExpectedBatches, ErrInvalidSessionState)
	}

	start := time.Now()
	var result *BatchResult

	err = e.db.Transaction(func(tx *gorm.DB) error {
		reconciler := newBatchReconciler(tx)
		batch, feedPrices, err := reconciler.reconcile(session.CompanyID, session.PriceListID, session.StartedAt, productRecords)
		if err != nil {
			return err
		}

		rejected, err := newPriceReconciler(tx).reconcile(append(feedPrices, priceRecords...))
		if err != nil {
			return err
		}
		batch.PriceErrors = rejected
		result = batch

		elapsedMs := time.Since(start).Milliseconds()
		metrics := session.MetricsSnapshot()
		metrics.RecordBatch(elapsedMs, len(productRecords))
		session.SetMetrics(metrics)
		if e.cfg.slowBatch(elapsedMs) {
			log.Printf("[SYNC] Session %s slow batch: %dms over threshold %dms",
				sessionID, elapsedMs, e.cfg.SlowBatchMs)
		}

		session.BatchesProcessed++
		// Each product counts once per session; revisits of rows already
		// reconciled this session do not grow the total.
		session.ProductsTotal += batch.Total() - batch.Revisited
		session.ProductsCreated += batch.Created
		session.ProductsUpdated += batch.Updated
		session.ProductsFailed += len(batch.Failed)
		session.AppendErrors(batch.Failed)
		if session.State == entities.SessionStateStarted {
			session.State = entities.SessionStateProcessing
		}

		return e.sessions.WithTx(tx).Save(session)
	})
	if err != nil {
		return nil, fmt.Errorf("submit batch for session %s: %w", sessionID, err)
	}

	log.Printf("[SYNC] Session %s batch %d/%d: %d created, %d updated, %d failed",
		sessionID, session.BatchesProcessed, session.ExpectedBatches,
		result.Created, result.Updated, len(result.Failed))
	return result, nil
}

// FinalizeOptions tunes session finalization.
type FinalizeOptions struct {
	// ForceState overrides the threshold rule. Only completed or failed are
	// accepted.
	ForceState entities.SessionState
	// SourceFileName names the feed file for the audit trail.
	SourceFileName string
}

// FinalizeSession closes the run: the session turns completed or failed
// depending on its error ratio against the configured threshold, the audit
// row is written, and the company's stock cache is invalidated. A second
// finalize fails with ErrInvalidSessionState. If persisting fails, the
// session stays in its last non-terminal state.
func (e *Engine) FinalizeSession(sessionID string, opts FinalizeOptions) (*entities.SyncLog, error) {
	session, err := e.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.State.Terminal() {
		return nil, fmt.Errorf("session %s is already %s: %w", sessionID, session.State, ErrInvalidSessionState)
	}

	state := entities.SessionStateCompleted
	if session.ErrorRate() >= e.cfg.ErrorRateThreshold {
		state = entities.SessionStateFailed
	}
	if opts.ForceState != "" {
		if opts.ForceState != entities.SessionStateCompleted && opts.ForceState != entities.SessionStateFailed {
			return nil, fmt.Errorf("cannot force state %q: %w", opts.ForceState, ErrInvalidSessionState)
		}
		state = opts.ForceState
	}

	now := time.Now().UTC()
	session.State = state
	session.FinishedAt = &now
	session.TotalDurationMs = now.Sub(session.StartedAt).Milliseconds()

	logEntry := e.buildLog(session, opts.SourceFileName)

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := e.sessions.WithTx(tx).Save(session); err != nil {
			return err
		}
		return e.logs.WithTx(tx).Create(logEntry)
	})
	if err != nil {
		// Leave the in-memory view consistent with storage.
		session.State = entities.SessionStateProcessing
		session.FinishedAt = nil
		session.TotalDurationMs = 0
		return nil, fmt.Errorf("finalize session %s: %w", sessionID, err)
	}

	e.invalidateStock(session.CompanyID)

	log.Printf("[SYNC] Session %s finalized as %s: %d created, %d updated, %d failed in %dms",
		sessionID, state, session.ProductsCreated, session.ProductsUpdated,
		session.ProductsFailed, session.TotalDurationMs)
	return logEntry, nil
}

// CancelSession moves a non-terminal session to cancelled. Already-committed
// batches stay committed; cancellation is forward-only. No audit row is
// written for cancelled runs.
func (e *Engine) CancelSession(sessionID, reason string) error {
	session, err := e.loadSession(sessionID)
	if err != nil {
		return err
	}
	if session.State.Terminal() {
		return fmt.Errorf("session %s is already %s: %w", sessionID, session.State, ErrInvalidSessionState)
	}

	now := time.Now().UTC()
	session.State = entities.SessionStateCancelled
	session.CancelReason = reason
	session.FinishedAt = &now
	session.TotalDurationMs = now.Sub(session.StartedAt).Milliseconds()

	if err := e.sessions.Save(session); err != nil {
		return fmt.Errorf("cancel session %s: %w", sessionID, err)
	}

	log.Printf("[SYNC] Session %s cancelled: %s", sessionID, reason)
	return nil
}

// CleanupOlderThan deletes terminal sessions whose run started more than the
// given number of days ago and returns how many were removed. Non-terminal
// sessions are never reaped regardless of age.
func (e *Engine) CleanupOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	removed, err := e.sessions.DeleteTerminalOlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions older than %d days: %w", days, err)
	}
	if removed > 0 {
		log.Printf("[SYNC] Cleaned up %d terminal sessions older than %d days", removed, days)
	}
	return removed, nil
}

// GetSession returns one session by id.
func (e *Engine) GetSession(sessionID string) (*entities.SyncSession, error) {
	return e.loadSession(sessionID)
}

// HasActiveSession reports whether the company has a run in flight.
func (e *Engine) HasActiveSession(companyID uint) (bool, error) {
	return e.sessions.HasActiveSession(companyID)
}

// ListSessionsForCompany returns a page of the company's sessions, most
// recent first, optionally filtered by state.
func (e *Engine) ListSessionsForCompany(companyID uint, page, pageSize int, state *entities.SessionState) ([]entities.SyncSession, int64, error) {
	return e.sessions.ListForCompany(companyID, page, pageSize, state)
}

// RecentLogs returns the n most recent audit rows for the company.
func (e *Engine) RecentLogs(companyID uint, n int) ([]entities.SyncLog, error) {
	return e.logs.RecentForCompany(companyID, n)
}

// CompanyStats aggregates the company's audit trail over the trailing window.
func (e *Engine) CompanyStats(companyID uint, days int) (*synclogs.CompanyStats, error) {
	return e.logs.StatsForCompany(companyID, days)
}

func (e *Engine) loadSession(sessionID string) (*entities.SyncSession, error) {
	session, err := e.sessions.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return session, nil
}

func (e *Engine) buildLog(session *entities.SyncSession, sourceFileName string) *entities.SyncLog {
	status := entities.SyncLogStatusSuccessful
	switch {
	case session.State == entities.SessionStateFailed:
		status = entities.SyncLogStatusFailed
	case session.ProductsFailed > 0:
		status = entities.SyncLogStatusWithErrors
	}

	return &entities.SyncLog{
		CompanyID:        session.CompanyID,
		SourceFileName:   sourceFileName,
		ProcessedAt:      *session.FinishedAt,
		ProductsUpdated:  session.ProductsUpdated,
		ProductsCreated:  session.ProductsCreated,
		ErrorCount:       session.ProductsFailed,
		ProcessingTimeMs: session.TotalDurationMs,
		Status:           status,
		ErrorDetails:     session.ErrorDetails,
		ProcessedBy:      session.InitiatedBy,
	}
}

func (e *Engine) invalidateStock(companyID uint) {
	if e.invalidator == nil {
		return
	}
	if err := e.invalidator.InvalidateCompany(companyID); err != nil {
		log.Printf("[SYNC] Stock cache invalidation failed for company %d: %v", companyID, err)
	}
}
