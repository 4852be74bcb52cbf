// Package sessions provides database operations for sync sessions, including
// the single-active-session guard enforced at session creation.
package sessions

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// ErrActiveSessionExists is returned by CreateWithGuard when the company
// already has a session in a non-terminal state.
var ErrActiveSessionExists = errors.New("an active sync session already exists for this company")

var nonTerminalStates = []entities.SessionState{
	entities.SessionStateStarted,
	entities.SessionStateProcessing,
}

// Repository handles all sync session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new session repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateWithGuard inserts the session only if the company has no other
// session in a non-terminal state. Check and insert run in one transaction
// so two concurrent callers cannot both pass the guard.
func (r *Repository) CreateWithGuard(session *entities.SyncSession) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&entities.SyncSession{}).
			Where("company_id = ? AND state IN ?", session.CompanyID, nonTerminalStates).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveSessionExists
		}
		return tx.Create(session).Error
	})
}

// HasActiveSession reports whether any session for the company is in a
// non-terminal state.
func (r *Repository) HasActiveSession(companyID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.SyncSession{}).
		Where("company_id = ? AND state IN ?", companyID, nonTerminalStates).
		Count(&count).Error
	return count > 0, err
}

// GetByID retrieves one session by its id.
func (r *Repository) GetByID(id string) (*entities.SyncSession, error) {
	var session entities.SyncSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Save persists the full session row.
func (r *Repository) Save(session *entities.SyncSession) error {
	session.UpdatedAt = time.Now().UTC()
	return r.db.Save(session).Error
}

// ListForCompany returns a page of sessions for a company, most recent first,
// optionally filtered by state. Page numbers start at 1.
func (r *Repository) ListForCompany(companyID uint, page, pageSize int, state *entities.SessionState) ([]entities.SyncSession, int64, error) {
	var sessions []entities.SyncSession
	var total int64

	query := r.db.Model(&entities.SyncSession{}).Where("company_id = ?", companyID)
	if state != nil {
		query = query.Where("state = ?", *state)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}

	err := query.Order("started_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&sessions).Error
	return sessions, total, err
}

// DeleteTerminalOlderThan removes terminal sessions started before the
// cutoff and returns the number removed. Non-terminal sessions are never
// touched regardless of age: an orphaned processing session is a caller bug
// the sweep must not paper over.
func (r *Repository) DeleteTerminalOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("started_at < ? AND state NOT IN ?", cutoff, nonTerminalStates).
		Delete(&entities.SyncSession{})
	return result.RowsAffected, result.Error
}
