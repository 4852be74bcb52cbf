package sync

import "errors"

var (
	// ErrActiveSessionConflict is returned by OpenSession when the company
	// already has a session in flight. The caller must retry later or keep
	// using the existing session.
	ErrActiveSessionConflict = errors.New("company already has an active sync session")

	// ErrSessionNotFound is returned when the session id is unknown.
	ErrSessionNotFound = errors.New("sync session not found")

	// ErrInvalidSessionState is returned when the requested operation is not
	// valid in the session's current state.
	ErrInvalidSessionState = errors.New("operation not valid in current session state")

	// ErrInvalidPriceData is returned when a price batch entry is malformed.
	// It aborts that price list group; other groups in the same call are
	// still processed.
	ErrInvalidPriceData = errors.New("invalid price data")
)
