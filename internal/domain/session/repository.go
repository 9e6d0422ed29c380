package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for session persistence.
//
// Sessions are append-only: rows are never deleted, the only in-place
// mutation is the in_progress -> ended status transition.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	// GetActiveByDevice returns the single in_progress session for the
	// device, or ErrSessionNotFound. If more than one row matches, the
	// "one in-progress session per device" invariant is broken and the
	// implementation returns ErrInvariantBroken together with the most
	// recently started session.
	GetActiveByDevice(ctx context.Context, deviceID string) (*Session, error)
	// End transitions the session to ended. Ending an already-ended
	// session is a no-op success, so flaky clients can retry safely.
	End(ctx context.Context, sessionID uuid.UUID, endedAt time.Time) error
	List(ctx context.Context, filter *Filter) ([]*Session, int64, error)
}

// Filter represents filtering options for listing sessions
type Filter struct {
	DeviceID *string
	Status   *SessionStatus
	Page     int
	PageSize int
}
