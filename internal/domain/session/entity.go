package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one stocktake counting pass owned by a single device.
type Session struct {
	ID        uuid.UUID
	Name      string
	DeviceID  string
	Status    SessionStatus
	Location  *string
	StartedAt time.Time
	EndedAt   *time.Time
}

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusEnded      SessionStatus = "ended"
)

// IsActive reports whether scans may still be attributed to this session.
func (s *Session) IsActive() bool {
	return s.Status == StatusInProgress
}
