package session

import (
	"time"

	"github.com/google/uuid"

	domainSession "stocktake-scan-service/internal/domain/session"
)

type StartSessionRequest struct {
	DeviceID string  `json:"device_id" validate:"required,min=1,max=255"`
	Location *string `json:"location" validate:"omitempty,max=255"`
}

type EndSessionRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

// StartResult is the tagged outcome of a start request: exactly one of
// Session or Conflict is set. A conflict is never auto-resolved here; the
// client decides whether to end the existing session and retry.
type StartResult struct {
	Session  *SessionResponse
	Conflict *ConflictInfo
}

// ConflictInfo identifies the in-progress session blocking a new start.
type ConflictInfo struct {
	SessionID   uuid.UUID `json:"conflict_session_id"`
	SessionName string    `json:"conflict_session_name"`
	StartedAt   time.Time `json:"conflict_started_at"`
}

type SessionResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	DeviceID  string     `json:"device_id"`
	Status    string     `json:"status"`
	Location  *string    `json:"location,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type SessionListResponse struct {
	Sessions   []SessionResponse `json:"sessions"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type SessionFilterRequest struct {
	DeviceID *string                      `form:"device_id"`
	Status   *domainSession.SessionStatus `form:"status" validate:"omitempty,oneof=in_progress ended"`
	Page     int                          `form:"page" validate:"omitempty,min=1"`
	PageSize int                          `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// ToSessionResponse maps a domain session to its response DTO.
func ToSessionResponse(s *domainSession.Session) *SessionResponse {
	return &SessionResponse{
		ID:        s.ID,
		Name:      s.Name,
		DeviceID:  s.DeviceID,
		Status:    string(s.Status),
		Location:  s.Location,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}
