package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainSession "stocktake-scan-service/internal/domain/session"
	"stocktake-scan-service/internal/logger"
	appErrors "stocktake-scan-service/pkg/errors"
	"stocktake-scan-service/pkg/utils"
)

// Service implements session lifecycle use cases
type Service struct {
	sessionRepo domainSession.Repository
}

// NewService creates a new session service
func NewService(sessionRepo domainSession.Repository) *Service {
	return &Service{sessionRepo: sessionRepo}
}

// Start opens a new stocktake session for the device, or reports the
// existing in-progress session as a conflict. The check-then-insert has a
// known race window when one device issues two concurrent starts; a
// partial unique index on (device_id) WHERE status='in_progress' closes
// it at the storage layer.
func (s *Service) Start(ctx context.Context, req *StartSessionRequest, userID uuid.UUID) (*StartResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	existing, err := s.sessionRepo.GetActiveByDevice(ctx, req.DeviceID)
	switch {
	case err == nil, errors.Is(err, domainSession.ErrInvariantBroken):
		// An invariant violation still surfaces as a conflict so the
		// operator resolves it explicitly instead of stacking sessions.
		return &StartResult{
			Conflict: &ConflictInfo{
				SessionID:   existing.ID,
				SessionName: existing.Name,
				StartedAt:   existing.StartedAt,
			},
		}, nil
	case errors.Is(err, domainSession.ErrSessionNotFound):
		// No active session, proceed with the insert.
	default:
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to check active session", err)
	}

	now := time.Now()
	newSession := &domainSession.Session{
		Name:      fmt.Sprintf("Stocktake %s", now.Format("2006-01-02 15:04")),
		DeviceID:  req.DeviceID,
		Status:    domainSession.StatusInProgress,
		Location:  req.Location,
		StartedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, newSession); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to create session", err)
	}

	logger.Info("Stocktake session started",
		zap.String("session_id", newSession.ID.String()),
		zap.String("device_id", req.DeviceID),
		zap.String("user_id", userID.String()),
		zap.String("event", "session_started"),
	)

	return &StartResult{Session: ToSessionResponse(newSession)}, nil
}

// End transitions a session to ended. Ending an already-ended session is
// a no-op success so clients on flaky links can retry freely.
func (s *Service) End(ctx context.Context, sessionID uuid.UUID) error {
	err := s.sessionRepo.End(ctx, sessionID, time.Now())
	if errors.Is(err, domainSession.ErrSessionNotFound) {
		return appErrors.NewAppError(appErrors.CodeNotFound, "Session not found", err)
	}
	if err != nil {
		return appErrors.NewAppError(appErrors.CodeServer, "Failed to end session", err)
	}

	logger.Info("Stocktake session ended",
		zap.String("session_id", sessionID.String()),
		zap.String("event", "session_ended"),
	)

	return nil
}

// GetActive returns the device's in-progress session, or nil when there
// is none. Clients call this to recover state after restart/reconnect.
func (s *Service) GetActive(ctx context.Context, deviceID string) (*SessionResponse, error) {
	if deviceID == "" {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "device_id is required", domainSession.ErrInvalidDeviceID)
	}

	active, err := s.sessionRepo.GetActiveByDevice(ctx, deviceID)
	switch {
	case err == nil, errors.Is(err, domainSession.ErrInvariantBroken):
		return ToSessionResponse(active), nil
	case errors.Is(err, domainSession.ErrSessionNotFound):
		return nil, nil
	default:
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to query active session", err)
	}
}

// GetSession returns one session by id.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	found, err := s.sessionRepo.GetByID(ctx, sessionID)
	if errors.Is(err, domainSession.ErrSessionNotFound) {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Session not found", err)
	}
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to get session", err)
	}

	return ToSessionResponse(found), nil
}

// ListSessions returns the session audit trail, newest first.
func (s *Service) ListSessions(ctx context.Context, filter *SessionFilterRequest) (*SessionListResponse, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid query parameters", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	sessions, total, err := s.sessionRepo.List(ctx, &domainSession.Filter{
		DeviceID: filter.DeviceID,
		Status:   filter.Status,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to list sessions", err)
	}

	responses := make([]SessionResponse, len(sessions))
	for i, sess := range sessions {
		responses[i] = *ToSessionResponse(sess)
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &SessionListResponse{
		Sessions:   responses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}
