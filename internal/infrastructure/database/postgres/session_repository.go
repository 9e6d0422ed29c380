package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainSession "stocktake-scan-service/internal/domain/session"
	"stocktake-scan-service/internal/infrastructure/database/postgres/models"
	"stocktake-scan-service/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionRepository implements domain session.Repository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) domainSession.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domainSession.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	s.Status = domainSession.StatusInProgress

	dbModel := toSessionModel(s)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	s.ID = dbModel.ID

	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*domainSession.Session, error) {
	var dbModel models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainSession.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return toSessionEntity(&dbModel), nil
}

func (r *SessionRepository) GetActiveByDevice(ctx context.Context, deviceID string) (*domainSession.Session, error) {
	var dbModels []models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND status = ?", deviceID, string(domainSession.StatusInProgress)).
		Order("started_at DESC").
		Limit(2).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}

	switch len(dbModels) {
	case 0:
		return nil, domainSession.ErrSessionNotFound
	case 1:
		return toSessionEntity(&dbModels[0]), nil
	default:
		// More than one in_progress row for the device breaks the
		// one-session-per-device invariant. Surface the newest session
		// so the caller can treat the state as a conflict instead of
		// crashing.
		logger.Error("Invariant violation: multiple in-progress sessions for device",
			zap.String("device_id", deviceID),
			zap.String("event", "session_invariant_violation"),
		)
		return toSessionEntity(&dbModels[0]), domainSession.ErrInvariantBroken
	}
}

func (r *SessionRepository) End(ctx context.Context, sessionID uuid.UUID, endedAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("id = ? AND status = ?", sessionID, string(domainSession.StatusInProgress)).
		Updates(map[string]interface{}{
			"status":   string(domainSession.StatusEnded),
			"ended_at": endedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to end session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the session does not exist, or a retry already ended
		// it. Distinguish the two: ending an ended session must stay a
		// no-op success for flaky clients.
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.SessionModel{}).
			Where("id = ?", sessionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to verify session: %w", err)
		}
		if count == 0 {
			return domainSession.ErrSessionNotFound
		}
	}

	return nil
}

func (r *SessionRepository) List(ctx context.Context, filter *domainSession.Filter) ([]*domainSession.Session, int64, error) {
	query := r.db.DB.WithContext(ctx).Model(&models.SessionModel{})

	if filter.DeviceID != nil {
		query = query.Where("device_id = ?", *filter.DeviceID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var dbModels []models.SessionModel
	err := query.
		Order("started_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*domainSession.Session, len(dbModels))
	for i := range dbModels {
		sessions[i] = toSessionEntity(&dbModels[i])
	}

	return sessions, total, nil
}

func toSessionModel(s *domainSession.Session) *models.SessionModel {
	return &models.SessionModel{
		ID:        s.ID,
		Name:      s.Name,
		DeviceID:  s.DeviceID,
		Status:    string(s.Status),
		Location:  s.Location,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}

func toSessionEntity(m *models.SessionModel) *domainSession.Session {
	return &domainSession.Session{
		ID:        m.ID,
		Name:      m.Name,
		DeviceID:  m.DeviceID,
		Status:    domainSession.SessionStatus(m.Status),
		Location:  m.Location,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
	}
}
