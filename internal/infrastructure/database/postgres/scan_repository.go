package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainScan "stocktake-scan-service/internal/domain/scan"
	"stocktake-scan-service/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanRepository implements domain scan.Repository
type ScanRepository struct {
	db *DB
}

// NewScanRepository creates a new scan event repository
func NewScanRepository(db *DB) domainScan.Repository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) Create(ctx context.Context, e *domainScan.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ScannedAt.IsZero() {
		e.ScannedAt = time.Now()
	}

	dbModel := toScanEventModel(e)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create scan event: %w", err)
	}

	e.ID = dbModel.ID

	return nil
}

func (r *ScanRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domainScan.Event, error) {
	var dbModel models.ScanEventModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", eventID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainScan.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan event: %w", err)
	}

	return toScanEventEntity(&dbModel), nil
}

func (r *ScanRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domainScan.Event, error) {
	var dbModels []models.ScanEventModel
	err := r.db.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("scanned_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scan events: %w", err)
	}

	return toScanEventEntities(dbModels), nil
}

func (r *ScanRepository) ListRecent(ctx context.Context, limit int) ([]*domainScan.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	var dbModels []models.ScanEventModel
	err := r.db.DB.WithContext(ctx).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent scan events: %w", err)
	}

	return toScanEventEntities(dbModels), nil
}

func (r *ScanRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.ScanEventModel{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count scan events: %w", err)
	}

	return count, nil
}

func toScanEventEntities(dbModels []models.ScanEventModel) []*domainScan.Event {
	events := make([]*domainScan.Event, len(dbModels))
	for i := range dbModels {
		events[i] = toScanEventEntity(&dbModels[i])
	}
	return events
}

func toScanEventModel(e *domainScan.Event) *models.ScanEventModel {
	return &models.ScanEventModel{
		ID:           e.ID,
		SessionID:    e.SessionID,
		Barcode:      e.Barcode,
		Kind:         string(e.Kind),
		Status:       string(e.Status),
		MaterialID:   e.MaterialID,
		SupplierID:   e.SupplierID,
		ResolvedName: e.ResolvedName,
		ErrorMessage: e.ErrorMessage,
		ScannedAt:    e.ScannedAt,
		UserID:       e.UserID,
		DeviceID:     e.DeviceID,
	}
}

func toScanEventEntity(m *models.ScanEventModel) *domainScan.Event {
	return &domainScan.Event{
		ID:           m.ID,
		SessionID:    m.SessionID,
		Barcode:      m.Barcode,
		Kind:         domainScan.Kind(m.Kind),
		Status:       domainScan.Status(m.Status),
		MaterialID:   m.MaterialID,
		SupplierID:   m.SupplierID,
		ResolvedName: m.ResolvedName,
		ErrorMessage: m.ErrorMessage,
		ScannedAt:    m.ScannedAt,
		UserID:       m.UserID,
		DeviceID:     m.DeviceID,
	}
}
