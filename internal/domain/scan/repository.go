package scan

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for scan event persistence.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*Event, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Event, error)
	// ListRecent returns the newest events first, capped at limit.
	// Dashboards call this on connect to backfill history before
	// switching to the live stream.
	ListRecent(ctx context.Context, limit int) ([]*Event, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
}
