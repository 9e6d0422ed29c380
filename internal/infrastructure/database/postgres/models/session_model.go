package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel represents the database model for stocktake sessions.
// Rows are append-only; the only update the service performs is the
// status/ended_at transition when a session ends.
type SessionModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string     `gorm:"type:varchar(255);not null"`
	DeviceID  string     `gorm:"type:varchar(255);not null;index"`
	Status    string     `gorm:"type:varchar(50);not null;default:'in_progress';index"`
	Location  *string    `gorm:"type:varchar(255)"`
	StartedAt time.Time  `gorm:"not null"`
	EndedAt   *time.Time `gorm:"type:timestamptz"`
}

func (SessionModel) TableName() string {
	return "stocktake_sessions"
}
