package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanEventModel represents the database model for scan events. The table
// is an append-only log related to stocktake_sessions by foreign key.
type ScanEventModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Barcode      string     `gorm:"type:varchar(255);not null"`
	Kind         string     `gorm:"type:varchar(50);not null"`
	Status       string     `gorm:"type:varchar(50);not null;index"`
	MaterialID   *uuid.UUID `gorm:"type:uuid"`
	SupplierID   *uuid.UUID `gorm:"type:uuid"`
	ResolvedName *string    `gorm:"type:varchar(255)"`
	ErrorMessage *string    `gorm:"type:text"`
	ScannedAt    time.Time  `gorm:"not null;index"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null"`
	DeviceID     string     `gorm:"type:varchar(255);not null"`

	Session *SessionModel `gorm:"foreignKey:SessionID"`
}

func (ScanEventModel) TableName() string {
	return "scan_events"
}
