package scan

import (
	"time"

	"github.com/google/uuid"
)

// Event represents one persisted barcode read attempt, successful or not.
// Events form an append-only log: they are never mutated or deleted after
// insert, which keeps the audit trail replayable.
type Event struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	Barcode      string
	Kind         Kind
	Status       Status
	MaterialID   *uuid.UUID
	SupplierID   *uuid.UUID
	ResolvedName *string
	ErrorMessage *string
	ScannedAt    time.Time
	UserID       uuid.UUID
	DeviceID     string
}

// Kind is the barcode classification decided before resolution.
type Kind string

const (
	KindMaterial Kind = "material"
	KindSupplier Kind = "supplier"
	KindUnknown  Kind = "unknown"
	KindError    Kind = "error"
)

// Status is the outcome of one scan attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusIgnored Status = "ignored"
)
