package broadcast

import (
	"time"

	"github.com/google/uuid"

	domainScan "stocktake-scan-service/internal/domain/scan"
)

// ScanBroadcast is the wire shape pushed to listeners for one persisted
// scan event.
type ScanBroadcast struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    uuid.UUID  `json:"session_id"`
	Barcode      string     `json:"barcode"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	MaterialID   *uuid.UUID `json:"material_id,omitempty"`
	SupplierID   *uuid.UUID `json:"supplier_id,omitempty"`
	ResolvedName *string    `json:"resolved_name,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	ScannedAt    time.Time  `json:"scanned_at"`
	UserID       uuid.UUID  `json:"user_id"`
	DeviceID     string     `json:"device_id"`
}

// FromEvent maps a persisted scan event to its broadcast shape.
func FromEvent(e *domainScan.Event) *ScanBroadcast {
	return &ScanBroadcast{
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

// Broadcaster fans one scan event out to listeners. Implementations must
// be best-effort: a failed delivery never propagates back to the caller,
// since the event is already persisted by the time broadcast runs.
type Broadcaster interface {
	Broadcast(event *ScanBroadcast)
}

// Fanout composes several Broadcasters, e.g. the in-process SSE hub plus
// an external MQTT broker for multi-process deployments.
type Fanout []Broadcaster

func (f Fanout) Broadcast(event *ScanBroadcast) {
	for _, b := range f {
		b.Broadcast(event)
	}
}
