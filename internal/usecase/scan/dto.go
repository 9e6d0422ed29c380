package scan

import (
	"time"

	"github.com/google/uuid"

	domainScan "stocktake-scan-service/internal/domain/scan"
)

type SubmitScanRequest struct {
	Barcode   string                 `json:"barcode" validate:"required,min=1,max=255"`
	SessionID *uuid.UUID             `json:"session_id" validate:"omitempty"`
	DeviceID  string                 `json:"device_id" validate:"required,min=1,max=255"`
	Metadata  map[string]interface{} `json:"metadata" validate:"omitempty"`
}

// SubmitResult echoes the persisted event back to the scanning client.
// Status mirrors the stored event: a scan that failed barcode resolution
// is still persisted and reported here with status error, not rejected.
type SubmitResult struct {
	ScanID       uuid.UUID `json:"scan_id"`
	Status       string    `json:"status"`
	Kind         string    `json:"kind"`
	ResolvedName *string   `json:"resolved_name,omitempty"`
	Message      string    `json:"message"`
}

type ScanEventResponse struct {
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

// ToScanEventResponse maps a domain scan event to its response DTO.
func ToScanEventResponse(e *domainScan.Event) *ScanEventResponse {
	return &ScanEventResponse{
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
