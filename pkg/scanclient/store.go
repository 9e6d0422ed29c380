package scanclient

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScanStatus is the UI feedback state after the latest scan attempt.
type ScanStatus string

const (
	ScanIdle    ScanStatus = "idle"
	ScanSuccess ScanStatus = "success"
	ScanError   ScanStatus = "error"
)

// SessionStore is the device-local source of truth for the current
// session and last scan outcome. It mirrors server state and is never
// authoritative: conflicts and restarts rehydrate it from the server.
type SessionStore struct {
	client   *Client
	deviceID string

	debounceWindow time.Duration
	endRetries     int
	retryDelay     time.Duration

	mu               sync.Mutex
	currentSessionID *uuid.UUID
	isScanning       bool
	lastScanStatus   ScanStatus
	lastScanMessage  string
	lastScanID       *uuid.UUID
	lastBarcode      string
	lastBarcodeAt    time.Time
	pendingConflict  *uuid.UUID

	now func() time.Time
}

// StoreOptions configures a SessionStore.
type StoreOptions struct {
	DeviceID       string
	DebounceWindow time.Duration
	// EndRetries bounds how often EndStocktakeSession retries before
	// giving up and clearing local state anyway.
	EndRetries int
	RetryDelay time.Duration
}

func NewSessionStore(client *Client, opts StoreOptions) *SessionStore {
	debounce := opts.DebounceWindow
	if debounce <= 0 {
		debounce = 1500 * time.Millisecond
	}
	retries := opts.EndRetries
	if retries <= 0 {
		retries = 3
	}
	retryDelay := opts.RetryDelay
	if retryDelay < 0 {
		retryDelay = 0
	}

	return &SessionStore{
		client:         client,
		deviceID:       opts.DeviceID,
		debounceWindow: debounce,
		endRetries:     retries,
		retryDelay:     retryDelay,
		lastScanStatus: ScanIdle,
		now:            time.Now,
	}
}

// Snapshot is a copy of the store's state for UI rendering.
type Snapshot struct {
	CurrentSessionID *uuid.UUID
	IsScanning       bool
	LastScanStatus   ScanStatus
	LastScanMessage  string
	LastScanID       *uuid.UUID
}

func (s *SessionStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		CurrentSessionID: s.currentSessionID,
		IsScanning:       s.isScanning,
		LastScanStatus:   s.lastScanStatus,
		LastScanMessage:  s.lastScanMessage,
		LastScanID:       s.lastScanID,
	}
}

// StartOutcome reports a start attempt. When Conflict is set the UI must
// ask the operator before calling ResolveConflict; the store never ends
// the blocking session on its own.
type StartOutcome struct {
	Started  bool
	Conflict *uuid.UUID
	Error    string
}

// StartStocktakeSession opens a session for this device.
func (s *SessionStore) StartStocktakeSession(ctx context.Context) StartOutcome {
	result := s.client.StartSession(ctx, s.deviceID, nil)

	if result.ConflictSessionID != nil {
		s.mu.Lock()
		s.pendingConflict = result.ConflictSessionID
		s.mu.Unlock()
		return StartOutcome{Conflict: result.ConflictSessionID, Error: result.Error}
	}
	if !result.Success {
		return StartOutcome{Error: result.Error}
	}

	s.mu.Lock()
	s.currentSessionID = &result.Session.ID
	s.pendingConflict = nil
	s.lastScanStatus = ScanIdle
	s.lastScanMessage = ""
	s.lastScanID = nil
	s.lastBarcode = ""
	s.mu.Unlock()

	return StartOutcome{Started: true}
}

// ResolveConflict is called after the operator confirmed ending the
// blocking session. It ends that session, then starts a fresh one.
func (s *SessionStore) ResolveConflict(ctx context.Context) StartOutcome {
	s.mu.Lock()
	conflict := s.pendingConflict
	s.mu.Unlock()

	if conflict == nil {
		return StartOutcome{Error: "no pending session conflict to resolve"}
	}

	if ack := s.client.EndSession(ctx, *conflict); !ack.Success {
		return StartOutcome{Error: ack.Error}
	}

	return s.StartStocktakeSession(ctx)
}

// EndStocktakeSession ends the current session with a bounded number of
// retries, then clears local state regardless of the network outcome so
// the device cannot stay stuck "in session" on a dead link.
func (s *SessionStore) EndStocktakeSession(ctx context.Context) Ack {
	s.mu.Lock()
	sessionID := s.currentSessionID
	s.mu.Unlock()

	if sessionID == nil {
		return Ack{Success: true}
	}

	var ack Ack
	for attempt := 0; attempt < s.endRetries; attempt++ {
		ack = s.client.EndSession(ctx, *sessionID)
		if ack.Success {
			break
		}
		if attempt < s.endRetries-1 && s.retryDelay > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				attempt = s.endRetries
			}
		}
	}

	s.reset()

	return ack
}

// Rehydrate refreshes local session state from the server, used after an
// app restart or reconnect.
func (s *SessionStore) Rehydrate(ctx context.Context) Ack {
	result := s.client.GetActiveSession(ctx, s.deviceID)
	if !result.Success {
		return Ack{Success: false, Error: result.Error}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if result.Session != nil {
		s.currentSessionID = &result.Session.ID
	} else {
		s.currentSessionID = nil
	}

	return Ack{Success: true}
}

// HandleScan submits one decoded barcode against the active session.
// Guards, in order: a scan already in flight, the duplicate-read debounce
// window, and a missing session. None of them produce a network call.
func (s *SessionStore) HandleScan(ctx context.Context, barcode string) ScanResult {
	s.mu.Lock()

	if s.isScanning {
		s.mu.Unlock()
		return ScanResult{Success: false, Error: "scan already in progress"}
	}

	if barcode == s.lastBarcode && s.now().Sub(s.lastBarcodeAt) < s.debounceWindow {
		// Same physical label re-read by the camera; quietly ignore.
		s.mu.Unlock()
		return ScanResult{Success: true, Status: "ignored", Message: "duplicate scan ignored"}
	}

	if s.currentSessionID == nil {
		s.mu.Unlock()
		result := ScanResult{Success: false, Error: "no active stocktake session"}
		s.recordFeedback(result)
		return result
	}

	sessionID := *s.currentSessionID
	s.isScanning = true
	s.lastBarcode = barcode
	s.lastBarcodeAt = s.now()
	s.mu.Unlock()

	result := s.client.SubmitScan(ctx, barcode, &sessionID, s.deviceID)

	s.mu.Lock()
	s.isScanning = false
	s.mu.Unlock()
	s.recordFeedback(result)

	return result
}

// recordFeedback stores the latest outcome so the UI renders feedback
// without another round trip.
func (s *SessionStore) recordFeedback(result ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.Success && result.Status != string(ScanError) && result.Status != "error" {
		s.lastScanStatus = ScanSuccess
		s.lastScanMessage = result.Message
	} else {
		s.lastScanStatus = ScanError
		if result.Error != "" {
			s.lastScanMessage = result.Error
		} else {
			s.lastScanMessage = result.Message
		}
	}
	if result.ScanID != uuid.Nil {
		id := result.ScanID
		s.lastScanID = &id
	}
}

func (s *SessionStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentSessionID = nil
	s.isScanning = false
	s.lastScanStatus = ScanIdle
	s.lastScanMessage = ""
	s.lastScanID = nil
	s.lastBarcode = ""
	s.pendingConflict = nil
}
