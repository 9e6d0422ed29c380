package scanclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanServer is a minimal stocktake API double that counts requests per
// endpoint and lets tests script the responses.
type scanServer struct {
	t *testing.T

	mu         sync.Mutex
	scanPosts  int
	endPosts   int
	startPosts int

	failEnd   bool
	sessionID uuid.UUID
}

func newScanServer(t *testing.T) (*scanServer, *httptest.Server) {
	s := &scanServer{t: t, sessionID: uuid.New()}
	server := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(server.Close)
	return s, server
}

func (s *scanServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.URL.Path {
	case "/api/v1/scan":
		s.scanPosts++
		json.NewEncoder(w).Encode(scanResponseBody{
			Success: true,
			ScanID:  uuid.New(),
			Status:  "success",
			Message: "material resolved",
		})
	case "/api/v1/sessions/start":
		s.startPosts++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(startResponseBody{
			Success: true,
			Session: &SessionInfo{
				ID:        s.sessionID,
				DeviceID:  "tablet-7",
				Status:    "in_progress",
				StartedAt: time.Now().UTC(),
			},
		})
	case "/api/v1/sessions/end":
		s.endPosts++
		if s.failEnd {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ackResponseBody{Success: false, Error: "database unavailable"})
			return
		}
		json.NewEncoder(w).Encode(ackResponseBody{Success: true})
	case "/api/v1/sessions/active":
		json.NewEncoder(w).Encode(activeResponseBody{
			Success: true,
			Session: &SessionInfo{ID: s.sessionID, DeviceID: "tablet-7", Status: "in_progress"},
		})
	default:
		s.t.Fatalf("unexpected request path %s", r.URL.Path)
	}
}

func (s *scanServer) counts() (scans, starts, ends int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanPosts, s.startPosts, s.endPosts
}

func newTestStore(server *httptest.Server, opts StoreOptions) *SessionStore {
	if opts.DeviceID == "" {
		opts.DeviceID = "tablet-7"
	}
	client := New(Options{BaseURL: server.URL, Token: "test-token"})
	return NewSessionStore(client, opts)
}

func TestHandleScanDebouncesDuplicateReads(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{DebounceWindow: time.Second})

	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.True(t, store.StartStocktakeSession(context.Background()).Started)

	first := store.HandleScan(context.Background(), "MAT-001")
	assert.True(t, first.Success)
	assert.Equal(t, "success", first.Status)

	// Same label re-read inside the window never reaches the network.
	second := store.HandleScan(context.Background(), "MAT-001")
	assert.True(t, second.Success)
	assert.Equal(t, "ignored", second.Status)

	scans, _, _ := api.counts()
	assert.Equal(t, 1, scans)
}

func TestHandleScanDifferentBarcodeBypassesDebounce(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{DebounceWindow: time.Second})

	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.True(t, store.StartStocktakeSession(context.Background()).Started)

	store.HandleScan(context.Background(), "MAT-001")
	result := store.HandleScan(context.Background(), "MAT-002")
	assert.Equal(t, "success", result.Status)

	scans, _, _ := api.counts()
	assert.Equal(t, 2, scans)
}

func TestHandleScanSameBarcodeAfterWindowSubmits(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{DebounceWindow: time.Second})

	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.True(t, store.StartStocktakeSession(context.Background()).Started)

	store.HandleScan(context.Background(), "MAT-001")
	clock = clock.Add(1500 * time.Millisecond)
	result := store.HandleScan(context.Background(), "MAT-001")
	assert.Equal(t, "success", result.Status)

	scans, _, _ := api.counts()
	assert.Equal(t, 2, scans)
}

func TestHandleScanWithoutSessionFailsLocally(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{})

	result := store.HandleScan(context.Background(), "MAT-001")

	assert.False(t, result.Success)
	assert.Equal(t, "no active stocktake session", result.Error)

	scans, _, _ := api.counts()
	assert.Equal(t, 0, scans)

	snap := store.Snapshot()
	assert.Equal(t, ScanError, snap.LastScanStatus)
	assert.Equal(t, "no active stocktake session", snap.LastScanMessage)
}

func TestHandleScanRejectsConcurrentSubmission(t *testing.T) {
	release := make(chan struct{})
	var scanPosts atomic.Int32
	sessionID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sessions/start":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(startResponseBody{
				Success: true,
				Session: &SessionInfo{ID: sessionID, DeviceID: "tablet-7", Status: "in_progress"},
			})
		case "/api/v1/scan":
			scanPosts.Add(1)
			<-release
			json.NewEncoder(w).Encode(scanResponseBody{Success: true, ScanID: uuid.New(), Status: "success"})
		}
	}))
	t.Cleanup(server.Close)

	store := newTestStore(server, StoreOptions{})
	require.True(t, store.StartStocktakeSession(context.Background()).Started)

	inFlight := make(chan ScanResult, 1)
	go func() {
		inFlight <- store.HandleScan(context.Background(), "MAT-001")
	}()

	// Wait until the first scan is blocked inside the server handler.
	require.Eventually(t, func() bool { return scanPosts.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := store.HandleScan(context.Background(), "MAT-002")
	assert.False(t, second.Success)
	assert.Equal(t, "scan already in progress", second.Error)

	close(release)
	first := <-inFlight
	assert.True(t, first.Success)
	assert.Equal(t, int32(1), scanPosts.Load())
}

func TestEndSessionRetriesThenClearsLocalState(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{EndRetries: 3})

	require.True(t, store.StartStocktakeSession(context.Background()).Started)

	api.mu.Lock()
	api.failEnd = true
	api.mu.Unlock()

	ack := store.EndStocktakeSession(context.Background())

	assert.False(t, ack.Success)
	assert.Equal(t, "database unavailable", ack.Error)

	_, _, ends := api.counts()
	assert.Equal(t, 3, ends)

	// Local state clears even when the server never confirmed, so the
	// device does not stay stuck in a dead session.
	snap := store.Snapshot()
	assert.Nil(t, snap.CurrentSessionID)
}

func TestEndSessionWithoutSessionIsNoOp(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{})

	ack := store.EndStocktakeSession(context.Background())

	assert.True(t, ack.Success)
	_, _, ends := api.counts()
	assert.Equal(t, 0, ends)
}

func TestResolveConflictEndsBlockingSessionThenStarts(t *testing.T) {
	blocking := uuid.New()
	fresh := uuid.New()
	var endedID uuid.UUID
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/api/v1/sessions/start":
			if endedID == uuid.Nil {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(startResponseBody{
					Success:           false,
					ConflictSessionID: &blocking,
					Error:             "another session is already in progress for this device",
				})
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(startResponseBody{
				Success: true,
				Session: &SessionInfo{ID: fresh, DeviceID: "tablet-7", Status: "in_progress"},
			})
		case "/api/v1/sessions/end":
			var body struct {
				SessionID uuid.UUID `json:"session_id"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			endedID = body.SessionID
			json.NewEncoder(w).Encode(ackResponseBody{Success: true})
		}
	}))
	t.Cleanup(server.Close)

	store := newTestStore(server, StoreOptions{})

	outcome := store.StartStocktakeSession(context.Background())
	assert.False(t, outcome.Started)
	require.NotNil(t, outcome.Conflict)
	assert.Equal(t, blocking, *outcome.Conflict)

	resolved := store.ResolveConflict(context.Background())
	assert.True(t, resolved.Started)

	mu.Lock()
	assert.Equal(t, blocking, endedID)
	mu.Unlock()

	snap := store.Snapshot()
	require.NotNil(t, snap.CurrentSessionID)
	assert.Equal(t, fresh, *snap.CurrentSessionID)
}

func TestResolveConflictWithoutPendingConflict(t *testing.T) {
	_, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{})

	outcome := store.ResolveConflict(context.Background())

	assert.False(t, outcome.Started)
	assert.Equal(t, "no pending session conflict to resolve", outcome.Error)
}

func TestRehydrateRecoversActiveSession(t *testing.T) {
	api, server := newScanServer(t)
	store := newTestStore(server, StoreOptions{})

	ack := store.Rehydrate(context.Background())

	assert.True(t, ack.Success)
	snap := store.Snapshot()
	require.NotNil(t, snap.CurrentSessionID)
	assert.Equal(t, api.sessionID, *snap.CurrentSessionID)
}
