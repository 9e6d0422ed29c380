package scanclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return New(Options{BaseURL: server.URL, Token: "test-token"})
}

func TestSubmitScanSuccess(t *testing.T) {
	scanID := uuid.New()
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/scan", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		name := "Steel Bolt M8"
		json.NewEncoder(w).Encode(scanResponseBody{
			Success:      true,
			ScanID:       scanID,
			Status:       "success",
			ResolvedName: &name,
			Message:      "material resolved",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	sessionID := uuid.New()
	result := client.SubmitScan(context.Background(), "MAT-001", &sessionID, "tablet-7")

	assert.True(t, result.Success)
	assert.Equal(t, scanID, result.ScanID)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "Steel Bolt M8", result.ResolvedName)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "MAT-001", gotBody["barcode"])
	assert.Equal(t, "tablet-7", gotBody["device_id"])
	assert.Equal(t, sessionID.String(), gotBody["session_id"])
}

func TestSubmitScanServerErrorSurfacesVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ackResponseBody{
			Success: false,
			Error:   "session is already ended",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	result := client.SubmitScan(context.Background(), "MAT-001", nil, "tablet-7")

	assert.False(t, result.Success)
	assert.Equal(t, "session is already ended", result.Error)
}

func TestSubmitScanNetworkFailureIsUniform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server)
	result := client.SubmitScan(context.Background(), "MAT-001", nil, "tablet-7")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "network error")
}

func TestSubmitScanTimeoutIsUniform(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := New(Options{BaseURL: server.URL, Token: "t", Timeout: 20 * time.Millisecond})
	result := client.SubmitScan(context.Background(), "MAT-001", nil, "tablet-7")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "network error")
}

func TestSubmitScanMalformedResponseIsUniform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	client := newTestClient(server)
	result := client.SubmitScan(context.Background(), "MAT-001", nil, "tablet-7")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "network error")
}

func TestStartSessionSuccess(t *testing.T) {
	session := SessionInfo{
		ID:        uuid.New(),
		Name:      "Stocktake 2026-08-29 10:30",
		DeviceID:  "tablet-7",
		Status:    "in_progress",
		StartedAt: time.Now().UTC(),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/sessions/start", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(startResponseBody{Success: true, Session: &session})
	}))
	defer server.Close()

	client := newTestClient(server)
	result := client.StartSession(context.Background(), "tablet-7", nil)

	assert.True(t, result.Success)
	require.NotNil(t, result.Session)
	assert.Equal(t, session.ID, result.Session.ID)
	assert.Nil(t, result.ConflictSessionID)
}

func TestStartSessionConflict(t *testing.T) {
	blocking := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(startResponseBody{
			Success:           false,
			ConflictSessionID: &blocking,
			Error:             "another session is already in progress for this device",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	result := client.StartSession(context.Background(), "tablet-7", nil)

	assert.False(t, result.Success)
	require.NotNil(t, result.ConflictSessionID)
	assert.Equal(t, blocking, *result.ConflictSessionID)
	assert.Equal(t, "another session is already in progress for this device", result.Error)
}

func TestEndSessionSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/sessions/end", r.URL.Path)
		json.NewEncoder(w).Encode(ackResponseBody{Success: true})
	}))
	defer server.Close()

	client := newTestClient(server)
	ack := client.EndSession(context.Background(), uuid.New())

	assert.True(t, ack.Success)
	assert.Empty(t, ack.Error)
}

func TestGetActiveSessionNoneIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "tablet-7", r.URL.Query().Get("device_id"))
		json.NewEncoder(w).Encode(activeResponseBody{Success: true, Session: nil})
	}))
	defer server.Close()

	client := newTestClient(server)
	result := client.GetActiveSession(context.Background(), "tablet-7")

	assert.True(t, result.Success)
	assert.Nil(t, result.Session)
}
