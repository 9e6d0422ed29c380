package scanclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client is the device-side transport for the stocktake API. Every call
// returns a result value instead of an error: transport failures,
// timeouts and malformed responses are normalized into Success=false with
// a NETWORK_ERROR style message, so UI code has exactly one failure
// branch to handle.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Timeout bounds each request. A timed-out request reports the same
	// uniform failure as any other transport error.
	Timeout time.Duration
}

const defaultTimeout = 10 * time.Second

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: opts.BaseURL,
		token:   opts.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// ScanResult is the uniform outcome of one scan submission.
type ScanResult struct {
	Success      bool
	ScanID       uuid.UUID
	Status       string
	ResolvedName string
	Message      string
	Error        string
}

// SessionInfo mirrors the server's session payload.
type SessionInfo struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	DeviceID  string     `json:"device_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// StartSessionResult is the tagged outcome of a start request.
type StartSessionResult struct {
	Success           bool
	Session           *SessionInfo
	ConflictSessionID *uuid.UUID
	Error             string
}

// Ack is the uniform outcome of requests that only succeed or fail.
type Ack struct {
	Success bool
	Error   string
}

// ActiveSessionResult reports the device's current session; Session is
// nil when none is active, which is a successful answer.
type ActiveSessionResult struct {
	Success bool
	Session *SessionInfo
	Error   string
}

type scanResponseBody struct {
	Success      bool      `json:"success"`
	ScanID       uuid.UUID `json:"scan_id"`
	Status       string    `json:"status"`
	ResolvedName *string   `json:"resolved_name"`
	Message      string    `json:"message"`
	Error        string    `json:"error"`
}

type startResponseBody struct {
	Success           bool         `json:"success"`
	Session           *SessionInfo `json:"session"`
	ConflictSessionID *uuid.UUID   `json:"conflict_session_id"`
	Error             string       `json:"error"`
}

type ackResponseBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type activeResponseBody struct {
	Success bool         `json:"success"`
	Session *SessionInfo `json:"session"`
	Error   string       `json:"error"`
}

// SubmitScan posts one barcode read against a session.
func (c *Client) SubmitScan(ctx context.Context, barcode string, sessionID *uuid.UUID, deviceID string) ScanResult {
	payload := map[string]interface{}{
		"barcode":   barcode,
		"device_id": deviceID,
	}
	if sessionID != nil {
		payload["session_id"] = sessionID
	}

	var body scanResponseBody
	if err := c.post(ctx, "/api/v1/scan", payload, &body); err != "" {
		return ScanResult{Success: false, Error: err}
	}

	if !body.Success {
		return ScanResult{Success: false, Error: serverError(body.Error)}
	}

	result := ScanResult{
		Success: true,
		ScanID:  body.ScanID,
		Status:  body.Status,
		Message: body.Message,
	}
	if body.ResolvedName != nil {
		result.ResolvedName = *body.ResolvedName
	}
	return result
}

// StartSession asks the server to open a session for the device. A
// conflict is reported with the blocking session's id so the caller can
// decide whether to end it and retry.
func (c *Client) StartSession(ctx context.Context, deviceID string, location *string) StartSessionResult {
	payload := map[string]interface{}{"device_id": deviceID}
	if location != nil {
		payload["location"] = *location
	}

	var body startResponseBody
	if err := c.post(ctx, "/api/v1/sessions/start", payload, &body); err != "" {
		return StartSessionResult{Success: false, Error: err}
	}

	if body.ConflictSessionID != nil {
		return StartSessionResult{
			Success:           false,
			ConflictSessionID: body.ConflictSessionID,
			Error:             serverError(body.Error),
		}
	}
	if !body.Success || body.Session == nil {
		return StartSessionResult{Success: false, Error: serverError(body.Error)}
	}

	return StartSessionResult{Success: true, Session: body.Session}
}

// EndSession ends a session; the server treats repeats as success.
func (c *Client) EndSession(ctx context.Context, sessionID uuid.UUID) Ack {
	payload := map[string]interface{}{"session_id": sessionID}

	var body ackResponseBody
	if err := c.post(ctx, "/api/v1/sessions/end", payload, &body); err != "" {
		return Ack{Success: false, Error: err}
	}
	if !body.Success {
		return Ack{Success: false, Error: serverError(body.Error)}
	}
	return Ack{Success: true}
}

// GetActiveSession fetches the device's in-progress session, used to
// recover local state after an app restart or reconnect.
func (c *Client) GetActiveSession(ctx context.Context, deviceID string) ActiveSessionResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/sessions/active?device_id="+deviceID, nil)
	if err != nil {
		return ActiveSessionResult{Success: false, Error: networkError(err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return ActiveSessionResult{Success: false, Error: networkError(err)}
	}
	defer resp.Body.Close()

	var body activeResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ActiveSessionResult{Success: false, Error: networkError(err)}
	}
	if !body.Success {
		return ActiveSessionResult{Success: false, Error: serverError(body.Error)}
	}

	return ActiveSessionResult{Success: true, Session: body.Session}
}

// post sends a JSON request and decodes the response envelope into out.
// It returns a non-empty error message for any transport-level failure;
// HTTP error statuses are not transport failures, their body is decoded
// so the server's message reaches the caller verbatim.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return networkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return networkError(err)
	}

	return ""
}

func networkError(err error) string {
	return fmt.Sprintf("network error: %v", err)
}

func serverError(message string) string {
	if message != "" {
		return message
	}
	return "request failed"
}
