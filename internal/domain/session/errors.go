package session

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionEnded     = errors.New("session has already ended")
	ErrSessionConflict  = errors.New("device already has a session in progress")
	ErrInvariantBroken  = errors.New("multiple in-progress sessions for one device")
	ErrInvalidStatus    = errors.New("invalid session status")
	ErrInvalidDeviceID  = errors.New("device id is required")
	ErrSessionNotActive = errors.New("session is not in progress")
)
