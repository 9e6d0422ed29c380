package scan

import "errors"

var (
	ErrEventNotFound  = errors.New("scan event not found")
	ErrEmptyBarcode   = errors.New("barcode is required")
	ErrNoSession      = errors.New("no active session for scan")
	ErrSessionEnded   = errors.New("scan rejected: session has ended")
	ErrInvalidPayload = errors.New("invalid scan payload")
)
