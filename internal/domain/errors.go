package domain

import "errors"

// Sentinel errors for the API error taxonomy. Services wrap these with
// fmt.Errorf("...: %w", Err...) so handlers can map them to HTTP statuses
// with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrInvalidRange = errors.New("invalid date range")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrGateway      = errors.New("payment gateway error")
)
