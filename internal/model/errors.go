package model

import "errors"

var (
	// ErrNotFound is returned by stores when a job or candidate id is absent.
	// It is the only error that aborts a scoring request.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks empty or malformed inputs that are degraded with defaults.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOracleUnavailable marks a failed or timed out similarity call.
	ErrOracleUnavailable = errors.New("similarity oracle unavailable")
	// ErrInsufficientHistory marks a context with too few historical outcomes to trust.
	ErrInsufficientHistory = errors.New("insufficient history")
)
