package bootstrap

import "errors"

// Errors returned by the public API; check with errors.Is.
var (
	// ErrConnectTimeout is returned when no association completed within
	// the configured timeout across all attempts.
	ErrConnectTimeout = errors.New("warmboot: connect timeout")

	// ErrInvalidConfig is returned when controller configuration
	// validation fails.
	ErrInvalidConfig = errors.New("warmboot: invalid configuration")
)
