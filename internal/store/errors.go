package store

import "errors"

var (
	// ErrNotFound is returned when no alumni record has the requested identifier.
	ErrNotFound = errors.New("alumni record not found")
	// ErrUnavailable wraps failures of the backing store itself.
	ErrUnavailable = errors.New("store unavailable")
)
