package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a snapshot or snapshot entry is missing.
	ErrNotFound = errors.New("snapshot not found")
)
