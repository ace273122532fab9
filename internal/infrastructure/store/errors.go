package store

import "errors"

// Domain-specific errors for the credential store.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoRecord is returned by Load when no commissioning record has
	// been saved yet. Callers fall back to built-in defaults.
	ErrNoRecord = errors.New("store: no record")

	// ErrVersionMismatch is returned by Load when the persisted record
	// was written with an incompatible schema version. Callers fall
	// back to built-in defaults; the record is overwritten on the next
	// Save.
	ErrVersionMismatch = errors.New("store: record schema version mismatch")
)
