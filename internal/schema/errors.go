package schema

import "errors"

// Domain errors for the schema package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, schema.ErrSchemaNotFound) {
//	    // handle unknown schema
//	}
var (
	// ErrRegistryFull is returned when registering beyond the schema capacity.
	ErrRegistryFull = errors.New("schema: registry full")

	// ErrSchemaNotFound is returned when a schema name is not registered.
	ErrSchemaNotFound = errors.New("schema: not found")

	// ErrInvalidSchema is returned when a schema definition is malformed.
	ErrInvalidSchema = errors.New("schema: invalid definition")

	// ErrValidationFailed is returned when a payload does not match its schema.
	ErrValidationFailed = errors.New("schema: validation failed")
)
