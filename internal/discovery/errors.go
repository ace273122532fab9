package discovery

import "errors"

// Domain errors for the discovery package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, discovery.ErrDisabled) {
//	    // discovery turned off in config, nothing to announce
//	}
var (
	// ErrDisabled is returned when discovery is disabled in configuration.
	ErrDisabled = errors.New("discovery: disabled")

	// ErrInvalidEntity is returned when an entity lacks a component or
	// object identifier.
	ErrInvalidEntity = errors.New("discovery: invalid entity")
)
