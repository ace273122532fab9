package telemetry

import "errors"

// Domain errors for the telemetry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, telemetry.ErrDisabled) {
//	    // telemetry turned off in config, run without a sink
//	}
var (
	// ErrDisabled is returned when telemetry is disabled in configuration.
	ErrDisabled = errors.New("telemetry: disabled")

	// ErrNotConnected is returned when the sink is not connected.
	ErrNotConnected = errors.New("telemetry: not connected")

	// ErrConnectionFailed is returned when the initial connection fails.
	ErrConnectionFailed = errors.New("telemetry: connection failed")
)
