package session

import "errors"

// Domain errors for the session package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, session.ErrQueueFull) {
//	    // drop and re-derive later if still relevant
//	}
var (
	// ErrQueueFull is returned when the publish queue is at capacity.
	// The message is dropped, not retried; producers may re-derive and
	// resubmit later if the data is still relevant.
	ErrQueueFull = errors.New("session: publish queue full")

	// ErrNotInitialized is returned when using a Manager before Init.
	ErrNotInitialized = errors.New("session: not initialized")

	// ErrPublishFailed is returned by PublishSync when the transmit fails.
	ErrPublishFailed = errors.New("session: publish failed")
)
