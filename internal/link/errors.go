package link

import "errors"

// Domain errors for the link package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, link.ErrNoCredentials) {
//	    // fall back to provisioning mode
//	}
var (
	// ErrNoCredentials is returned when Start is called without link credentials.
	ErrNoCredentials = errors.New("link: no credentials")

	// ErrAlreadyStarted is returned when Start is called on a running machine.
	ErrAlreadyStarted = errors.New("link: already started")

	// ErrStartTimeout is returned when Start's bounded wait elapses before
	// the machine settles. The underlying attempt continues asynchronously.
	ErrStartTimeout = errors.New("link: start timeout")

	// ErrRetriesExhausted is returned when the retry budget is spent and
	// the machine has entered the terminal Failed state.
	ErrRetriesExhausted = errors.New("link: retries exhausted")
)
