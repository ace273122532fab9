package command

import "errors"

// Domain errors for the command package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, command.ErrDuplicateCommand) {
//	    // handle duplicate registration
//	}
var (
	// ErrRegistryFull is returned when registering beyond the command capacity.
	ErrRegistryFull = errors.New("command: registry full")

	// ErrDuplicateCommand is returned when a command name is already registered.
	ErrDuplicateCommand = errors.New("command: already registered")

	// ErrCommandNotFound is returned when removing a name that is not registered.
	ErrCommandNotFound = errors.New("command: not found")

	// ErrInvalidDefinition is returned when a definition is malformed.
	ErrInvalidDefinition = errors.New("command: invalid definition")
)
