package command

import "time"

// Configuration limits. The registry and per-message bounds mirror the
// device's fixed command surface; exceeding them indicates a wiring bug,
// not load.
const (
	maxCommands    = 16
	maxNameLen     = 32
	maxParams      = 8
	maxResponseLen = 512
)

// Result classifies the outcome of a command execution attempt.
type Result int

const (
	// ResultSuccess indicates the handler completed successfully.
	ResultSuccess Result = iota

	// ResultInvalidParams indicates a required parameter was absent, or
	// the handler rejected the parameter values.
	ResultInvalidParams

	// ResultExecutionFailed indicates the handler ran but the operation failed.
	ResultExecutionFailed

	// ResultNotFound indicates the command name is not registered.
	ResultNotFound

	// ResultSchemaInvalid indicates the payload could not be parsed or
	// failed schema validation.
	ResultSchemaInvalid

	// ResultSystemError indicates an internal fault such as a handler panic.
	ResultSystemError
)

// String returns a stable label used in responses and logs.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultInvalidParams:
		return "invalid_params"
	case ResultExecutionFailed:
		return "execution_failed"
	case ResultNotFound:
		return "not_found"
	case ResultSchemaInvalid:
		return "schema_invalid"
	case ResultSystemError:
		return "system_error"
	default:
		return "unknown"
	}
}

// Handler executes a resolved command. It reads parameters from the
// context, writes its outcome into the context's response buffer, and
// returns a Result. Handlers run inline in the broker event context and
// must be fast and non-blocking.
type Handler func(ctx *Context) Result

// Definition binds a command name to its handler and schema.
//
// Counters are owned by the dispatcher and advance on every execution
// attempt for the command, including failed ones.
type Definition struct {
	Name        string
	Description string
	SchemaName  string
	Handler     Handler
	Enabled     bool

	ExecutionCount uint64
	SuccessCount   uint64
	FailureCount   uint64
	LastExecution  time.Time
}

// Stats is a point-in-time snapshot of dispatcher-wide activity.
type Stats struct {
	TotalProcessed     uint64
	Successful         uint64
	Failed             uint64
	ValidationFailures uint64
	NotFound           uint64
	RegisteredCommands int
	LastCommand        time.Time
}

// Validator checks parsed command parameters against a named schema.
// The dispatcher depends only on this interface, not on a concrete
// parser implementation.
type Validator interface {
	// Validate reports a type error for any present parameter that does
	// not match the schema. Absent parameters are not an error here.
	Validate(schema string, params map[string]any) error

	// Required returns the parameter names the schema marks required.
	Required(schema string) ([]string, error)
}

// Logger defines the logging interface used by the Dispatcher.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
