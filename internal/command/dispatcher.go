package command

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// envelope is the wire shape of an inbound command payload.
type envelope struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters"`
}

// Dispatcher routes inbound command payloads to registered handlers.
//
// The registry, its per-definition counters, and the dispatcher-wide
// statistics all mutate under a single mutex. Execute holds that mutex
// across the full pipeline, including the handler call, to keep the
// counter updates linearizable with respect to concurrent executes.
// Handlers must therefore not call back into the dispatcher.
type Dispatcher struct {
	mu        sync.Mutex
	commands  map[string]*Definition
	validator Validator
	stats     Stats
	logger    Logger
}

// NewDispatcher creates a dispatcher that validates parameters through
// the given validator.
func NewDispatcher(validator Validator) *Dispatcher {
	return &Dispatcher{
		commands:  make(map[string]*Definition, maxCommands),
		validator: validator,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// Register inserts a command definition with counters at zero.
//
// Registration is rejected when the registry is at capacity or the name
// is already present. An existing definition is never altered by a
// rejected registration.
//
// Returns:
//   - error: ErrInvalidDefinition, ErrRegistryFull, or ErrDuplicateCommand
func (d *Dispatcher) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if len(def.Name) > maxNameLen {
		return fmt.Errorf("%w: name %q exceeds %d characters", ErrInvalidDefinition, def.Name, maxNameLen)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidDefinition, def.Name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.commands[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, def.Name)
	}
	if len(d.commands) >= maxCommands {
		return fmt.Errorf("%w: %d commands registered", ErrRegistryFull, maxCommands)
	}

	def.Enabled = true
	def.ExecutionCount = 0
	def.SuccessCount = 0
	def.FailureCount = 0
	def.LastExecution = time.Time{}
	d.commands[def.Name] = &def

	d.logger.Info("command registered", "name", def.Name, "schema", def.SchemaName)
	return nil
}

// Remove deletes a command by name.
func (d *Dispatcher) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.commands[name]; !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	delete(d.commands, name)
	d.logger.Info("command removed", "name", name)
	return nil
}

// Clear removes all registered commands. Statistics are preserved.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = make(map[string]*Definition, maxCommands)
}

// SetEnabled toggles a command without removing its definition.
// Disabled commands resolve as not found.
func (d *Dispatcher) SetEnabled(name string, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	def, ok := d.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	def.Enabled = enabled
	return nil
}

// Count returns the number of registered commands.
func (d *Dispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.commands)
}

// Commands returns a snapshot copy of all registered definitions.
func (d *Dispatcher) Commands() []Definition {
	d.mu.Lock()
	defer d.mu.Unlock()

	defs := make([]Definition, 0, len(d.commands))
	for _, def := range d.commands {
		defs = append(defs, *def)
	}
	return defs
}

// Command returns a snapshot copy of a single definition.
func (d *Dispatcher) Command(name string) (Definition, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	def, ok := d.commands[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return *def, nil
}

// Execute runs the full command pipeline for an inbound payload and
// returns the result together with the bounded response text.
//
// Execute never returns an error; every failure mode maps to a Result
// and a response so the caller can always answer the sender.
func (d *Dispatcher) Execute(topic string, payload []byte) (Result, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.TotalProcessed++
	d.stats.LastCommand = time.Now()

	// Step 1: parse. A payload that is not valid JSON never resolves a
	// command, so no per-definition counters advance.
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		d.stats.Failed++
		d.logger.Warn("command payload parse failed", "topic", topic, "error", err)
		return ResultSchemaInvalid, "invalid payload: not a JSON command envelope"
	}

	// Step 2: resolve.
	def, ok := d.commands[env.Command]
	if env.Command == "" || !ok || !def.Enabled {
		d.stats.Failed++
		d.stats.NotFound++
		d.logger.Warn("command not found", "name", env.Command, "topic", topic)
		return ResultNotFound, fmt.Sprintf("unknown command: %q", env.Command)
	}

	result, response := d.run(def, topic, payload, env.Parameters)

	// Step 6: per-definition and aggregate counters advance on every
	// attempt for a resolved command, success or not.
	def.ExecutionCount++
	def.LastExecution = time.Now()
	if result == ResultSuccess {
		def.SuccessCount++
		d.stats.Successful++
	} else {
		def.FailureCount++
		d.stats.Failed++
	}

	return result, response
}

// run performs steps 3 to 5 of the pipeline for a resolved command.
// A definition without a schema name skips validation entirely; not
// every command takes parameters.
func (d *Dispatcher) run(def *Definition, topic string, payload []byte, params map[string]any) (result Result, response string) {
	// Step 3: schema validation.
	if def.SchemaName != "" {
		if err := d.validator.Validate(def.SchemaName, params); err != nil {
			d.stats.ValidationFailures++
			d.logger.Warn("schema validation failed", "command", def.Name, "error", err)
			return ResultSchemaInvalid, fmt.Sprintf("schema validation failed: %v", err)
		}
	}

	// Step 4: extract parameters, enforcing requiredness before the
	// handler can run.
	ctx := &Context{
		CommandName: def.Name,
		Topic:       topic,
		RawPayload:  payload,
	}

	var required []string
	if def.SchemaName != "" {
		var err error
		required, err = d.validator.Required(def.SchemaName)
		if err != nil {
			return ResultSystemError, fmt.Sprintf("schema lookup failed: %v", err)
		}
	}
	for _, name := range required {
		if _, present := params[name]; !present {
			d.logger.Warn("required parameter missing", "command", def.Name, "parameter", name)
			return ResultInvalidParams, fmt.Sprintf("missing required parameter: %q", name)
		}
	}

	requiredSet := make(map[string]bool, len(required))
	for _, name := range required {
		requiredSet[name] = true
	}
	for name, value := range params {
		if len(ctx.params) >= maxParams {
			d.logger.Warn("parameter limit reached", "command", def.Name, "limit", maxParams)
			break
		}
		ctx.params = append(ctx.params, Param{
			Name:     name,
			Value:    value,
			Required: requiredSet[name],
		})
	}

	// Step 5: invoke the handler. A panic maps to a system error rather
	// than taking down the broker event loop.
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panic", "command", def.Name, "panic", r)
			result = ResultSystemError
			response = "internal error"
		}
	}()

	result = def.Handler(ctx)
	response = ctx.Response()
	if response == "" {
		response = fmt.Sprintf("%s: %s", def.Name, result)
	}
	return result, response
}

// Stats returns a point-in-time snapshot of dispatcher activity.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := d.stats
	snapshot.RegisteredCommands = len(d.commands)
	return snapshot
}

// ResetStats zeroes the aggregate counters and every definition's
// execution counters without altering the registered definitions.
func (d *Dispatcher) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats = Stats{}
	for _, def := range d.commands {
		def.ExecutionCount = 0
		def.SuccessCount = 0
		def.FailureCount = 0
		def.LastExecution = time.Time{}
	}
}
