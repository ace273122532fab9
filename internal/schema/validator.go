package schema

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// maxSchemas bounds the registry. The device registers a fixed command
// set at startup, so hitting this cap indicates a wiring bug.
const maxSchemas = 32

// FieldType identifies the expected JSON type of a parameter.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeFloat
	TypeBool
)

// String returns a human-readable type name for error messages.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Field declares a single parameter a schema accepts.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Schema is a named set of field declarations bound to a command.
type Schema struct {
	Name   string
	Fields []Field
}

// Stats is a point-in-time snapshot of validator activity.
type Stats struct {
	TotalValidations      uint64
	SuccessfulValidations uint64
	FailedValidations     uint64
	SchemaCount           int
	LastValidation        time.Time
}

// Validator holds the schema registry and validation statistics.
//
// All public methods are thread-safe.
type Validator struct {
	mu      sync.Mutex
	schemas map[string]Schema
	stats   Stats
}

// NewValidator creates an empty schema validator.
func NewValidator() *Validator {
	return &Validator{
		schemas: make(map[string]Schema, maxSchemas),
	}
}

// Register adds a schema to the registry. Registering a name that
// already exists replaces the previous definition; the capacity check
// applies to new names only.
//
// Returns:
//   - error: ErrInvalidSchema for a malformed definition,
//     ErrRegistryFull when the registry is at capacity
func (v *Validator) Register(s Schema) error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: schema %q has a field with an empty name", ErrInvalidSchema, s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: schema %q declares field %q twice", ErrInvalidSchema, s.Name, f.Name)
		}
		seen[f.Name] = true
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.schemas[s.Name]; !exists && len(v.schemas) >= maxSchemas {
		return fmt.Errorf("%w: %d schemas registered", ErrRegistryFull, maxSchemas)
	}

	v.schemas[s.Name] = s
	return nil
}

// Remove deletes a schema by name.
func (v *Validator) Remove(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.schemas[name]; !ok {
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	delete(v.schemas, name)
	return nil
}

// Clear removes all registered schemas. Statistics are preserved.
func (v *Validator) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas = make(map[string]Schema, maxSchemas)
}

// Count returns the number of registered schemas.
func (v *Validator) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.schemas)
}

// Validate checks a parsed parameter map against the named schema.
//
// Every field present in params that the schema declares must match the
// declared type. Missing fields are not an error here; requiredness is
// enforced by the dispatcher during parameter extraction. Fields the
// schema does not declare are ignored.
//
// Returns:
//   - error: ErrSchemaNotFound for an unregistered name, or
//     ErrValidationFailed wrapping a description of the first mismatch
func (v *Validator) Validate(name string, params map[string]any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stats.TotalValidations++
	v.stats.LastValidation = time.Now()

	s, ok := v.schemas[name]
	if !ok {
		v.stats.FailedValidations++
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}

	for _, f := range s.Fields {
		value, present := params[f.Name]
		if !present {
			continue
		}
		if err := checkType(f, value); err != nil {
			v.stats.FailedValidations++
			return err
		}
	}

	v.stats.SuccessfulValidations++
	return nil
}

// Required returns the names of the parameters the named schema marks
// required, in declaration order.
func (v *Validator) Required(name string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}

	var required []string
	for _, f := range s.Fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required, nil
}

// Stats returns a point-in-time snapshot of validation activity.
func (v *Validator) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()

	snapshot := v.stats
	snapshot.SchemaCount = len(v.schemas)
	return snapshot
}

// ResetStats zeroes the counters without altering registered schemas.
func (v *Validator) ResetStats() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = Stats{}
}

// checkType verifies a decoded JSON value against a field declaration.
// JSON numbers decode as float64, so integer fields accept any float64
// with no fractional part.
func checkType(f Field, value any) error {
	switch f.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return typeError(f, value)
		}
	case TypeInt:
		n, ok := value.(float64)
		if !ok || n != math.Trunc(n) {
			return typeError(f, value)
		}
	case TypeFloat:
		if _, ok := value.(float64); !ok {
			return typeError(f, value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return typeError(f, value)
		}
	}
	return nil
}

func typeError(f Field, value any) error {
	return fmt.Errorf("%w: parameter %q: expected %s, got %T", ErrValidationFailed, f.Name, f.Type, value)
}
