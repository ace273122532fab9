package schema

import (
	"errors"
	"fmt"
	"testing"
)

func testSchema() Schema {
	return Schema{
		Name: "set_brightness",
		Fields: []Field{
			{Name: "value", Type: TypeInt, Required: true},
			{Name: "fade_ms", Type: TypeInt},
			{Name: "label", Type: TypeString},
			{Name: "smooth", Type: TypeBool},
			{Name: "gamma", Type: TypeFloat},
		},
	}
}

// =============================================================================
// Registration Tests
// =============================================================================

func TestRegister(t *testing.T) {
	v := NewValidator()

	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got := v.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestRegisterReplacesDuplicate(t *testing.T) {
	v := NewValidator()

	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Re-register under the same name with a different field set.
	replacement := Schema{
		Name:   "set_brightness",
		Fields: []Field{{Name: "value", Type: TypeString, Required: true}},
	}
	if err := v.Register(replacement); err != nil {
		t.Fatalf("Register() duplicate error = %v, want nil (replace)", err)
	}
	if got := v.Count(); got != 1 {
		t.Errorf("Count() = %d after replace, want 1", got)
	}

	// The replacement's type must now be in force.
	err := v.Validate("set_brightness", map[string]any{"value": float64(50)})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Validate() error = %v, want ErrValidationFailed under replaced schema", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"empty name", Schema{Name: ""}},
		{"empty field name", Schema{Name: "s", Fields: []Field{{Name: ""}}}},
		{"duplicate field", Schema{Name: "s", Fields: []Field{
			{Name: "value", Type: TypeInt},
			{Name: "value", Type: TypeString},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			err := v.Register(tt.schema)
			if !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("Register() error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestRegisterCapacity(t *testing.T) {
	v := NewValidator()

	for i := 0; i < maxSchemas; i++ {
		s := Schema{Name: fmt.Sprintf("schema-%d", i)}
		if err := v.Register(s); err != nil {
			t.Fatalf("Register() #%d error = %v", i, err)
		}
	}

	err := v.Register(Schema{Name: "one-too-many"})
	if !errors.Is(err, ErrRegistryFull) {
		t.Errorf("Register() at capacity error = %v, want ErrRegistryFull", err)
	}

	// Replacing an existing name must still succeed at capacity.
	if err := v.Register(Schema{Name: "schema-0"}); err != nil {
		t.Errorf("Register() replace at capacity error = %v, want nil", err)
	}
}

func TestRemove(t *testing.T) {
	v := NewValidator()
	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := v.Remove("set_brightness"); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if got := v.Count(); got != 0 {
		t.Errorf("Count() = %d after Remove, want 0", got)
	}

	err := v.Remove("set_brightness")
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Errorf("Remove() missing error = %v, want ErrSchemaNotFound", err)
	}
}

func TestClear(t *testing.T) {
	v := NewValidator()
	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	v.Clear()
	if got := v.Count(); got != 0 {
		t.Errorf("Count() = %d after Clear, want 0", got)
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr error
	}{
		{
			name:   "all fields valid",
			params: map[string]any{"value": float64(128), "label": "dim", "smooth": true, "gamma": 2.2},
		},
		{
			name:   "missing fields are not a type error",
			params: map[string]any{},
		},
		{
			name:   "undeclared fields ignored",
			params: map[string]any{"value": float64(1), "extra": "ignored"},
		},
		{
			name:    "int field given string",
			params:  map[string]any{"value": "128"},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "int field given fractional number",
			params:  map[string]any{"value": 12.5},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "bool field given number",
			params:  map[string]any{"smooth": float64(1)},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "string field given bool",
			params:  map[string]any{"label": false},
			wantErr: ErrValidationFailed,
		},
		{
			name:   "float field accepts integral number",
			params: map[string]any{"gamma": float64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			if err := v.Register(testSchema()); err != nil {
				t.Fatalf("Register() error = %v", err)
			}

			err := v.Validate("set_brightness", tt.params)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	v := NewValidator()

	err := v.Validate("no-such-schema", map[string]any{})
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Errorf("Validate() error = %v, want ErrSchemaNotFound", err)
	}
}

func TestRequired(t *testing.T) {
	v := NewValidator()
	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	required, err := v.Required("set_brightness")
	if err != nil {
		t.Fatalf("Required() error = %v", err)
	}
	if len(required) != 1 || required[0] != "value" {
		t.Errorf("Required() = %v, want [value]", required)
	}

	if _, err := v.Required("missing"); !errors.Is(err, ErrSchemaNotFound) {
		t.Errorf("Required() missing error = %v, want ErrSchemaNotFound", err)
	}
}

// =============================================================================
// Statistics Tests
// =============================================================================

func TestStats(t *testing.T) {
	v := NewValidator()
	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_ = v.Validate("set_brightness", map[string]any{"value": float64(1)})
	_ = v.Validate("set_brightness", map[string]any{"value": "bad"})
	_ = v.Validate("no-such-schema", nil)

	stats := v.Stats()
	if stats.TotalValidations != 3 {
		t.Errorf("TotalValidations = %d, want 3", stats.TotalValidations)
	}
	if stats.SuccessfulValidations != 1 {
		t.Errorf("SuccessfulValidations = %d, want 1", stats.SuccessfulValidations)
	}
	if stats.FailedValidations != 2 {
		t.Errorf("FailedValidations = %d, want 2", stats.FailedValidations)
	}
	if stats.SchemaCount != 1 {
		t.Errorf("SchemaCount = %d, want 1", stats.SchemaCount)
	}
	if stats.LastValidation.IsZero() {
		t.Error("LastValidation is zero, want timestamp")
	}
}

func TestResetStats(t *testing.T) {
	v := NewValidator()
	if err := v.Register(testSchema()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_ = v.Validate("set_brightness", map[string]any{"value": float64(1)})

	v.ResetStats()

	stats := v.Stats()
	if stats.TotalValidations != 0 || stats.SuccessfulValidations != 0 || stats.FailedValidations != 0 {
		t.Errorf("Stats() after reset = %+v, want zeroed counters", stats)
	}
	if stats.SchemaCount != 1 {
		t.Errorf("SchemaCount = %d after reset, want 1 (definitions preserved)", stats.SchemaCount)
	}
}
