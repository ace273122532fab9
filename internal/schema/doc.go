// Package schema provides payload validation for inbound remote commands.
//
// A Validator holds a bounded registry of named schemas. Each schema
// declares the typed fields a command's parameter object may carry and
// which of them are required. The command dispatcher consults the
// validator before any handler runs, so handlers never see parameters
// of the wrong type.
//
// # Key Types
//
//   - Schema: Named set of typed field declarations
//   - Field: Single parameter declaration (name, type, required flag)
//   - Validator: Thread-safe registry with validation statistics
//
// # Thread Safety
//
// Validator is safe for concurrent use. Registration and validation
// serialise through a single mutex.
//
// # Usage
//
//	v := schema.NewValidator()
//	v.Register(schema.Schema{
//	    Name: "set_brightness",
//	    Fields: []schema.Field{
//	        {Name: "value", Type: schema.TypeInt, Required: true},
//	        {Name: "fade_ms", Type: schema.TypeInt},
//	    },
//	})
//
//	err := v.Validate("set_brightness", params)
package schema
