// Package command implements the structured command dispatcher.
//
// Inbound broker messages carry a JSON envelope naming a command and
// its parameters. The dispatcher resolves the command in a bounded
// registry, validates the parameters against the command's schema,
// extracts them into an execution context, and invokes the registered
// handler. Every attempt produces a structured Result and a bounded
// response string, so no command goes unanswered.
//
// # Execution Pipeline
//
//	1. Parse payload      → ResultSchemaInvalid on malformed JSON
//	2. Resolve command    → ResultNotFound if unregistered
//	3. Validate schema    → ResultSchemaInvalid on type mismatch;
//	                        skipped for commands with no schema bound
//	4. Extract parameters → ResultInvalidParams if a required one is absent
//	5. Invoke handler     → handler's own Result
//	6. Update statistics  → unconditionally, including failures
//
// # Thread Safety
//
// All Dispatcher methods are safe for concurrent use. Execute runs
// inline in the broker client's event context and serialises with
// registration through a single registry mutex, so handlers must be
// fast, must not block, and must not re-enter the dispatcher.
//
// # Usage
//
//	d := command.NewDispatcher(validator)
//	d.Register(command.Definition{
//	    Name:       "set_brightness",
//	    SchemaName: "set_brightness",
//	    Handler: func(ctx *command.Context) command.Result {
//	        value := ctx.GetInt("value", 128)
//	        // apply value...
//	        ctx.Respondf("brightness set to %d", value)
//	        return command.ResultSuccess
//	    },
//	})
//
//	result, response := d.Execute(topic, payload)
package command
