package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lumatime/lumen-core/internal/command"
	"github.com/lumatime/lumen-core/internal/link"
	"github.com/lumatime/lumen-core/internal/schema"
	"github.com/lumatime/lumen-core/internal/session"
	"github.com/lumatime/lumen-core/internal/timesync"
)

// Display limits.
const (
	maxBrightness     = 255
	defaultBrightness = 128
	maxTransitionMS   = 10000
)

// appState is the mutable device state the built-in commands operate
// on, plus handles to the subsystems they report about.
type appState struct {
	mu           sync.Mutex
	brightness   int
	transitionMS int

	machine  *link.Machine
	sessions *session.Manager
	clock    *timesync.State

	// publishState emits the display state on its feature topic; nil
	// until the session is wired.
	publishState func()

	// shutdown requests a graceful process restart.
	shutdown func()
}

func newAppState() *appState {
	return &appState{
		brightness:   defaultBrightness,
		transitionMS: 1000,
	}
}

// displayState is the JSON published on the display feature topic.
type displayState struct {
	State      string `json:"state"`
	Brightness int    `json:"brightness"`
	Transition int    `json:"transition_ms"`
}

func (a *appState) snapshot() displayState {
	a.mu.Lock()
	defer a.mu.Unlock()
	state := "ON"
	if a.brightness == 0 {
		state = "OFF"
	}
	return displayState{State: state, Brightness: a.brightness, Transition: a.transitionMS}
}

// statusReport is the JSON returned by get_status and published on the
// status topic.
type statusReport struct {
	Link         string `json:"link"`
	LinkAttempts uint   `json:"link_attempts"`
	Session      string `json:"session"`
	TimeSynced   bool   `json:"time_synced"`
	Brightness   int    `json:"brightness"`
}

func (a *appState) status() statusReport {
	a.mu.Lock()
	brightness := a.brightness
	a.mu.Unlock()

	report := statusReport{Brightness: brightness}
	if a.machine != nil {
		report.Link = a.machine.Status().String()
		report.LinkAttempts = a.machine.Attempts()
	}
	if a.sessions != nil {
		report.Session = a.sessions.State().String()
	}
	if a.clock != nil {
		report.TimeSynced = a.clock.Synced()
	}
	return report
}

// registerSchemas installs the parameter schemas for the built-in
// commands.
func registerSchemas(v *schema.Validator) error {
	schemas := []schema.Schema{
		{
			Name: "set_brightness",
			Fields: []schema.Field{
				{Name: "brightness", Type: schema.TypeInt, Required: true},
			},
		},
		{
			Name: "set_transition",
			Fields: []schema.Field{
				{Name: "duration_ms", Type: schema.TypeInt, Required: true},
				{Name: "style", Type: schema.TypeString, Required: false},
			},
		},
	}
	for _, s := range schemas {
		if err := v.Register(s); err != nil {
			return fmt.Errorf("registering schema %q: %w", s.Name, err)
		}
	}
	return nil
}

// registerCommands installs the device's built-in command set.
func registerCommands(d *command.Dispatcher, app *appState) error {
	defs := []command.Definition{
		{
			Name:        "set_brightness",
			Description: "Set display brightness (0-255)",
			SchemaName:  "set_brightness",
			Handler:     app.handleSetBrightness,
		},
		{
			Name:        "set_transition",
			Description: "Set display transition duration",
			SchemaName:  "set_transition",
			Handler:     app.handleSetTransition,
		},
		{
			Name:        "get_status",
			Description: "Report link, session and display state",
			Handler:     app.handleGetStatus,
		},
		{
			Name:        "sync_time",
			Description: "Trigger a time synchronisation",
			Handler:     app.handleSyncTime,
		},
		{
			Name:        "restart",
			Description: "Restart the appliance",
			Handler:     app.handleRestart,
		},
	}
	for _, def := range defs {
		if err := d.Register(def); err != nil {
			return fmt.Errorf("registering command %q: %w", def.Name, err)
		}
	}
	return nil
}

func (a *appState) handleSetBrightness(ctx *command.Context) command.Result {
	brightness := ctx.GetInt("brightness", -1)
	if brightness < 0 || brightness > maxBrightness {
		ctx.Respondf("brightness out of range: %d", brightness)
		return command.ResultInvalidParams
	}

	a.mu.Lock()
	a.brightness = brightness
	publish := a.publishState
	a.mu.Unlock()

	if publish != nil {
		publish()
	}
	ctx.Respondf("brightness set to %d", brightness)
	return command.ResultSuccess
}

func (a *appState) handleSetTransition(ctx *command.Context) command.Result {
	duration := ctx.GetInt("duration_ms", -1)
	if duration < 0 || duration > maxTransitionMS {
		ctx.Respondf("duration out of range: %d", duration)
		return command.ResultInvalidParams
	}

	a.mu.Lock()
	a.transitionMS = duration
	publish := a.publishState
	a.mu.Unlock()

	if publish != nil {
		publish()
	}
	ctx.Respondf("transition set to %dms", duration)
	return command.ResultSuccess
}

func (a *appState) handleGetStatus(ctx *command.Context) command.Result {
	body, err := json.Marshal(a.status())
	if err != nil {
		return command.ResultExecutionFailed
	}
	ctx.SetResponse(string(body))
	return command.ResultSuccess
}

func (a *appState) handleSyncTime(ctx *command.Context) command.Result {
	if a.clock == nil {
		return command.ResultExecutionFailed
	}
	a.clock.Trigger()
	ctx.SetResponse("time sync triggered")
	return command.ResultSuccess
}

func (a *appState) handleRestart(ctx *command.Context) command.Result {
	a.mu.Lock()
	shutdown := a.shutdown
	a.mu.Unlock()

	if shutdown == nil {
		return command.ResultExecutionFailed
	}

	// Let the response drain through the publish queue first.
	time.AfterFunc(500*time.Millisecond, shutdown)
	ctx.SetResponse("restarting")
	return command.ResultSuccess
}
