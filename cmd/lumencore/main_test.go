package main

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/lumatime/lumen-core/internal/command"
	"github.com/lumatime/lumen-core/internal/schema"
	"github.com/lumatime/lumen-core/internal/timesync"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("LUMEN_CONFIG")
	defer os.Setenv("LUMEN_CONFIG", originalEnv)

	os.Setenv("LUMEN_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, cancel)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("LUMEN_CONFIG")
	defer os.Setenv("LUMEN_CONFIG", originalEnv)

	os.Unsetenv("LUMEN_CONFIG")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	os.Setenv("LUMEN_CONFIG", "/etc/lumen/config.yaml")
	if got := getConfigPath(); got != "/etc/lumen/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}

// =============================================================================
// Built-in Command Tests
// =============================================================================

// testDispatcher builds a dispatcher with the built-in command set
// registered against a fresh app state.
func testDispatcher(t *testing.T) (*command.Dispatcher, *appState) {
	t.Helper()

	validator := schema.NewValidator()
	if err := registerSchemas(validator); err != nil {
		t.Fatalf("registerSchemas() error = %v", err)
	}

	dispatcher := command.NewDispatcher(validator)
	app := newAppState()
	if err := registerCommands(dispatcher, app); err != nil {
		t.Fatalf("registerCommands() error = %v", err)
	}
	return dispatcher, app
}

func TestSetBrightness(t *testing.T) {
	dispatcher, app := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"set_brightness","parameters":{"brightness":200}}`))
	if result != command.ResultSuccess {
		t.Fatalf("Execute(set_brightness) = %v, want success", result)
	}
	if got := app.snapshot().Brightness; got != 200 {
		t.Errorf("brightness = %d, want 200", got)
	}
}

func TestSetBrightnessOutOfRange(t *testing.T) {
	dispatcher, app := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"set_brightness","parameters":{"brightness":300}}`))
	if result != command.ResultInvalidParams {
		t.Fatalf("Execute(set_brightness 300) = %v, want invalid_params", result)
	}
	if got := app.snapshot().Brightness; got != defaultBrightness {
		t.Errorf("brightness = %d, want unchanged default %d", got, defaultBrightness)
	}
}

func TestSetBrightnessMissingParam(t *testing.T) {
	dispatcher, _ := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"set_brightness","parameters":{}}`))
	if result != command.ResultInvalidParams {
		t.Fatalf("Execute(set_brightness no params) = %v, want invalid_params", result)
	}
}

func TestSetBrightnessWrongType(t *testing.T) {
	dispatcher, _ := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"set_brightness","parameters":{"brightness":"bright"}}`))
	if result != command.ResultSchemaInvalid {
		t.Fatalf("Execute(set_brightness wrong type) = %v, want schema_invalid", result)
	}
}

func TestSetTransition(t *testing.T) {
	dispatcher, app := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"set_transition","parameters":{"duration_ms":2500}}`))
	if result != command.ResultSuccess {
		t.Fatalf("Execute(set_transition) = %v, want success", result)
	}
	if got := app.snapshot().Transition; got != 2500 {
		t.Errorf("transition = %d, want 2500", got)
	}
}

func TestGetStatus(t *testing.T) {
	dispatcher, _ := testDispatcher(t)

	result, response := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"get_status"}`))
	if result != command.ResultSuccess {
		t.Fatalf("Execute(get_status) = %v, want success", result)
	}

	var report statusReport
	if err := json.Unmarshal([]byte(response), &report); err != nil {
		t.Fatalf("get_status response is not valid JSON: %v", err)
	}
	if report.Brightness != defaultBrightness {
		t.Errorf("status brightness = %d, want %d", report.Brightness, defaultBrightness)
	}
}

func TestSyncTime(t *testing.T) {
	dispatcher, app := testDispatcher(t)
	app.clock = timesync.NewState(hostTimeSyncer{})

	result, response := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"sync_time"}`))
	if result != command.ResultSuccess {
		t.Fatalf("Execute(sync_time) = %v, want success", result)
	}
	if response != "time sync triggered" {
		t.Errorf("sync_time response = %q", response)
	}
}

func TestSyncTimeWithoutClock(t *testing.T) {
	dispatcher, _ := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"sync_time"}`))
	if result != command.ResultExecutionFailed {
		t.Fatalf("Execute(sync_time) without clock = %v, want execution_failed", result)
	}
}

func TestRestartWithoutShutdownHook(t *testing.T) {
	dispatcher, _ := testDispatcher(t)

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"restart"}`))
	if result != command.ResultExecutionFailed {
		t.Fatalf("Execute(restart) without hook = %v, want execution_failed", result)
	}
}

func TestRestartTriggersShutdown(t *testing.T) {
	dispatcher, app := testDispatcher(t)

	done := make(chan struct{})
	app.shutdown = func() { close(done) }

	result, _ := dispatcher.Execute("lumen/dev/command",
		[]byte(`{"command":"restart"}`))
	if result != command.ResultSuccess {
		t.Fatalf("Execute(restart) = %v, want success", result)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("restart did not invoke shutdown hook")
	}
}
