// Lumen Core - Clock Appliance Connectivity Runtime
//
// This is the main entry point for the Lumen Core application. It owns
// the clock appliance's connectivity and command subsystem:
//   - Wireless link supervision with bounded retries
//   - Broker session with a bounded outbound publish queue
//   - JSON command dispatch with schema validation
//   - Automation hub discovery announcements
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumatime/lumen-core/internal/command"
	"github.com/lumatime/lumen-core/internal/discovery"
	"github.com/lumatime/lumen-core/internal/infrastructure/config"
	"github.com/lumatime/lumen-core/internal/infrastructure/logging"
	"github.com/lumatime/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumatime/lumen-core/internal/infrastructure/store"
	"github.com/lumatime/lumen-core/internal/infrastructure/telemetry"
	"github.com/lumatime/lumen-core/internal/link"
	"github.com/lumatime/lumen-core/internal/schema"
	"github.com/lumatime/lumen-core/internal/session"
	"github.com/lumatime/lumen-core/internal/timesync"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// healthInterval paces periodic health publication and telemetry writes.
const healthInterval = 30 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cancel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: context for cancellation and shutdown signals
//   - shutdown: cancels ctx; handed to the restart command
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, shutdown context.CancelFunc) error {
	log := logging.Default()
	log.Info("starting Lumen Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Open the credential store and resolve the commissioning record,
	// falling back to configuration defaults when no usable record exists.
	st, err := store.Open(store.Config{
		Path:        cfg.Store.Path,
		WALMode:     cfg.Store.WALMode,
		BusyTimeout: cfg.Store.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer func() {
		log.Info("closing credential store")
		if closeErr := st.Close(); closeErr != nil {
			log.Error("error closing credential store", "error", closeErr)
		}
	}()

	creds := resolveCredentials(ctx, st, cfg, log)

	deviceID := cfg.Device.ID
	if deviceID == "" {
		deviceID = discovery.DeriveDeviceID("lumen")
		log.Info("device id derived from hardware address", "device_id", deviceID)
	}

	// Command pipeline: schema validator feeding the dispatcher.
	validator := schema.NewValidator()
	if err := registerSchemas(validator); err != nil {
		return err
	}

	dispatcher := command.NewDispatcher(validator)
	dispatcher.SetLogger(log.Component("command"))

	app := newAppState()
	app.shutdown = shutdown
	if err := registerCommands(dispatcher, app); err != nil {
		return err
	}
	log.Info("command registry populated", "commands", dispatcher.Count())

	// Broker client and session manager.
	client := mqtt.New(cfg.MQTT, deviceID)
	client.SetLogger(log.Component("mqtt"))

	manager := session.NewManager(cfg.MQTT, client, dispatcher)
	manager.SetLogger(log.Component("session"))
	app.sessions = manager

	topics := client.Topics()
	app.publishState = func() {
		body, err := json.Marshal(app.snapshot())
		if err != nil {
			return
		}
		if err := manager.PublishAsync(topics.Feature("display", "state"), body); err != nil {
			log.Warn("display state publish dropped", "error", err)
		}
	}

	// Discovery publisher, announced on every session connect so a hub
	// restart always re-learns the device.
	announcer := discovery.NewPublisher(cfg.Discovery, deviceID, discovery.DeviceInfo{
		Identifiers:  []string{deviceID},
		Name:         cfg.Device.Name,
		Model:        "Lumen",
		Manufacturer: "Lumatime",
		SWVersion:    version,
	}, manager)
	announcer.SetLogger(log.Component("discovery"))

	manager.SetOnConnected(func() {
		if cfg.Discovery.Enabled {
			if err := announcer.AnnounceAll(discovery.ClockEntities(deviceID)); err != nil {
				log.Warn("discovery announcement incomplete", "error", err)
			}
		}
		publishStatus(manager, topics, app, log)
		app.publishState()
	})

	if err := manager.Init(); err != nil {
		return fmt.Errorf("initializing session manager: %w", err)
	}
	defer func() {
		log.Info("closing broker session")
		if deinitErr := manager.Deinit(); deinitErr != nil {
			log.Error("error closing broker session", "error", deinitErr)
		}
	}()

	// Time sync state, driven by link edges.
	clock := timesync.NewState(hostTimeSyncer{})
	clock.SetLogger(log.Component("timesync"))
	app.clock = clock

	// Telemetry sink (optional).
	var sink *telemetry.Sink
	if cfg.Telemetry.Enabled {
		sink, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting telemetry sink: %w", err)
		}
		defer func() {
			log.Info("closing telemetry sink")
			if closeErr := sink.Close(); closeErr != nil {
				log.Error("error closing telemetry sink", "error", closeErr)
			}
		}()
		sink.SetOnError(func(err error) {
			log.Error("telemetry write error", "error", err)
		})
		log.Info("telemetry sink connected", "url", cfg.Telemetry.URL, "bucket", cfg.Telemetry.Bucket)
	} else {
		log.Info("telemetry disabled")
	}

	// Link machine: session start and time sync ride its edges.
	radio := newHostRadio()
	machine := link.NewMachine(cfg.Link, radio)
	machine.SetLogger(log.Component("link"))
	radio.notify = machine.Deliver
	app.machine = machine

	machine.OnConnected(func() {
		clock.Trigger()
		clock.MarkSynced()
		if err := manager.Start(); err != nil {
			log.Error("session start failed", "error", err)
		}
		if sink != nil {
			sink.WriteLinkState(deviceID, link.StatusConnected.String(), machine.Attempts())
		}
	})
	machine.OnDisconnected(func(reason int) {
		clock.Reset()
		if sink != nil {
			sink.WriteLinkState(deviceID, link.StatusDisconnected.String(), machine.Attempts())
		}
		log.Warn("link lost", "reason", reason)
	})
	machine.OnFailed(func() {
		log.Error("link retries exhausted; awaiting operator reset")
		if sink != nil {
			sink.WriteLinkState(deviceID, link.StatusFailed.String(), machine.Attempts())
		}
	})

	status, err := machine.Start(creds)
	switch {
	case err == nil:
		log.Info("link established", "status", status.String())
	case errors.Is(err, link.ErrStartTimeout):
		// The attempt keeps running in the background.
		log.Warn("link not yet established", "status", status.String())
	default:
		return fmt.Errorf("starting link: %w", err)
	}
	defer func() {
		log.Info("stopping link machine")
		if stopErr := machine.Stop(); stopErr != nil {
			log.Error("error stopping link machine", "error", stopErr)
		}
	}()

	go healthLoop(ctx, manager, dispatcher, topics, app, sink, deviceID, log)

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Lumen Core stopped")
	return nil
}

// resolveCredentials loads the commissioning record, applying broker
// overrides to cfg and returning the link credentials. Fallback order:
// store record first, configuration defaults when the record is absent
// or written with a different schema version.
func resolveCredentials(ctx context.Context, st *store.Store, cfg *config.Config, log *logging.Logger) link.Credentials {
	rec, err := st.Load(ctx)
	switch {
	case err == nil && rec.HasLinkCredentials():
		log.Info("commissioning record loaded", "updated_at", rec.UpdatedAt)
		cfg.MQTT.Broker.Host = rec.BrokerHost
		cfg.MQTT.Broker.Port = rec.BrokerPort
		cfg.MQTT.Broker.TLS = rec.BrokerTLS
		if rec.BrokerClientID != "" {
			cfg.MQTT.Broker.ClientID = rec.BrokerClientID
		}
		cfg.MQTT.Auth.Username = rec.BrokerUsername
		cfg.MQTT.Auth.Password = rec.BrokerPassword
		return link.Credentials{SSID: rec.LinkSSID, Passphrase: rec.LinkPassphrase}
	case errors.Is(err, store.ErrNoRecord):
		log.Info("no commissioning record, using configuration defaults")
	case errors.Is(err, store.ErrVersionMismatch):
		log.Warn("commissioning record version mismatch, using configuration defaults")
	case err != nil:
		log.Error("loading commissioning record failed, using configuration defaults", "error", err)
	default:
		log.Warn("commissioning record has no link credentials, using configuration defaults")
	}
	return link.Credentials{SSID: cfg.Link.SSID, Passphrase: cfg.Link.Passphrase}
}

// publishStatus emits a status report on the status topic via the
// async path.
func publishStatus(manager *session.Manager, topics mqtt.Topics, app *appState, log *logging.Logger) {
	body, err := json.Marshal(app.status())
	if err != nil {
		return
	}
	if err := manager.PublishAsync(topics.Status(), body); err != nil {
		log.Warn("status publish dropped", "error", err)
	}
}

// healthLoop periodically publishes the session health snapshot and
// ships metrics to the telemetry sink.
func healthLoop(ctx context.Context, manager *session.Manager, dispatcher *command.Dispatcher,
	topics mqtt.Topics, app *appState, sink *telemetry.Sink, deviceID string, log *logging.Logger,
) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snapshot := manager.Health()
		if body, err := json.Marshal(snapshot); err == nil {
			if err := manager.PublishAsync(topics.Health(), body); err != nil {
				log.Debug("health publish dropped", "error", err)
			}
		}
		publishStatus(manager, topics, app, log)

		if sink != nil {
			sink.WriteSessionHealth(deviceID, snapshot)
			sink.WriteCommandStats(deviceID, dispatcher.Stats())
		}
	}
}

// hostTimeSyncer satisfies timesync.Syncer on hosts where the OS
// disciplines the clock; triggering a sync is a no-op.
type hostTimeSyncer struct{}

func (hostTimeSyncer) StartSync() error { return nil }

// getConfigPath returns the configuration file path.
// Uses LUMEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
