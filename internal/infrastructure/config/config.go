package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Lumen Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Store     StoreConfig     `yaml:"store"`
	Link      LinkConfig      `yaml:"link"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies this appliance.
type DeviceConfig struct {
	// ID is the device identifier used in topic namespaces and discovery.
	// If empty, an identifier is derived from the radio hardware address.
	ID string `yaml:"id"`

	// Name is the human-readable device name.
	Name string `yaml:"name"`
}

// StoreConfig contains credential store (SQLite) settings.
type StoreConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LinkConfig contains wireless link settings.
type LinkConfig struct {
	// SSID and Passphrase are fallback credentials used when the store
	// holds no usable record.
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`

	// MaxAttempts bounds disconnect-triggered reconnect attempts before
	// the link machine enters the terminal Failed state.
	MaxAttempts uint `yaml:"max_attempts"`

	// StartTimeout bounds the blocking wait in Start (seconds).
	StartTimeout int `yaml:"start_timeout"`

	// MonitorInterval is the link reconciliation period (seconds).
	MonitorInterval int `yaml:"monitor_interval"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Queue     MQTTQueueConfig     `yaml:"queue"`
	Health    MQTTHealthConfig    `yaml:"health"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MQTTQueueConfig contains outbound publish queue settings.
type MQTTQueueConfig struct {
	// Capacity is the fixed queue size. Enqueue on a full queue fails
	// rather than blocking or evicting.
	Capacity int `yaml:"capacity"`

	// MaxRetries is the number of immediate re-transmit attempts for a
	// failed publish before the message is dropped.
	MaxRetries int `yaml:"max_retries"`
}

// MQTTHealthConfig contains session health classification thresholds.
// All durations are in seconds.
type MQTTHealthConfig struct {
	// ExcellentWindow: zero failures and a success within this window.
	ExcellentWindow int `yaml:"excellent_window"`

	// GoodFailures: failure counts below this, with a success within
	// GoodWindow, still classify as Good.
	GoodFailures int `yaml:"good_failures"`
	GoodWindow   int `yaml:"good_window"`

	// CriticalWindow: no success for this long is Critical regardless
	// of failure count.
	CriticalWindow int `yaml:"critical_window"`
}

// DiscoveryConfig contains automation-hub discovery settings.
type DiscoveryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Prefix is the discovery topic prefix (Home Assistant convention).
	Prefix string `yaml:"prefix"`
}

// TelemetryConfig contains InfluxDB telemetry sink settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LUMEN_SECTION_KEY
// For example: LUMEN_MQTT_HOST, LUMEN_LINK_SSID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the built-in defaults.
// This is also the fallback used when the credential store holds no
// usable record.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name: "Lumen Clock",
		},
		Store: StoreConfig{
			Path:        "./data/lumen.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Link: LinkConfig{
			MaxAttempts:     5,
			StartTimeout:    30,
			MonitorInterval: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lumen-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Queue: MQTTQueueConfig{
				Capacity:   20,
				MaxRetries: 1,
			},
			Health: MQTTHealthConfig{
				ExcellentWindow: 60,
				GoodFailures:    3,
				GoodWindow:      300,
				CriticalWindow:  1800,
			},
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
			Prefix:  "homeassistant",
		},
		Telemetry: TelemetryConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LUMEN_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("LUMEN_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}

	// Store
	if v := os.Getenv("LUMEN_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}

	// Link
	if v := os.Getenv("LUMEN_LINK_SSID"); v != "" {
		cfg.Link.SSID = v
	}
	if v := os.Getenv("LUMEN_LINK_PASSPHRASE"); v != "" {
		cfg.Link.Passphrase = v
	}

	// MQTT
	if v := os.Getenv("LUMEN_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LUMEN_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("LUMEN_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LUMEN_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Telemetry
	if v := os.Getenv("LUMEN_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Queue.Capacity < 1 {
		errs = append(errs, "mqtt.queue.capacity must be at least 1")
	}
	if c.MQTT.Queue.MaxRetries < 0 {
		errs = append(errs, "mqtt.queue.max_retries must not be negative")
	}

	// Link validation
	if c.Link.MaxAttempts < 1 {
		errs = append(errs, "link.max_attempts must be at least 1")
	}
	if c.Link.StartTimeout < 1 {
		errs = append(errs, "link.start_timeout must be at least 1 second")
	}

	// Store validation
	if c.Store.Path == "" {
		errs = append(errs, "store.path is required")
	}

	// Telemetry validation
	if c.Telemetry.Enabled && c.Telemetry.URL == "" {
		errs = append(errs, "telemetry.url is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Timeout returns the link start timeout as a Duration.
func (c *LinkConfig) Timeout() time.Duration {
	return time.Duration(c.StartTimeout) * time.Second
}

// Interval returns the link monitor interval as a Duration.
func (c *LinkConfig) Interval() time.Duration {
	return time.Duration(c.MonitorInterval) * time.Second
}
