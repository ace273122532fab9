package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
device:
  id: "lumen-test"
store:
  path: "/tmp/lumen-test.db"
  wal_mode: true
  busy_timeout: 5
link:
  ssid: "TestNet"
  max_attempts: 3
mqtt:
  broker:
    host: "broker.example"
    port: 8883
    tls: true
    client_id: "lumen-test"
  qos: 1
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "lumen-test" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "lumen-test")
	}

	if cfg.MQTT.Broker.Host != "broker.example" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.example")
	}

	if cfg.Link.MaxAttempts != 3 {
		t.Errorf("Link.MaxAttempts = %d, want 3", cfg.Link.MaxAttempts)
	}

	// Values absent from the file keep their defaults
	if cfg.MQTT.Queue.Capacity != 20 {
		t.Errorf("MQTT.Queue.Capacity = %d, want default 20", cfg.MQTT.Queue.Capacity)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "from-file"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("LUMEN_MQTT_HOST", "from-env")
	t.Setenv("LUMEN_LINK_SSID", "EnvNet")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "from-env")
	}
	if cfg.Link.SSID != "EnvNet" {
		t.Errorf("Link.SSID = %q, want %q", cfg.Link.SSID, "EnvNet")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid broker port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "zero queue capacity",
			mutate:  func(c *Config) { c.MQTT.Queue.Capacity = 0 },
			wantErr: true,
		},
		{
			name:    "zero link max attempts",
			mutate:  func(c *Config) { c.Link.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name:    "missing store path",
			mutate:  func(c *Config) { c.Store.Path = "" },
			wantErr: true,
		},
		{
			name:    "telemetry enabled without URL",
			mutate:  func(c *Config) { c.Telemetry.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinkConfig_Durations(t *testing.T) {
	cfg := LinkConfig{StartTimeout: 30, MonitorInterval: 45}

	if got := cfg.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
	if got := cfg.Interval(); got != 45*time.Second {
		t.Errorf("Interval() = %v, want 45s", got)
	}
}
