package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/lumatime/lumen-core/internal/infrastructure/config"
)

// Logger defines the logging interface used by the Publisher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Transport is the outbound path for discovery configs. Satisfied by
// *session.Manager.
type Transport interface {
	PublishAsyncRetained(topic string, payload []byte) error
}

// DeviceInfo is the shared device block embedded in every entity
// config so the hub groups all entities under one device.
type DeviceInfo struct {
	Identifiers      []string    `json:"identifiers"`
	Connections      [][2]string `json:"connections,omitempty"`
	Name             string      `json:"name"`
	Model            string      `json:"model,omitempty"`
	Manufacturer     string      `json:"manufacturer,omitempty"`
	SWVersion        string      `json:"sw_version,omitempty"`
	HWVersion        string      `json:"hw_version,omitempty"`
	ConfigurationURL string      `json:"configuration_url,omitempty"`
}

// EntityConfig is the discovery payload for one entity. Zero-valued
// fields are omitted so each component type carries only what it uses.
type EntityConfig struct {
	Name                string      `json:"name"`
	UniqueID            string      `json:"unique_id"`
	StateTopic          string      `json:"state_topic,omitempty"`
	CommandTopic        string      `json:"command_topic,omitempty"`
	AvailabilityTopic   string      `json:"availability_topic,omitempty"`
	PayloadAvailable    string      `json:"payload_available,omitempty"`
	PayloadNotAvailable string      `json:"payload_not_available,omitempty"`
	DeviceClass         string      `json:"device_class,omitempty"`
	UnitOfMeasurement   string      `json:"unit_of_measurement,omitempty"`
	ValueTemplate       string      `json:"value_template,omitempty"`
	Icon                string      `json:"icon,omitempty"`
	Schema              string      `json:"schema,omitempty"`
	Brightness          bool        `json:"brightness,omitempty"`
	BrightnessScale     int         `json:"brightness_scale,omitempty"`
	Device              *DeviceInfo `json:"device,omitempty"`
}

// Entity pairs a hub component type with its object identifier and
// config payload.
type Entity struct {
	// Component is the hub component type, e.g. "light" or "sensor".
	Component string

	// ObjectID is the per-device object identifier, e.g. "display".
	ObjectID string

	Config EntityConfig
}

// Publisher announces and retracts entity discovery configs.
//
// Announce fills the unique_id and device block before publishing, so
// callers describe only the entity-specific fields. The publisher
// remembers what it announced; RetractAll clears every retained config
// it owns.
type Publisher struct {
	cfg       config.DiscoveryConfig
	deviceID  string
	device    DeviceInfo
	transport Transport
	logger    Logger

	mu        sync.Mutex
	announced map[string]Entity // keyed by config topic
}

// NewPublisher creates a discovery publisher for the given device.
//
// Parameters:
//   - cfg: discovery settings (enabled flag, topic prefix)
//   - deviceID: stable device identifier used in topics and unique IDs
//   - device: shared device block embedded in every entity config
//   - transport: retained async publish path, typically *session.Manager
func NewPublisher(cfg config.DiscoveryConfig, deviceID string, device DeviceInfo, transport Transport) *Publisher {
	return &Publisher{
		cfg:       cfg,
		deviceID:  deviceID,
		device:    device,
		transport: transport,
		logger:    noopLogger{},
		announced: make(map[string]Entity),
	}
}

// SetLogger installs a logger. Must be called before Announce.
func (p *Publisher) SetLogger(l Logger) {
	if l != nil {
		p.logger = l
	}
}

// ConfigTopic returns the retained discovery config topic for an entity.
func (p *Publisher) ConfigTopic(component, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", p.cfg.Prefix, component, p.deviceID, objectID)
}

// Announce publishes one entity's retained discovery config.
//
// The unique_id defaults to "<device_id>_<object_id>" and the device
// block is always attached.
//
// Returns:
//   - error: ErrDisabled when discovery is off, ErrInvalidEntity on a
//     missing component or object ID, or a queue error from the transport
func (p *Publisher) Announce(e Entity) error {
	if !p.cfg.Enabled {
		return ErrDisabled
	}
	if e.Component == "" || e.ObjectID == "" {
		return fmt.Errorf("%w: component=%q object_id=%q", ErrInvalidEntity, e.Component, e.ObjectID)
	}

	cfg := e.Config
	if cfg.UniqueID == "" {
		cfg.UniqueID = fmt.Sprintf("%s_%s", p.deviceID, e.ObjectID)
	}
	device := p.device
	cfg.Device = &device

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding discovery config for %s/%s: %w", e.Component, e.ObjectID, err)
	}

	topic := p.ConfigTopic(e.Component, e.ObjectID)
	if err := p.transport.PublishAsyncRetained(topic, payload); err != nil {
		return fmt.Errorf("announcing %s/%s: %w", e.Component, e.ObjectID, err)
	}

	p.mu.Lock()
	p.announced[topic] = e
	p.mu.Unlock()

	p.logger.Info("discovery config announced", "component", e.Component, "object_id", e.ObjectID, "topic", topic)
	return nil
}

// AnnounceAll announces every entity, continuing past individual
// failures. The first error is returned after all entities have been
// attempted.
func (p *Publisher) AnnounceAll(entities []Entity) error {
	var first error
	for _, e := range entities {
		if err := p.Announce(e); err != nil {
			p.logger.Warn("discovery announce failed", "object_id", e.ObjectID, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Retract clears one entity's retained config by publishing an empty
// retained payload to its config topic.
func (p *Publisher) Retract(component, objectID string) error {
	if !p.cfg.Enabled {
		return ErrDisabled
	}
	if component == "" || objectID == "" {
		return fmt.Errorf("%w: component=%q object_id=%q", ErrInvalidEntity, component, objectID)
	}

	topic := p.ConfigTopic(component, objectID)
	if err := p.transport.PublishAsyncRetained(topic, nil); err != nil {
		return fmt.Errorf("retracting %s/%s: %w", component, objectID, err)
	}

	p.mu.Lock()
	delete(p.announced, topic)
	p.mu.Unlock()

	p.logger.Info("discovery config retracted", "component", component, "object_id", objectID)
	return nil
}

// RetractAll clears every config this publisher has announced.
func (p *Publisher) RetractAll() error {
	p.mu.Lock()
	entities := make([]Entity, 0, len(p.announced))
	for _, e := range p.announced {
		entities = append(entities, e)
	}
	p.mu.Unlock()

	var first error
	for _, e := range entities {
		if err := p.Retract(e.Component, e.ObjectID); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Announced returns the number of currently announced entities.
func (p *Publisher) Announced() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.announced)
}

// DeriveDeviceID builds a stable device identifier from the hardware
// address of the first usable network interface, in the form
// "<name>-a1b2c3". When no interface carries a hardware address the
// bare name is returned.
func DeriveDeviceID(name string) string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return name
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if id := deviceIDFromAddr(name, iface.HardwareAddr); id != name {
			return id
		}
	}
	return name
}

func deviceIDFromAddr(name string, hw net.HardwareAddr) string {
	if len(hw) < 3 {
		return name
	}
	tail := hw[len(hw)-3:]
	return fmt.Sprintf("%s-%02x%02x%02x", name, tail[0], tail[1], tail[2])
}
