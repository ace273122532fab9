package mqtt

import "fmt"

// TopicPrefix is the base for all Lumen device topics.
// Full scheme: lumen/{device_id}/{category}
const TopicPrefix = "lumen"

// Topics provides builders for the device's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{DeviceID: "lumen-a1b2c3"}
//	topics.Command() // "lumen/lumen-a1b2c3/command"
type Topics struct {
	DeviceID string
}

// Command returns the inbound command topic. A single well-known topic
// receives all JSON command payloads for the device.
//
// Example: lumen/lumen-a1b2c3/command
func (t Topics) Command() string {
	return fmt.Sprintf("%s/%s/command", TopicPrefix, t.DeviceID)
}

// Response returns the topic command responses are published to.
//
// Example: lumen/lumen-a1b2c3/response
func (t Topics) Response() string {
	return fmt.Sprintf("%s/%s/response", TopicPrefix, t.DeviceID)
}

// Availability returns the availability topic carrying "online"/"offline".
// This is also the LWT topic: the broker publishes "offline" here if the
// device drops without a graceful disconnect.
//
// Example: lumen/lumen-a1b2c3/availability
func (t Topics) Availability() string {
	return fmt.Sprintf("%s/%s/availability", TopicPrefix, t.DeviceID)
}

// Status returns the topic for periodic device status reports.
//
// Example: lumen/lumen-a1b2c3/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, t.DeviceID)
}

// Health returns the topic for session health snapshots.
//
// Example: lumen/lumen-a1b2c3/health
func (t Topics) Health() string {
	return fmt.Sprintf("%s/%s/health", TopicPrefix, t.DeviceID)
}

// Feature returns a per-feature status topic under the device prefix.
//
// Example: lumen/lumen-a1b2c3/brightness/state
func (t Topics) Feature(feature, suffix string) string {
	return fmt.Sprintf("%s/%s/%s/%s", TopicPrefix, t.DeviceID, feature, suffix)
}

// AllDeviceTopics returns a pattern matching every topic for this device.
// Use with caution - this receives ALL of the device's traffic.
//
// Pattern: lumen/{device_id}/#
func (t Topics) AllDeviceTopics() string {
	return fmt.Sprintf("%s/%s/#", TopicPrefix, t.DeviceID)
}
