package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/lumatime/lumen-core/internal/command"
	"github.com/lumatime/lumen-core/internal/session"
)

// WriteSessionHealth records a session health snapshot.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: the device identifier used as a tag
//   - snapshot: the current health snapshot from the session manager
func (s *Sink) WriteSessionHealth(deviceID string, snapshot session.HealthSnapshot) {
	if !s.IsConnected() {
		return
	}

	point := write.NewPoint(
		"session_health",
		map[string]string{
			"device_id":      deviceID,
			"classification": snapshot.Classification.String(),
		},
		map[string]interface{}{
			"consecutive_failures": int64(snapshot.ConsecutiveFailures),
			"since_last_success_s": snapshot.SinceLastSuccess.Seconds(),
			"queue_depth":          int64(snapshot.QueueDepth),
			"queue_capacity":       int64(snapshot.QueueCapacity),
		},
		time.Now(),
	)

	s.writeAPI.WritePoint(point)
}

// WriteCommandStats records aggregate command dispatcher counters.
func (s *Sink) WriteCommandStats(deviceID string, stats command.Stats) {
	if !s.IsConnected() {
		return
	}

	point := write.NewPoint(
		"command_stats",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"total_processed":     int64(stats.TotalProcessed),
			"successful":          int64(stats.Successful),
			"failed":              int64(stats.Failed),
			"validation_failures": int64(stats.ValidationFailures),
			"not_found":           int64(stats.NotFound),
			"registered_commands": int64(stats.RegisteredCommands),
		},
		time.Now(),
	)

	s.writeAPI.WritePoint(point)
}

// WriteLinkState records a link state transition with the retry count
// at the time of the transition.
//
// Parameters:
//   - deviceID: the device identifier used as a tag
//   - state: the link state label (e.g. "connected", "failed")
//   - attempts: the retry counter value at the transition
func (s *Sink) WriteLinkState(deviceID string, state string, attempts uint) {
	if !s.IsConnected() {
		return
	}

	point := write.NewPoint(
		"link_state",
		map[string]string{
			"device_id": deviceID,
			"state":     state,
		},
		map[string]interface{}{
			"attempts": int64(attempts),
		},
		time.Now(),
	)

	s.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (s *Sink) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !s.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	s.writeAPI.WritePoint(point)
}
