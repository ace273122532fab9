// Package telemetry ships device metrics to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with the
// non-blocking batched write API, so recording a metric from a health
// loop or command pipeline never waits on the network.
//
// # Purpose
//
// Time-series storage for:
//   - Session health snapshots (failures, queue depth, classification)
//   - Command dispatcher statistics
//   - Link state transitions and retry counts
//
// # Usage
//
//	sink, err := telemetry.Connect(cfg.Telemetry)
//	if err != nil {
//	    // telemetry is optional; log and continue
//	}
//	defer sink.Close()
//
//	sink.WriteSessionHealth(deviceID, manager.Health())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Write errors are delivered asynchronously via SetOnError.
package telemetry
