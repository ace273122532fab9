// Package logging provides structured logging for Lumen Core.
//
// It wraps log/slog with configuration-driven setup:
//   - JSON or text output format
//   - Level-based filtering (debug, info, warn, error)
//   - Default service/version attributes on every record
//
// Components that need a logger accept a small interface locally and
// receive *Logger through SetLogger, so packages stay decoupled from
// this one.
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("link connected", "ssid", ssid)
//
//	linkLog := log.With("component", "link")
package logging
