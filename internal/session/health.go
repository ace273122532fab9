package session

import (
	"encoding/json"
	"time"

	"github.com/lumatime/lumen-core/internal/infrastructure/config"
)

// Health is the coarse-grained session health classification.
type Health int

const (
	HealthExcellent Health = iota
	HealthGood
	HealthDegraded
	HealthCritical
)

// String returns a stable label for logs and reporting.
func (h Health) String() string {
	switch h {
	case HealthExcellent:
		return "excellent"
	case HealthGood:
		return "good"
	case HealthDegraded:
		return "degraded"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the classification as its label so published
// snapshots carry "good" rather than an ordinal.
func (h Health) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// HealthSnapshot is a point-in-time view of publish health. It is
// recomputed on every publish attempt outcome and queryable at any
// time.
type HealthSnapshot struct {
	ConsecutiveFailures uint          `json:"consecutive_failures"`
	SinceLastSuccess    time.Duration `json:"since_last_success"`
	QueueDepth          int           `json:"queue_depth"`
	QueueCapacity       int           `json:"queue_capacity"`
	Classification      Health        `json:"classification"`
}

// classify derives the health label from publish history and queue
// pressure. A session that has not attempted any publish yet is
// Excellent; it has nothing to be unhealthy about.
func classify(cfg config.MQTTHealthConfig, failures uint, lastSuccess time.Time, attempts uint64, depth, capacity int) Health {
	if attempts == 0 && depth < capacity {
		return HealthExcellent
	}

	sinceSuccess := time.Since(lastSuccess)
	if lastSuccess.IsZero() {
		// Attempts made, none ever succeeded.
		sinceSuccess = time.Duration(cfg.CriticalWindow+1) * time.Second
	}

	switch {
	case depth == capacity:
		return HealthCritical
	case sinceSuccess > time.Duration(cfg.CriticalWindow)*time.Second:
		return HealthCritical
	case failures == 0 && sinceSuccess < time.Duration(cfg.ExcellentWindow)*time.Second:
		return HealthExcellent
	case failures < uint(cfg.GoodFailures) && sinceSuccess < time.Duration(cfg.GoodWindow)*time.Second:
		return HealthGood
	default:
		return HealthDegraded
	}
}
