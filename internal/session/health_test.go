package session

import (
	"testing"
	"time"

	"github.com/lumatime/lumen-core/internal/infrastructure/config"
)

func testHealthConfig() config.MQTTHealthConfig {
	return config.MQTTHealthConfig{
		ExcellentWindow: 60,
		GoodFailures:    3,
		GoodWindow:      300,
		CriticalWindow:  1800,
	}
}

// =============================================================================
// Classification Tests
// =============================================================================

func TestClassify(t *testing.T) {
	cfg := testHealthConfig()
	now := time.Now()

	tests := []struct {
		name        string
		failures    uint
		lastSuccess time.Time
		attempts    uint64
		depth       int
		want        Health
	}{
		{
			name: "fresh session, no attempts",
			want: HealthExcellent,
		},
		{
			name:        "no failures, success 10s ago",
			lastSuccess: now.Add(-10 * time.Second),
			attempts:    5,
			want:        HealthExcellent,
		},
		{
			name:        "two failures, success 4min ago",
			failures:    2,
			lastSuccess: now.Add(-4 * time.Minute),
			attempts:    10,
			want:        HealthGood,
		},
		{
			name:        "four failures",
			failures:    4,
			lastSuccess: now.Add(-10 * time.Second),
			attempts:    10,
			want:        HealthDegraded,
		},
		{
			name:        "success 10min ago",
			failures:    0,
			lastSuccess: now.Add(-10 * time.Minute),
			attempts:    10,
			want:        HealthDegraded,
		},
		{
			name:        "success 40min ago is critical regardless of failures",
			failures:    0,
			lastSuccess: now.Add(-40 * time.Minute),
			attempts:    10,
			want:        HealthCritical,
		},
		{
			name:        "queue at capacity is critical",
			lastSuccess: now.Add(-1 * time.Second),
			attempts:    5,
			depth:       20,
			want:        HealthCritical,
		},
		{
			name:     "attempts made, never succeeded",
			failures: 2,
			attempts: 2,
			want:     HealthCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(cfg, tt.failures, tt.lastSuccess, tt.attempts, tt.depth, 20)
			if got != tt.want {
				t.Errorf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthString(t *testing.T) {
	tests := []struct {
		health Health
		want   string
	}{
		{HealthExcellent, "excellent"},
		{HealthGood, "good"},
		{HealthDegraded, "degraded"},
		{HealthCritical, "critical"},
	}

	for _, tt := range tests {
		if got := tt.health.String(); got != tt.want {
			t.Errorf("Health(%d).String() = %q, want %q", tt.health, got, tt.want)
		}
	}
}
