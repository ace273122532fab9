package discovery

import (
	"github.com/lumatime/lumen-core/internal/infrastructure/mqtt"
)

// ClockEntities returns the standard entity set for a clock appliance:
// the display light plus diagnostic sensors sourced from the device
// status and health topics.
func ClockEntities(deviceID string) []Entity {
	t := mqtt.Topics{DeviceID: deviceID}

	availability := func(cfg EntityConfig) EntityConfig {
		cfg.AvailabilityTopic = t.Availability()
		cfg.PayloadAvailable = "online"
		cfg.PayloadNotAvailable = "offline"
		return cfg
	}

	return []Entity{
		{
			Component: "light",
			ObjectID:  "display",
			Config: availability(EntityConfig{
				Name:            "Display",
				Schema:          "json",
				StateTopic:      t.Feature("display", "state"),
				CommandTopic:    t.Command(),
				Brightness:      true,
				BrightnessScale: 255,
			}),
		},
		{
			Component: "sensor",
			ObjectID:  "link_status",
			Config: availability(EntityConfig{
				Name:          "Link Status",
				StateTopic:    t.Status(),
				ValueTemplate: "{{ value_json.link }}",
				Icon:          "mdi:wifi",
			}),
		},
		{
			Component: "sensor",
			ObjectID:  "session_health",
			Config: availability(EntityConfig{
				Name:          "Session Health",
				StateTopic:    t.Health(),
				ValueTemplate: "{{ value_json.classification }}",
				Icon:          "mdi:heart-pulse",
			}),
		},
		{
			Component: "sensor",
			ObjectID:  "time_sync",
			Config: availability(EntityConfig{
				Name:          "Time Sync",
				StateTopic:    t.Status(),
				ValueTemplate: "{{ value_json.time_synced }}",
				Icon:          "mdi:clock-check-outline",
			}),
		},
		{
			Component: "sensor",
			ObjectID:  "brightness",
			Config: availability(EntityConfig{
				Name:          "Brightness",
				StateTopic:    t.Feature("display", "state"),
				ValueTemplate: "{{ value_json.brightness }}",
				Icon:          "mdi:brightness-6",
			}),
		},
	}
}
