// Package mqtt provides MQTT client connectivity for Lumen Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The clock appliance speaks to an automation hub through a broker. This
// package is the transport wrapper only: session lifecycle, the outbound
// publish queue, and health classification live in internal/session,
// which drives this client through its Transport interface.
//
//	Lumen Core ↔ MQTT Broker ↔ Automation Hub
//
// # Security Considerations
//
//   - TLS is required for non-local brokers (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT, deviceID)
//	if err := client.Connect(); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{DeviceID: deviceID}
//	err := client.Subscribe(topics.Command(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(topic, payload)
//	    })
package mqtt
