// Package link implements the wireless link state machine.
//
// The machine owns the connection lifecycle for the device's wireless
// link: bounded retry on loss, a terminal Failed state when the retry
// budget is exhausted, and a periodic monitor that reconciles believed
// state against the radio's actual association.
//
// # State Model
//
//	Disconnected → Connecting → Connected
//	any state    → Disconnected on link loss
//	Connecting   → Failed after max_attempts unsuccessful retries
//
// Failed is terminal until Reset is called; escalation (for example a
// provisioning fallback mode) is the caller's concern.
//
// # Event Delivery
//
// The physical radio driver is external and accessed through the Radio
// interface. The driver reports link-up and link-down through Deliver,
// which feeds a bounded channel consumed by a single transition
// goroutine. Driver callbacks therefore never run transition logic and
// never sleep; reconnect dials are initiated from the transition
// goroutine.
//
// # Usage
//
//	machine := link.NewMachine(cfg, radio)
//	machine.OnConnected(func() { session.Start() })
//	machine.OnDisconnected(func(reason int) { timesync.Reset() })
//
//	status, err := machine.Start(link.Credentials{SSID: ssid, Passphrase: pass})
package link
