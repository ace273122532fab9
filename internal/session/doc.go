// Package session owns the broker session lifecycle.
//
// The Manager wraps the MQTT client with a bounded outbound publish
// queue served by a dedicated publisher goroutine, session state driven
// by the client's connect/disconnect callbacks, and a health
// classification derived from recent publish outcomes.
//
// # Publish Paths
//
// PublishAsync is the mandatory path for any producer running inside an
// event callback: it appends to the bounded FIFO queue and never blocks
// on network I/O. A full queue rejects the message rather than blocking
// or evicting. The publisher goroutine is the only context that
// performs blocking transmits; a failed transmit gets at most one
// immediate retry before the message is dropped.
//
// PublishSync transmits directly and is reserved for foreground
// contexts such as commissioning tools. It must never be called from a
// session event callback.
//
// # Inbound Commands
//
// Messages on the command topic are handed inline to the command
// dispatcher; the dispatcher's response is enqueued on the async path
// for publication on the response topic.
//
// # Health Classification
//
//	Excellent  no failures, last success under a minute ago
//	Good       under three consecutive failures, last success recent
//	Degraded   repeated failures or a stale last success
//	Critical   last success very stale, or the queue is full
//
// Thresholds are configuration; see config.MQTTHealthConfig.
package session
