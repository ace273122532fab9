package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumatime/lumen-core/internal/command"
	"github.com/lumatime/lumen-core/internal/infrastructure/config"
	"github.com/lumatime/lumen-core/internal/infrastructure/mqtt"
)

// State is the broker session state, driven by the client's
// asynchronous connect/disconnect callbacks.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns a stable label for logs and diagnostics.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Broker abstracts the MQTT client the session manager drives.
// *mqtt.Client satisfies it; tests substitute a fake.
type Broker interface {
	Connect() error
	Close() error
	IsConnected() bool
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Topics() mqtt.Topics
	SetOnConnect(func())
	SetOnDisconnect(func(err error))
}

// Dispatcher executes inbound commands. *command.Dispatcher satisfies it.
type Dispatcher interface {
	Execute(topic string, payload []byte) (command.Result, string)
}

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// commandResponse is the JSON envelope published on the response topic.
type commandResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// Manager owns the broker session lifecycle, the bounded outbound
// queue, and health accounting.
type Manager struct {
	cfg        config.MQTTConfig
	broker     Broker
	dispatcher Dispatcher
	logger     Logger

	mu          sync.Mutex
	state       State
	initialized bool

	queue  *PublishQueue
	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup

	// connectionAttempts counts underlying dials; idempotent Start
	// keeps it at one per disconnect cycle.
	connectionAttempts atomic.Uint64

	healthMu            sync.Mutex
	consecutiveFailures uint
	lastSuccess         time.Time
	publishAttempts     uint64

	// onConnected is an optional consumer notified after each session
	// connect, once the command topic subscription is in place.
	onConnected func()
}

// NewManager creates a session manager over the given broker client and
// command dispatcher.
func NewManager(cfg config.MQTTConfig, broker Broker, dispatcher Dispatcher) *Manager {
	return &Manager{
		cfg:        cfg,
		broker:     broker,
		dispatcher: dispatcher,
		logger:     noopLogger{},
		queue:      NewPublishQueue(cfg.Queue.Capacity),
		notify:     make(chan struct{}, 1),
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetOnConnected registers a consumer called after each session
// connect. The consumer runs in the broker's event context and must
// not block; outbound work belongs on the async publish path.
// Must be called before Init.
func (m *Manager) SetOnConnected(fn func()) {
	m.onConnected = fn
}

// Init wires the broker callbacks and starts the publisher goroutine.
// Calling Init on an initialized manager is a no-op returning success.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.broker.SetOnConnect(m.handleConnect)
	m.broker.SetOnDisconnect(m.handleDisconnect)

	m.done = make(chan struct{})
	m.wg.Add(1)
	go m.runPublisher()

	m.initialized = true
	m.state = StateDisconnected
	return nil
}

// Deinit stops the publisher and closes the broker session. Calling
// Deinit on an uninitialized manager is a no-op returning success.
func (m *Manager) Deinit() error {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return nil
	}
	m.initialized = false
	done := m.done
	m.mu.Unlock()

	close(done)
	m.wg.Wait()

	err := m.broker.Close()

	m.mu.Lock()
	m.state = StateDisconnected
	m.mu.Unlock()
	return err
}

// Start begins connecting to the broker. It is safe to call repeatedly
// from any producer, including the link machine's became-connected
// consumer: while the session is already Connecting or Connected the
// call is a no-op returning success, so multiple triggers never create
// a duplicate underlying connection.
//
// The dial itself runs on a separate goroutine; Start never blocks on
// network I/O.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	if m.state == StateConnecting || m.state == StateConnected {
		return nil
	}

	m.state = StateConnecting
	m.connectionAttempts.Add(1)

	go func() {
		if err := m.broker.Connect(); err != nil {
			m.logger.Error("broker connect failed", "error", err)
			m.mu.Lock()
			m.state = StateError
			m.mu.Unlock()
			return
		}
		m.handleConnect()
	}()

	return nil
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ConnectionAttempts returns the number of underlying dials performed.
func (m *Manager) ConnectionAttempts() uint64 {
	return m.connectionAttempts.Load()
}

// handleConnect runs on broker connect acknowledgment. It subscribes
// the command topic; restored subscriptions on reconnect are handled by
// the client itself.
func (m *Manager) handleConnect() {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return
	}
	m.state = StateConnected
	m.mu.Unlock()

	topics := m.broker.Topics()
	if err := m.broker.Subscribe(topics.Command(), byte(m.cfg.QoS), m.handleInbound); err != nil {
		m.logger.Error("command topic subscribe failed", "topic", topics.Command(), "error", err)
	}

	m.logger.Info("session connected", "command_topic", topics.Command())

	if m.onConnected != nil {
		m.onConnected()
	}
	m.wake()
}

// handleDisconnect runs on broker connection loss.
func (m *Manager) handleDisconnect(err error) {
	m.mu.Lock()
	m.state = StateDisconnected
	m.mu.Unlock()
	m.logger.Warn("session disconnected", "error", err)
}

// handleInbound runs inline in the broker's event context for every
// message on the command topic. The dispatcher is synchronous and its
// handlers are required to be fast; the response goes out through the
// async path, never as a direct publish from this callback.
func (m *Manager) handleInbound(topic string, payload []byte) error {
	result, message := m.dispatcher.Execute(topic, payload)

	body, err := json.Marshal(commandResponse{Result: result.String(), Message: message})
	if err != nil {
		return fmt.Errorf("encoding command response: %w", err)
	}

	if err := m.PublishAsync(m.broker.Topics().Response(), body); err != nil {
		m.logger.Warn("command response dropped", "result", result.String(), "error", err)
	}
	return nil
}

// PublishAsync appends a message to the bounded publish queue. This is
// the mandatory outbound path for event-callback contexts; it never
// blocks on network I/O.
//
// Returns:
//   - error: ErrQueueFull when the queue is at capacity; the message is
//     dropped and no implicit retry occurs
func (m *Manager) PublishAsync(topic string, payload []byte) error {
	return m.enqueue(topic, payload, false)
}

// PublishAsyncRetained queues a retained publish. Used for discovery
// configs and availability markers that late subscribers must see.
func (m *Manager) PublishAsyncRetained(topic string, payload []byte) error {
	return m.enqueue(topic, payload, true)
}

func (m *Manager) enqueue(topic string, payload []byte, retained bool) error {
	msg, err := m.queue.Enqueue(topic, payload, retained)
	if err != nil {
		m.logger.Warn("publish queue full, message dropped", "topic", topic)
		return err
	}

	m.logger.Debug("message queued", "id", msg.ID, "topic", topic, "depth", m.queue.Len())
	m.wake()
	return nil
}

// PublishSync transmits directly, blocking until the broker accepts the
// message. Reserved for foreground contexts such as commissioning
// tools; it must never be called from a session event callback.
func (m *Manager) PublishSync(topic string, payload []byte) error {
	err := m.broker.Publish(topic, payload, byte(m.cfg.QoS), false)
	m.recordAttempt(err == nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Health returns the current health snapshot.
func (m *Manager) Health() HealthSnapshot {
	m.healthMu.Lock()
	failures := m.consecutiveFailures
	lastSuccess := m.lastSuccess
	attempts := m.publishAttempts
	m.healthMu.Unlock()

	depth := m.queue.Len()
	capacity := m.queue.Capacity()

	snapshot := HealthSnapshot{
		ConsecutiveFailures: failures,
		QueueDepth:          depth,
		QueueCapacity:       capacity,
		Classification:      classify(m.cfg.Health, failures, lastSuccess, attempts, depth, capacity),
	}
	if !lastSuccess.IsZero() {
		snapshot.SinceLastSuccess = time.Since(lastSuccess)
	}
	return snapshot
}

// QueueDepth returns the current outbound queue depth.
func (m *Manager) QueueDepth() int {
	return m.queue.Len()
}

// wake nudges the publisher loop without blocking.
func (m *Manager) wake() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// runPublisher is the dedicated publisher loop, the only context that
// performs blocking transmits. Messages go out in FIFO order; a failed
// transmit is retried immediately at most MaxRetries times, then
// dropped.
func (m *Manager) runPublisher() {
	defer m.wg.Done()

	for {
		msg, ok := m.queue.Dequeue()
		if !ok {
			select {
			case <-m.notify:
				continue
			case <-m.done:
				return
			}
		}

		m.transmit(msg)

		select {
		case <-m.done:
			return
		default:
		}
	}
}

// transmit attempts delivery of one message, applying the bounded
// immediate-retry policy and recording each outcome.
func (m *Manager) transmit(msg OutboundMessage) {
	attempts := 1 + m.cfg.Queue.MaxRetries
	for i := 0; i < attempts; i++ {
		err := m.broker.Publish(msg.Topic, msg.Payload, byte(m.cfg.QoS), msg.Retained)
		m.recordAttempt(err == nil)
		if err == nil {
			m.logger.Debug("message published", "id", msg.ID, "topic", msg.Topic,
				"queued_for", time.Since(msg.EnqueuedAt))
			return
		}
		m.logger.Warn("publish failed", "id", msg.ID, "topic", msg.Topic,
			"attempt", i+1, "error", err)
	}
	m.logger.Warn("message dropped after retries", "id", msg.ID, "topic", msg.Topic)
}

// recordAttempt updates publish health accounting for one outcome.
func (m *Manager) recordAttempt(success bool) {
	m.healthMu.Lock()
	m.publishAttempts++
	if success {
		m.consecutiveFailures = 0
		m.lastSuccess = time.Now()
	} else {
		m.consecutiveFailures++
	}
	m.healthMu.Unlock()
}
