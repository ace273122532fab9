package link

import (
	"fmt"
	"sync"
	"time"

	"github.com/lumatime/lumen-core/internal/infrastructure/config"
)

// eventQueueSize bounds the event channel between the radio driver and
// the transition goroutine. Link events are rare; a full queue means
// the driver is misbehaving and dropping is the safe response.
const eventQueueSize = 16

// Status is the believed state of the wireless link.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusFailed
)

// String returns a stable label for logs and diagnostics.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Credentials identifies the network the machine should join.
type Credentials struct {
	SSID       string
	Passphrase string
}

// AccessPoint describes the currently associated access point.
type AccessPoint struct {
	SSID string
	RSSI int
}

// EventKind discriminates radio events.
type EventKind int

const (
	// EventLinkUp reports a completed association with an acquired address.
	EventLinkUp EventKind = iota

	// EventLinkDown reports loss of association with a driver reason code.
	EventLinkDown
)

// Event is a single radio notification delivered through Deliver.
type Event struct {
	Kind    EventKind
	Reason  int
	Address string
}

// Radio abstracts the physical wireless driver.
//
// Connect initiates association and returns once the attempt is
// underway; completion arrives later as an EventLinkUp or EventLinkDown
// through Deliver. Implementations must not block for longer than a
// dial initiation takes.
type Radio interface {
	Connect(creds Credentials) error
	Disconnect() error
	AccessPoint() (AccessPoint, error)
	SetPowerSave(enabled bool) error
}

// Logger defines the logging interface used by the Machine.
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

// Machine is the wireless link state machine.
//
// All transitions run on a single goroutine fed by the bounded event
// channel, so events are processed in arrival order and callbacks never
// re-enter transition logic.
type Machine struct {
	cfg    config.LinkConfig
	radio  Radio
	logger Logger

	mu             sync.Mutex
	status         Status
	attempts       uint
	creds          Credentials
	started        bool
	failedEmitted  bool
	lastMonitorFix time.Time
	stateChanged   chan struct{}

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	onConnected    []func()
	onDisconnected []func(reason int)
	onFailed       []func()
}

// NewMachine creates a link machine bound to the given radio.
func NewMachine(cfg config.LinkConfig, radio Radio) *Machine {
	return &Machine{
		cfg:          cfg,
		radio:        radio,
		logger:       noopLogger{},
		status:       StatusDisconnected,
		stateChanged: make(chan struct{}),
		events:       make(chan Event, eventQueueSize),
		done:         make(chan struct{}),
	}
}

// SetLogger sets the logger for the machine.
func (m *Machine) SetLogger(logger Logger) {
	m.logger = logger
}

// OnConnected registers a consumer for became-connected edges.
// Consumers run on the transition goroutine and must be fast.
func (m *Machine) OnConnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = append(m.onConnected, fn)
}

// OnDisconnected registers a consumer for became-disconnected edges.
func (m *Machine) OnDisconnected(fn func(reason int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = append(m.onDisconnected, fn)
}

// OnFailed registers a consumer for the terminal failure signal.
// The signal is emitted at most once per Reset cycle.
func (m *Machine) OnFailed(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFailed = append(m.onFailed, fn)
}

// Status returns the believed link status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempts returns the current reconnect attempt count.
func (m *Machine) Attempts() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Start begins connecting with the given credentials and blocks until
// the machine settles at Connected or Failed, or the start timeout
// elapses. On timeout the underlying attempt continues asynchronously;
// only the caller's wait is bounded.
//
// Returns:
//   - Status: the status at return time
//   - error: ErrNoCredentials, ErrAlreadyStarted, ErrRetriesExhausted,
//     or ErrStartTimeout
func (m *Machine) Start(creds Credentials) (Status, error) {
	if creds.SSID == "" {
		return StatusDisconnected, ErrNoCredentials
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return m.Status(), ErrAlreadyStarted
	}
	m.started = true
	m.creds = creds
	m.status = StatusConnecting
	m.mu.Unlock()

	m.wg.Add(2)
	go m.runTransitions()
	go m.runMonitor()

	m.logger.Info("link connecting", "ssid", creds.SSID, "max_attempts", m.cfg.MaxAttempts)
	if err := m.radio.Connect(creds); err != nil {
		m.logger.Error("initial dial failed", "error", err)
		// The monitor loop picks this up; treat it like a link-down event.
		m.Deliver(Event{Kind: EventLinkDown})
	}

	deadline := time.NewTimer(m.cfg.Timeout())
	defer deadline.Stop()

	for {
		m.mu.Lock()
		status := m.status
		changed := m.stateChanged
		m.mu.Unlock()

		switch status {
		case StatusConnected:
			return status, nil
		case StatusFailed:
			return status, ErrRetriesExhausted
		}

		select {
		case <-changed:
		case <-deadline.C:
			return m.Status(), fmt.Errorf("%w: not settled after %v", ErrStartTimeout, m.cfg.Timeout())
		case <-m.done:
			return m.Status(), nil
		}
	}
}

// Stop terminates the transition and monitor goroutines and drops the
// radio association.
func (m *Machine) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	m.mu.Unlock()

	close(m.done)
	m.wg.Wait()
	return m.radio.Disconnect()
}

// Reset clears the terminal Failed state and the retry counter so a
// subsequent reconnect cycle can run. It does not dial.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = 0
	m.failedEmitted = false
	if m.status == StatusFailed {
		m.setStatusLocked(StatusDisconnected)
	}
}

// Deliver hands a radio event to the transition goroutine. It never
// blocks; when the queue is full the event is dropped and the monitor
// loop reconciles the true state on its next tick.
func (m *Machine) Deliver(event Event) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("link event dropped, queue full", "kind", event.Kind)
	}
}

// runTransitions is the single consumer of the event channel.
func (m *Machine) runTransitions() {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.events:
			switch event.Kind {
			case EventLinkUp:
				m.handleLinkUp(event)
			case EventLinkDown:
				m.handleLinkDown(event)
			}
		case <-m.done:
			return
		}
	}
}

// handleLinkUp processes a completed association.
func (m *Machine) handleLinkUp(event Event) {
	m.mu.Lock()
	m.attempts = 0
	m.setStatusLocked(StatusConnected)
	consumers := append([]func(){}, m.onConnected...)
	m.mu.Unlock()

	m.logger.Info("link up", "address", event.Address)

	// Modem-level power save is appropriate once associated.
	if err := m.radio.SetPowerSave(true); err != nil {
		m.logger.Warn("power save not applied", "error", err)
	}

	for _, fn := range consumers {
		fn()
	}
}

// handleLinkDown processes loss of association and drives the bounded
// retry policy.
func (m *Machine) handleLinkDown(event Event) {
	m.mu.Lock()
	m.setStatusLocked(StatusDisconnected)
	consumers := append([]func(int){}, m.onDisconnected...)
	m.mu.Unlock()

	m.logger.Warn("link down", "reason", event.Reason)

	for _, fn := range consumers {
		fn(event.Reason)
	}

	m.reconnect()
}

// reconnect re-dials if the retry budget allows, or enters the terminal
// Failed state. The attempt counter increases monotonically and never
// exceeds the budget; reaching it transitions to Failed. Called from
// the transition goroutine and, rate-limited, from the monitor loop.
func (m *Machine) reconnect() {
	m.mu.Lock()
	if m.attempts < m.cfg.MaxAttempts {
		m.attempts++
	}
	if m.attempts >= m.cfg.MaxAttempts {
		alreadyEmitted := m.failedEmitted
		m.failedEmitted = true
		m.setStatusLocked(StatusFailed)
		consumers := append([]func(){}, m.onFailed...)
		m.mu.Unlock()

		if !alreadyEmitted {
			m.logger.Error("link failed, retry budget exhausted", "attempts", m.cfg.MaxAttempts)
			for _, fn := range consumers {
				fn()
			}
		}
		return
	}

	attempt := m.attempts
	creds := m.creds
	m.setStatusLocked(StatusConnecting)
	m.mu.Unlock()

	m.logger.Info("link retry", "attempt", attempt, "max_attempts", m.cfg.MaxAttempts)
	if err := m.radio.Connect(creds); err != nil {
		m.logger.Error("redial failed", "error", err)
	}
}

// runMonitor periodically reconciles believed status against the
// radio's actual association.
func (m *Machine) runMonitor() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.reconcile()
		case <-m.done:
			return
		}
	}
}

// reconcile corrects missed events in either direction. A believed-down
// link that is actually associated is corrected without re-dialing; a
// believed-up link that is actually gone takes the normal reconnect
// path, at most once per tick interval.
func (m *Machine) reconcile() {
	ap, err := m.radio.AccessPoint()
	associated := err == nil

	m.mu.Lock()
	status := m.status
	m.mu.Unlock()

	switch {
	case associated && status != StatusConnected && status != StatusFailed:
		m.logger.Info("monitor: link present, correcting status", "ssid", ap.SSID, "rssi", ap.RSSI)
		m.mu.Lock()
		m.attempts = 0
		m.setStatusLocked(StatusConnected)
		consumers := append([]func(){}, m.onConnected...)
		m.mu.Unlock()
		for _, fn := range consumers {
			fn()
		}

	case !associated && status == StatusConnected:
		m.mu.Lock()
		if time.Since(m.lastMonitorFix) < m.cfg.Interval() {
			m.mu.Unlock()
			return
		}
		m.lastMonitorFix = time.Now()
		m.setStatusLocked(StatusDisconnected)
		consumers := append([]func(int){}, m.onDisconnected...)
		m.mu.Unlock()

		m.logger.Warn("monitor: link lost, reconnecting")
		for _, fn := range consumers {
			fn(0)
		}
		m.reconnect()
	}
}

// setStatusLocked updates status and wakes Start waiters.
// Callers must hold m.mu.
func (m *Machine) setStatusLocked(status Status) {
	if m.status == status {
		return
	}
	m.status = status
	close(m.stateChanged)
	m.stateChanged = make(chan struct{})
}
