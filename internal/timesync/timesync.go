package timesync

import (
	"sync"
	"sync/atomic"
	"time"
)

// Syncer starts a time synchronisation round. Implementations wrap the
// platform SNTP client; StartSync initiates and returns immediately,
// with completion reported back through MarkSynced.
type Syncer interface {
	StartSync() error
}

// Logger defines the logging interface used by State.
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

// State owns the synced flag.
type State struct {
	syncer Syncer
	logger Logger
	synced atomic.Bool

	mu       sync.Mutex
	lastSync time.Time
}

// NewState creates time-sync state over the given syncer.
func NewState(syncer Syncer) *State {
	return &State{
		syncer: syncer,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the state.
func (s *State) SetLogger(logger Logger) {
	s.logger = logger
}

// Synced reports whether device time is currently trusted.
func (s *State) Synced() bool {
	return s.synced.Load()
}

// LastSync returns when the last successful sync completed.
func (s *State) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// Trigger starts a sync round if one is needed. Safe to call from the
// link machine's became-connected consumer; StartSync initiates and
// returns without blocking.
func (s *State) Trigger() {
	if s.synced.Load() {
		return
	}
	s.logger.Info("starting time sync")
	if err := s.syncer.StartSync(); err != nil {
		s.logger.Warn("time sync start failed", "error", err)
	}
}

// MarkSynced records a completed synchronisation.
func (s *State) MarkSynced() {
	s.synced.Store(true)
	s.mu.Lock()
	s.lastSync = time.Now()
	s.mu.Unlock()
	s.logger.Info("time synchronised")
}

// Reset clears the synced flag. Called on became-disconnected so stale
// time is not trusted across link loss.
func (s *State) Reset() {
	if s.synced.Swap(false) {
		s.logger.Info("time sync state reset")
	}
}
