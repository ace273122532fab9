package timesync

import (
	"errors"
	"testing"
)

type fakeSyncer struct {
	calls int
	err   error
}

func (s *fakeSyncer) StartSync() error {
	s.calls++
	return s.err
}

func TestTriggerStartsSync(t *testing.T) {
	syncer := &fakeSyncer{}
	state := NewState(syncer)

	state.Trigger()
	if syncer.calls != 1 {
		t.Errorf("StartSync calls = %d, want 1", syncer.calls)
	}
	if state.Synced() {
		t.Error("Synced() = true before completion, want false")
	}
}

func TestTriggerSkippedWhenSynced(t *testing.T) {
	syncer := &fakeSyncer{}
	state := NewState(syncer)

	state.MarkSynced()
	state.Trigger()
	if syncer.calls != 0 {
		t.Errorf("StartSync calls = %d while synced, want 0", syncer.calls)
	}
}

func TestMarkSynced(t *testing.T) {
	state := NewState(&fakeSyncer{})

	state.MarkSynced()
	if !state.Synced() {
		t.Error("Synced() = false after MarkSynced, want true")
	}
	if state.LastSync().IsZero() {
		t.Error("LastSync() is zero after MarkSynced, want timestamp")
	}
}

func TestReset(t *testing.T) {
	syncer := &fakeSyncer{}
	state := NewState(syncer)

	state.MarkSynced()
	state.Reset()
	if state.Synced() {
		t.Error("Synced() = true after Reset, want false")
	}

	// A trigger after reset starts a fresh round.
	state.Trigger()
	if syncer.calls != 1 {
		t.Errorf("StartSync calls = %d after reset, want 1", syncer.calls)
	}
}

func TestTriggerStartError(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("sntp unavailable")}
	state := NewState(syncer)

	// Errors are logged, not propagated; the flag stays clear.
	state.Trigger()
	if state.Synced() {
		t.Error("Synced() = true after failed start, want false")
	}
}
