package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// testStore opens a store backed by a fresh temp database.
func testStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "lumen.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return st
}

func testRecord() Record {
	return Record{
		LinkSSID:       "HomeNet",
		LinkPassphrase: "hunter2hunter2",
		BrokerHost:     "broker.example",
		BrokerPort:     8883,
		BrokerTLS:      true,
		BrokerUsername: "lumen",
		BrokerPassword: "secret",
		BrokerClientID: "lumen-abc123",
	}
}

func TestLoad_NoRecord(t *testing.T) {
	st := testStore(t)

	_, err := st.Load(context.Background())
	if !errors.Is(err, ErrNoRecord) {
		t.Errorf("Load() error = %v, want ErrNoRecord", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if rec.Version != SchemaVersion {
		t.Errorf("Version = %d, want %d", rec.Version, SchemaVersion)
	}
	if rec.LinkSSID != "HomeNet" {
		t.Errorf("LinkSSID = %q, want %q", rec.LinkSSID, "HomeNet")
	}
	if rec.BrokerPort != 8883 {
		t.Errorf("BrokerPort = %d, want 8883", rec.BrokerPort)
	}
	if !rec.BrokerTLS {
		t.Error("BrokerTLS = false, want true")
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero, want timestamp")
	}
	if !rec.HasLinkCredentials() {
		t.Error("HasLinkCredentials() = false, want true")
	}
}

func TestSave_Replaces(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	updated := testRecord()
	updated.LinkSSID = "NewNet"
	if err := st.Save(ctx, updated); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	rec, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.LinkSSID != "NewNet" {
		t.Errorf("LinkSSID = %q, want %q after replace", rec.LinkSSID, "NewNet")
	}
}

func TestLoad_VersionMismatch(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Simulate a record written by an incompatible firmware revision.
	if _, err := st.db.ExecContext(ctx,
		`UPDATE commissioning_record SET schema_version = 99 WHERE id = 1`); err != nil {
		t.Fatalf("forcing schema version: %v", err)
	}

	_, err := st.Load(ctx)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("Load() error = %v, want ErrVersionMismatch", err)
	}
}

func TestClear(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	_, err := st.Load(ctx)
	if !errors.Is(err, ErrNoRecord) {
		t.Errorf("Load() after Clear error = %v, want ErrNoRecord", err)
	}

	// Clearing an empty store is not an error
	if err := st.Clear(ctx); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	st := testStore(t)

	if err := st.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
