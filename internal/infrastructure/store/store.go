package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store configuration constants.
const (
	// SchemaVersion is the version stamped into every saved record.
	// Load rejects records written with a different version.
	SchemaVersion = 1

	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// Record is the persisted commissioning record: everything the device
// needs to rejoin its network and broker after a power cycle.
type Record struct {
	// Version is the schema version the record was written with.
	Version int

	// LinkSSID and LinkPassphrase are the wireless link credentials.
	// An empty SSID means the device has not been commissioned.
	LinkSSID       string
	LinkPassphrase string

	// Broker connection details.
	BrokerHost     string
	BrokerPort     int
	BrokerTLS      bool
	BrokerUsername string
	BrokerPassword string
	BrokerClientID string

	// UpdatedAt is when the record was last saved.
	UpdatedAt time.Time
}

// HasLinkCredentials reports whether the record carries usable link
// credentials.
func (r Record) HasLinkCredentials() bool {
	return r.LinkSSID != ""
}

// Config contains store configuration options.
// These map to the store section of config.yaml.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging for better concurrent access.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// Store wraps a sql.DB connection holding the commissioning record.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates a new store with the specified configuration.
//
// It performs the following setup:
//  1. Creates the database directory if it doesn't exist
//  2. Opens the database file (creates if not present)
//  3. Configures WAL mode and busy timeout
//  4. Creates the record table if missing
//  5. Sets restrictive file permissions (0600)
//
// Parameters:
//   - cfg: Store configuration
//
// Returns:
//   - *Store: Ready store
//   - error: If opening or schema setup fails
func Open(cfg Config) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// Build connection string with pragmas
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	st := &Store{
		db:   sqlDB,
		path: cfg.Path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying store connection: %w", err)
	}

	if err := st.ensureSchema(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, err
	}

	// Ignore error - file might not exist yet on first run
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Intentional: first run creates file later

	return st, nil
}

// ensureSchema creates the record table if it does not exist.
// The single-row constraint keeps Load/Save trivially atomic.
func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS commissioning_record (
    id               INTEGER PRIMARY KEY CHECK (id = 1),
    schema_version   INTEGER NOT NULL,
    link_ssid        TEXT NOT NULL DEFAULT '',
    link_passphrase  TEXT NOT NULL DEFAULT '',
    broker_host      TEXT NOT NULL DEFAULT '',
    broker_port      INTEGER NOT NULL DEFAULT 0,
    broker_tls       INTEGER NOT NULL DEFAULT 0,
    broker_username  TEXT NOT NULL DEFAULT '',
    broker_password  TEXT NOT NULL DEFAULT '',
    broker_client_id TEXT NOT NULL DEFAULT '',
    updated_at       TEXT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating record table: %w", err)
	}
	return nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the database file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the commissioning record.
//
// Returns:
//   - Record: The persisted record
//   - error: ErrNoRecord if nothing has been saved, ErrVersionMismatch
//     if the record was written with an incompatible schema version,
//     or a wrapped driver error
func (s *Store) Load(ctx context.Context) (Record, error) {
	const query = `
SELECT schema_version, link_ssid, link_passphrase,
       broker_host, broker_port, broker_tls,
       broker_username, broker_password, broker_client_id,
       updated_at
FROM commissioning_record WHERE id = 1`

	var (
		rec       Record
		tls       int
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&rec.Version,
		&rec.LinkSSID, &rec.LinkPassphrase,
		&rec.BrokerHost, &rec.BrokerPort, &tls,
		&rec.BrokerUsername, &rec.BrokerPassword, &rec.BrokerClientID,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoRecord
	}
	if err != nil {
		return Record{}, fmt.Errorf("loading record: %w", err)
	}

	if rec.Version != SchemaVersion {
		return Record{}, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, rec.Version, SchemaVersion)
	}

	rec.BrokerTLS = tls != 0
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		rec.UpdatedAt = t
	}

	return rec, nil
}

// Save writes the commissioning record, replacing any existing one.
// The record is stamped with the current SchemaVersion and timestamp.
func (s *Store) Save(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO commissioning_record (
    id, schema_version, link_ssid, link_passphrase,
    broker_host, broker_port, broker_tls,
    broker_username, broker_password, broker_client_id, updated_at
) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    schema_version   = excluded.schema_version,
    link_ssid        = excluded.link_ssid,
    link_passphrase  = excluded.link_passphrase,
    broker_host      = excluded.broker_host,
    broker_port      = excluded.broker_port,
    broker_tls       = excluded.broker_tls,
    broker_username  = excluded.broker_username,
    broker_password  = excluded.broker_password,
    broker_client_id = excluded.broker_client_id,
    updated_at       = excluded.updated_at`

	tls := 0
	if rec.BrokerTLS {
		tls = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		SchemaVersion,
		rec.LinkSSID, rec.LinkPassphrase,
		rec.BrokerHost, rec.BrokerPort, tls,
		rec.BrokerUsername, rec.BrokerPassword, rec.BrokerClientID,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// Clear removes the commissioning record (factory reset path).
// Clearing a store with no record is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM commissioning_record WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing record: %w", err)
	}
	return nil
}

// HealthCheck verifies the store is accessible.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Store) HealthCheck(ctx context.Context) error {
	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}
