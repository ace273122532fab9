// Package store persists the device's commissioning record: wireless
// link credentials and broker configuration.
//
// The record is a single versioned row in a SQLite database. Versioning
// protects the daemon from reading a record written by an incompatible
// firmware revision: a schema version mismatch surfaces as
// ErrVersionMismatch and the caller falls back to built-in defaults
// rather than failing.
//
// This package manages:
//   - Opening the SQLite file with WAL mode and busy timeout
//   - Load/Save of the versioned record
//   - Clearing credentials (factory reset path)
//
// Usage:
//
//	st, err := store.Open(store.Config{Path: cfg.Store.Path})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rec, err := st.Load(ctx)
//	if errors.Is(err, store.ErrNoRecord) || errors.Is(err, store.ErrVersionMismatch) {
//	    rec = store.DefaultRecord(cfg)
//	}
package store
