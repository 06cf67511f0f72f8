// Package sqlite provides the SQLite-backed model registry.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Model names are the table's primary key, so uniqueness holds even when two
// processes register the same name at once.
//
// # Data Location
//
// By default, the database is stored at ~/.ragkit/data/registry.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
