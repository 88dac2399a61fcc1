// Package sqlite provides the SQLite-based known-users store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.usersearch/data/users.db
//
// # Live Queries
//
// Watch keeps a query open and re-runs it after every Upsert or Remove made
// through the same Store. Changes written by other processes are not seen
// until the next write through this Store.
package sqlite
