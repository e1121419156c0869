// Package sqlite provides a SQLite-based implementation of the artifact and
// run store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Both stores share a single database connection:
//
//   - ArtifactStore: classifier and vocabulary blobs with checksums
//   - RunStore: training run history as JSON records
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.critic/data/critic.db
// ($CRITIC_HOME/data/critic.db when CRITIC_HOME is set).
package sqlite
