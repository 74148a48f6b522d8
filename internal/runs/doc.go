// Package runs persists pipeline runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-run recovery, and the status transitions that mirror the
// pipeline stage order. Runs capture artifact paths, dataset fingerprints,
// progress, and review state so stages can coordinate without additional
// shared state; the datasets and models themselves stay in flat files under
// each run's workspace directory.
//
// The database is bookkeeping for in-flight and recent work rather than a
// long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
//
// Treat this package as the single source of truth for run semantics; when you
// add new statuses or metadata fields, update schema.sql and bump schemaVersion.
package runs
