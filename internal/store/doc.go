// Package store persists run history in SQLite.
//
// A run row plus its assignments, final ledger snapshot and roster order
// are written in one transaction after a run completes. The read side
// serves the matrix/export commands and turns a stored run back into
// history records for incremental-mode seeding.
//
// SQLite is opened in WAL mode with a single writer connection; the
// scheduler only ever writes from one goroutine, so contention handling
// beyond the busy timeout is unnecessary.
package store
