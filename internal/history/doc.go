// Package history records every detect and transcode run in a SQLite
// database under the state directory.
//
// A run row is inserted when a phase starts and completed when it finishes,
// together with the per-file failures of that run. Rows left in the running
// state belong to processes that died before Finish. History is advisory:
// callers log a failed write and carry on with the phase.
//
// The schema is versioned; a database created by an incompatible build is
// rejected with ErrSchemaMismatch instead of being migrated in place.
package history
