// Package logging assembles structured slog loggers and formatting helpers used
// across subenc.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so runner code can tag log lines
// with the run id and phase. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Log lines go to stderr (and optionally a file); stdout is reserved for the
// run report.
package logging
