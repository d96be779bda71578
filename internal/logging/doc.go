// Package logging assembles structured slog loggers used across panograb.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing (stderr plus the log file in the configured log directory), and
// exposes context-aware helpers so pipeline code tags log lines with the item
// being processed and the run correlation ID. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
