// Package logging assembles structured slog loggers and formatting helpers used
// across copycat.
//
// It owns the console and JSON handlers, tees daemon output into a per-run JSON
// log file, and exposes context-aware helpers so the poll loop can tag every
// line about a volume with its identity and label. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
