// Package logging assembles structured slog loggers shared by all guidepress
// components.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// exposes context-aware helpers so pipeline code can automatically tag log
// lines with run IDs, stage names, and page URLs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
