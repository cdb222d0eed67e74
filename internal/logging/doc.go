// Package logging assembles the slog loggers used by the exposure meter.
//
// Output always goes to stderr or another caller-supplied writer, never to
// stdout, because stdout carries the MCP protocol when the server runs. The
// package also provides a no-op logger for library code constructed without
// one, and attribute helpers so every component tags its lines the same way.
package logging
