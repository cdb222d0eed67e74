// Package server implements the MCP (Model Context Protocol) server for the
// exposure meter.
//
// This package provides a JSON-RPC 2.0 server that exposes metering sessions
// and the stateless metering helpers through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Information:
//   - image_load: Load a frame and report its size and working size
//
// Sessions:
//   - meter_session_create: Open a metering session with its own engine
//   - meter_session_close: Discard a session
//   - meter_tick: Meter one frame and return the reading
//   - meter_lock / meter_unlock: Engage or release AE-lock
//
// Configuration:
//   - meter_config_get / meter_config_set: Read or change exposure settings
//   - meter_config_save: Persist settings to the TOML settings file
//
// Analysis:
//   - meter_histogram: Brightness histogram with zone markers, optionally rendered
//   - meter_candidates: List and resolve exposure candidates on one axis
//   - meter_ev: Convert a brightness value to EV
//
// # Sessions
//
// Each session owns a meter.Engine, so smoothing and AE-lock state never
// leak between streams. Ticks re-read the frame from disk every call; a
// session keeps its last metered reading so hosts can keep showing it when a
// tick is out of range.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.Options{Logger: logger, Settings: s})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
