// Command exposure-mcp runs the exposure meter.
//
// With no subcommand it serves the MCP protocol over stdin/stdout. The meter,
// histogram and watch subcommands meter image files directly, and config
// manages the TOML settings file.
//
// Environment variables:
//
//	EXPOSURE_MCP_LOG_LEVEL=debug    Enable debug logging
package main
