// Package cmd implements the command-line interface for slotfinder.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the scheduling tools
//   - availability: Print per-participant busy and free periods for a window
//   - propose: Rank candidate meeting times for a group of participants
//   - config: Write an example configuration or validate an existing one
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Global flags select the configuration file, an optional .env file that is
// loaded before flags are read, and the log format.
package cmd
