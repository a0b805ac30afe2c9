// Package common provides shared utilities for MCP tool implementations:
// the instrumentation wrapper every tool is registered through and helpers
// for reading loosely typed tool arguments.
package common
