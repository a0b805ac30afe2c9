// Package resources provides MCP resources describing the calendar
// directory. Resources are read-only data sources that MCP clients can fetch
// before calling a tool, for example to learn which participants can be
// scheduled and which time zone requests default to.
package resources
