// Package scheduling_tools provides the MCP tools for availability lookup
// and meeting-time proposals.
//
// Available tools:
//   - get_availability: Busy and free intervals per participant
//   - propose_meeting_times: Ranked meeting slots across all participants
//
// Timestamps in arguments must be RFC 3339 with Z or a numeric offset.
// Results are JSON with timestamps rendered in the requested time zone.
package scheduling_tools
