// Package proposal is the scheduling service behind the MCP tools and CLI.
//
// GetAvailability returns each participant's normalized busy and free time.
// ProposeMeetingTimes asks the calendar backend's own meeting-time finder
// first and falls back to intersecting participant availability locally when
// the finder is missing, fails, times out or suggests nothing.
package proposal
