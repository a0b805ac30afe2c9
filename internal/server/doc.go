// Package server provides the MCP server context, the wiring that turns a
// configuration into a scheduling service, the streamable HTTP transport
// and the metrics and health HTTP server used alongside it.
//
// ServerContext carries the scheduling service together with the optional
// instrumentation provider and audit logger that tool handlers report to.
// NewScheduling creates only the calendar backends some participant is
// routed to; a backend that cannot be created degrades its participants
// individually instead of failing startup. Background jobs such as ICS
// prefetching run between Scheduling.Start and Scheduling.Stop.
package server
