// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for slotfinder.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: streamable HTTP transport
//   - calendar_provider_calls_total, calendar_provider_call_duration_seconds:
//     per-participant availability lookups by provider kind and status
//   - meeting_proposals_total, meeting_candidates_returned: proposals by source
//   - native_finder_fallbacks_total: native finder results not used, by reason
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: MCP tools
//
// # Tracing
//
// Spans are created for MCP tools (tool.<name>), provider lookups
// (calendar.<provider>.<operation>) and the proposal orchestrator.
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG and
// OTEL_SERVICE_NAME (default: slotfinder).
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordProposal(ctx, instrumentation.SourceLocal, 3)
package instrumentation
