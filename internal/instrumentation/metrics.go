package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod   = "method"
	attrPath     = "path"
	attrStatus   = "status"
	attrTool     = "tool"
	attrProvider = "provider"
	attrSource   = "source"
	attrReason   = "reason"
	attrDomain   = "participant_domain"
)

// Metrics records scheduling observability metrics. A nil *Metrics, or one
// built without a meter, silently drops every measurement.
type Metrics struct {
	// HTTP transport
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Calendar provider calls
	providerCallsTotal   metric.Int64Counter
	providerCallDuration metric.Float64Histogram

	// Proposal orchestration
	proposalsTotal       metric.Int64Counter
	nativeFallbacksTotal metric.Int64Counter
	candidatesReturned   metric.Int64Histogram

	// MCP tools
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels adds participant domains to provider call metrics.
	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.providerCallsTotal, err = meter.Int64Counter(
		"calendar_provider_calls_total",
		metric.WithDescription("Total number of calendar provider availability lookups"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_provider_calls_total counter: %w", err)
	}

	m.providerCallDuration, err = meter.Float64Histogram(
		"calendar_provider_call_duration_seconds",
		metric.WithDescription("Calendar provider lookup duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_provider_call_duration_seconds histogram: %w", err)
	}

	m.proposalsTotal, err = meter.Int64Counter(
		"meeting_proposals_total",
		metric.WithDescription("Total number of meeting-time proposals by source"),
		metric.WithUnit("{proposal}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_proposals_total counter: %w", err)
	}

	m.nativeFallbacksTotal, err = meter.Int64Counter(
		"native_finder_fallbacks_total",
		metric.WithDescription("Total number of native finder attempts that fell back to local intersection"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create native_finder_fallbacks_total counter: %w", err)
	}

	m.candidatesReturned, err = meter.Int64Histogram(
		"meeting_candidates_returned",
		metric.WithDescription("Number of candidate slots returned per proposal"),
		metric.WithUnit("{candidate}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 20, 50),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_candidates_returned histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordProviderCall records one participant lookup against a calendar provider.
// The participant is reduced to its domain and only attached with detailed labels.
func (m *Metrics) RecordProviderCall(ctx context.Context, provider, participant, status string, duration time.Duration) {
	if m == nil || m.providerCallsTotal == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, provider),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrDomain, ExtractUserDomain(participant)))
	}
	m.providerCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.providerCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProposal records a finished proposal and how many candidates it returned.
func (m *Metrics) RecordProposal(ctx context.Context, source string, candidates int) {
	if m == nil || m.proposalsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrSource, source))
	m.proposalsTotal.Add(ctx, 1, attrs)
	m.candidatesReturned.Record(ctx, int64(candidates), attrs)
}

// RecordNativeFallback records why the native finder result was not used.
func (m *Metrics) RecordNativeFallback(ctx context.Context, reason string) {
	if m == nil || m.nativeFallbacksTotal == nil {
		return
	}
	m.nativeFallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
