package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	require.NoError(t, err)
	return m, reader
}

// counterValues sums an int64 counter per value of the given attribute key.
func counterValues(t *testing.T, reader *sdkmetric.ManualReader, name string, key attribute.Key) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(key)
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestMetrics_NativeFallbackReasons(t *testing.T) {
	m, reader := newManualMetrics(t, false)
	ctx := context.Background()

	m.RecordNativeFallback(ctx, FallbackTimeout)
	m.RecordNativeFallback(ctx, FallbackTimeout)
	m.RecordNativeFallback(ctx, FallbackEmpty)
	m.RecordNativeFallback(ctx, FallbackUnavailable)

	got := counterValues(t, reader, "native_finder_fallbacks_total", attrReason)
	assert.Equal(t, map[string]int64{
		FallbackTimeout:     2,
		FallbackEmpty:       1,
		FallbackUnavailable: 1,
	}, got)
}

func TestMetrics_ProviderCallStatuses(t *testing.T) {
	m, reader := newManualMetrics(t, true)
	ctx := context.Background()

	m.RecordProviderCall(ctx, ProviderGraph, "a@example.com", StatusTimeout, 10*time.Second)
	m.RecordProviderCall(ctx, ProviderGraph, "b@example.com", StatusSuccess, time.Second)
	m.RecordProviderCall(ctx, ProviderICS, "room-1", StatusTimeout, 10*time.Second)

	statuses := counterValues(t, reader, "calendar_provider_calls_total", attrStatus)
	assert.Equal(t, map[string]int64{StatusTimeout: 2, StatusSuccess: 1}, statuses)

	// Detailed labels carry domains, never addresses.
	domains := counterValues(t, reader, "calendar_provider_calls_total", attrDomain)
	assert.Equal(t, map[string]int64{"example.com": 2, "unknown": 1}, domains)
}

func TestMetrics_ProposalSources(t *testing.T) {
	m, reader := newManualMetrics(t, false)
	ctx := context.Background()

	m.RecordProposal(ctx, SourceNative, 3)
	m.RecordProposal(ctx, SourceLocal, 0)
	m.RecordProposal(ctx, SourceLocal, 5)

	got := counterValues(t, reader, "meeting_proposals_total", attrSource)
	assert.Equal(t, map[string]int64{SourceNative: 1, SourceLocal: 2}, got)
}
