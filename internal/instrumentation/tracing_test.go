package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("propose_meeting_times").
		WithProvider(ProviderGraph).
		WithParticipants(3).
		WithDuration(30).
		WithRequestID("req-1").
		Build()

	if len(attrs) != 5 {
		t.Fatalf("expected 5 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrTool] != "propose_meeting_times" {
		t.Errorf("unexpected tool %v", attrMap[SpanAttrTool])
	}
	if attrMap[SpanAttrProvider] != ProviderGraph {
		t.Errorf("unexpected provider %v", attrMap[SpanAttrProvider])
	}
	if attrMap[SpanAttrParticipants] != int64(3) {
		t.Errorf("unexpected participants %v", attrMap[SpanAttrParticipants])
	}
	if attrMap[SpanAttrRequestID] != "req-1" {
		t.Errorf("unexpected request id %v", attrMap[SpanAttrRequestID])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("get_availability").
		WithProvider("").
		WithRequestID("").
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute, got %d", len(attrs))
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "get_availability")
	if GetTraceID(ctx) == "" || GetSpanID(ctx) == "" {
		t.Error("expected valid span context")
	}
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	if ended[0].Name() != "tool.get_availability" {
		t.Errorf("unexpected span name %q", ended[0].Name())
	}
}

func TestStartProviderSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartProviderSpan(context.Background(), ProviderGoogle, "availability")
	SetSpanError(span, errors.New("backend down"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	if ended[0].Name() != "calendar.google.availability" {
		t.Errorf("unexpected span name %q", ended[0].Name())
	}
	if len(ended[0].Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestStartSpan_AddEvent(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "proposal.propose")
	AddSpanEvent(span, "native_fallback")
	SetSpanError(span, nil)
	span.End()

	if got := recorder.Ended()[0].Events(); len(got) != 1 || got[0].Name != "native_fallback" {
		t.Errorf("unexpected events %v", got)
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if GetTraceID(context.Background()) != "" {
		t.Error("expected empty trace id")
	}
	if GetSpanID(context.Background()) != "" {
		t.Error("expected empty span id")
	}
}
