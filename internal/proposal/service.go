package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/intersect"
	"github.com/teemow/slotfinder/internal/logging"
)

// DefaultNativeTimeout bounds a native finder call.
const DefaultNativeTimeout = 15 * time.Second

// Options tunes provider and native finder access.
type Options struct {
	ProviderTimeout time.Duration
	NativeTimeout   time.Duration
	Concurrency     int
	RateLimit       float64
	RateBurst       int
}

// Service answers availability and meeting-time queries.
type Service struct {
	collector *availability.Collector
	native    NativeFinder
	logger    logging.Logger
	metrics   *instrumentation.Metrics
	opts      Options
}

// NewService creates a Service. native and metrics may be nil.
func NewService(provider availability.Provider, native NativeFinder, logger logging.Logger, metrics *instrumentation.Metrics, opts Options) *Service {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if opts.NativeTimeout <= 0 {
		opts.NativeTimeout = DefaultNativeTimeout
	}
	return &Service{
		collector: availability.NewCollector(provider, logger, metrics, availability.CollectorOptions{
			Timeout:     opts.ProviderTimeout,
			Concurrency: opts.Concurrency,
			RateLimit:   opts.RateLimit,
			Burst:       opts.RateBurst,
		}),
		native:  native,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// GetAvailability returns every participant's busy and free intervals.
// Participants whose provider fails are returned empty and listed in
// Unavailable; ErrNoAvailabilityData is returned only if all of them fail.
func (s *Service) GetAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	requestID := uuid.NewString()
	ctx, span := instrumentation.StartSpan(ctx, "proposal.get_availability",
		instrumentation.NewSpanAttributeBuilder().
			WithParticipants(len(req.Participants)).
			WithRequestID(requestID).
			Build()...)
	defer span.End()

	loc := s.location(req.TimeZone, requestID)
	results := s.collector.Collect(ctx, availability.Query{
		Participants:           req.Participants,
		Window:                 req.Window,
		Location:               loc,
		GranularityMinutes:     req.GranularityMinutes,
		RestrictToWorkingHours: req.WorkHoursOnly,
	})
	if availability.AllFailed(results) {
		err := fmt.Errorf("%w: %d participant lookups failed", ErrNoAvailabilityData, len(results))
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	return &AvailabilityResult{
		RequestID:   requestID,
		TimeZone:    loc.String(),
		PerUser:     availability.Availabilities(results),
		Unavailable: unavailable(results),
	}, nil
}

// ProposeMeetingTimes returns ranked meeting candidates. The native finder
// is tried first; its failures only trigger the local fallback and are
// never returned.
func (s *Service) ProposeMeetingTimes(ctx context.Context, req ProposalRequest) (*ProposalResult, error) {
	requestID := uuid.NewString()
	ctx, span := instrumentation.StartSpan(ctx, "proposal.propose_meeting_times",
		instrumentation.NewSpanAttributeBuilder().
			WithParticipants(len(req.Participants)).
			WithDuration(req.DurationMinutes).
			WithRequestID(requestID).
			Build()...)
	defer span.End()

	loc := s.location(req.TimeZone, requestID)
	result := &ProposalResult{RequestID: requestID, TimeZone: loc.String()}

	if candidates, ok := s.tryNative(ctx, req, requestID); ok {
		result.Source = SourceNative
		result.Candidates = candidates
		s.finish(ctx, span, result)
		return result, nil
	}

	results := s.collector.Collect(ctx, availability.Query{
		Participants:           req.Participants,
		Window:                 req.Window,
		Location:               loc,
		GranularityMinutes:     req.GranularityMinutes,
		RestrictToWorkingHours: req.WorkHoursOnly,
	})
	if availability.AllFailed(results) {
		err := fmt.Errorf("%w: %d participant lookups failed", ErrNoAvailabilityData, len(results))
		instrumentation.SetSpanError(span, err)
		s.logger.Error("local intersection has no data", logging.RequestID(requestID), logging.Err(err))
		return nil, err
	}

	ranked := intersect.FindSlots(availability.Availabilities(results),
		req.DurationMinutes, req.BufferBeforeMinutes, req.BufferAfterMinutes, req.MaxCandidates)

	result.Source = SourceLocal
	result.Candidates = intersect.FilterMinAttendees(ranked, req.MinRequiredAttendees)
	result.Unavailable = unavailable(results)
	s.finish(ctx, span, result)
	return result, nil
}

func (s *Service) finish(ctx context.Context, span trace.Span, result *ProposalResult) {
	span.SetAttributes(
		attribute.String(instrumentation.SpanAttrSource, result.Source),
		attribute.Int(instrumentation.SpanAttrCandidates, len(result.Candidates)),
	)
	instrumentation.SetSpanSuccess(span)
	s.metrics.RecordProposal(ctx, result.Source, len(result.Candidates))
	s.logger.Info("meeting times proposed",
		logging.RequestID(result.RequestID),
		logging.Source(result.Source),
		"candidates", len(result.Candidates),
		"unavailable", len(result.Unavailable))
}

// location resolves the request zone, falling back to UTC for unknown names.
func (s *Service) location(name, requestID string) *time.Location {
	loc, ok := interval.LoadLocation(name)
	if !ok {
		s.logger.Warn("unknown time zone, using UTC",
			logging.RequestID(requestID),
			"time_zone", name)
	}
	return loc
}

func unavailable(results []availability.Result) []string {
	var out []string
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r.Availability.ParticipantID)
		}
	}
	return out
}
