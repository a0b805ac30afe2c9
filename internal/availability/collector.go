package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/logging"
)

// DefaultProviderTimeout bounds a single participant lookup.
const DefaultProviderTimeout = 10 * time.Second

// CollectorOptions tunes provider access.
type CollectorOptions struct {
	// Timeout bounds each participant lookup (both provider calls).
	Timeout time.Duration
	// Concurrency is the number of participants fetched at once. Values
	// below 2 fetch sequentially.
	Concurrency int
	// RateLimit caps provider lookups per second across all requests; zero
	// disables limiting. Burst defaults to 1.
	RateLimit float64
	Burst     int
}

// Query describes one availability collection.
type Query struct {
	Participants           []string
	Window                 interval.Interval
	Location               *time.Location
	GranularityMinutes     int
	RestrictToWorkingHours bool
}

// Result is one participant's outcome. Availability is always usable; Err
// records why it is empty.
type Result struct {
	Availability UserAvailability
	Err          error
}

// Collector fetches and normalizes availability for many participants.
type Collector struct {
	provider Provider
	logger   logging.Logger
	metrics  *instrumentation.Metrics
	opts     CollectorOptions
	limiter  *rate.Limiter
}

// NewCollector creates a Collector. metrics may be nil.
func NewCollector(provider Provider, logger logging.Logger, metrics *instrumentation.Metrics, opts CollectorOptions) *Collector {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProviderTimeout
	}
	c := &Collector{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Collect returns one Result per participant, in participant order.
// Individual failures never abort the batch.
func (c *Collector) Collect(ctx context.Context, q Query) []Result {
	results := make([]Result, len(q.Participants))

	limit := c.opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range q.Participants {
		g.Go(func() error {
			results[i] = c.collectOne(ctx, id, q)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Collector) collectOne(ctx context.Context, participantID string, q Query) Result {
	name := providerName(c.provider, participantID)
	ctx, span := instrumentation.StartProviderSpan(ctx, name, "availability")
	defer span.End()

	started := time.Now()
	busy, wh, err := c.fetch(ctx, participantID, q.Window)

	status := instrumentation.StatusSuccess
	switch {
	case errors.Is(err, ErrTimeout):
		status = instrumentation.StatusTimeout
	case err != nil:
		status = instrumentation.StatusError
	}
	c.metrics.RecordProviderCall(ctx, name, participantID, status, time.Since(started))

	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.logger.Warn("calendar provider failed, using empty availability",
			logging.Participant(participantID),
			logging.Provider(name),
			logging.Err(err))
		return Result{Availability: Empty(participantID), Err: err}
	}

	if wh == nil {
		def := interval.DefaultWorkingHours()
		wh = &def
	}

	ua := Normalize(NormalizeInput{
		ParticipantID:          participantID,
		Busy:                   busy,
		Window:                 q.Window,
		WorkingHours:           wh,
		Location:               q.Location,
		GranularityMinutes:     q.GranularityMinutes,
		RestrictToWorkingHours: q.RestrictToWorkingHours,
	})
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("availability normalized",
		logging.Participant(participantID),
		logging.Provider(name),
		"busy", len(ua.Busy),
		"free", len(ua.Free))
	return Result{Availability: ua}
}

type lookup struct {
	busy []BusyPeriod
	wh   *interval.WorkingHours
}

func (c *Collector) fetch(ctx context.Context, participantID string, window interval.Interval) ([]BusyPeriod, *interval.WorkingHours, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("waiting for provider rate limit: %w", err)
		}
	}

	res, err := CallWithTimeout(ctx, c.opts.Timeout, func(ctx context.Context) (lookup, error) {
		busy, err := c.provider.BusyPeriods(ctx, participantID, window.Start, window.End)
		if err != nil {
			return lookup{}, fmt.Errorf("failed to get busy periods: %w", err)
		}
		wh, err := c.provider.WorkingHours(ctx, participantID)
		if err != nil {
			return lookup{}, fmt.Errorf("failed to get working hours: %w", err)
		}
		return lookup{busy: busy, wh: wh}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	if res.wh != nil {
		if err := res.wh.Validate(); err != nil {
			c.logger.Warn("ignoring invalid working hours from provider",
				logging.Participant(participantID),
				logging.Err(err))
			res.wh = nil
		}
	}
	return res.busy, res.wh, nil
}

func providerName(p Provider, participantID string) string {
	if n, ok := p.(Namer); ok {
		return n.ProviderName(participantID)
	}
	return "provider"
}

// Availabilities extracts the per-participant availability, in order.
func Availabilities(results []Result) []UserAvailability {
	out := make([]UserAvailability, len(results))
	for i, r := range results {
		out[i] = r.Availability
	}
	return out
}

// AllFailed reports whether no participant produced availability data.
func AllFailed(results []Result) bool {
	for _, r := range results {
		if r.Err == nil {
			return false
		}
	}
	return true
}
