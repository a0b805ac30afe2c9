package ics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/logging"
)

// Provider serves participants whose calendar is published as an ICS feed.
type Provider struct {
	fetcher *Fetcher
	feeds   map[string]string
	loc     *time.Location
	logger  logging.Logger
}

// NewProvider creates a Provider. feeds maps participant ids to feed URLs;
// loc reads floating and all-day values.
func NewProvider(fetcher *Fetcher, feeds map[string]string, loc *time.Location, logger logging.Logger) *Provider {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, logger)
	}
	if loc == nil {
		loc = time.UTC
	}
	byID := make(map[string]string, len(feeds))
	for id, u := range feeds {
		byID[strings.ToLower(id)] = u
	}
	return &Provider{fetcher: fetcher, feeds: byID, loc: loc, logger: logger}
}

// ProviderName labels metrics and spans.
func (p *Provider) ProviderName(string) string {
	return instrumentation.ProviderICS
}

// BusyPeriods fetches, parses and expands the participant's feed.
func (p *Provider) BusyPeriods(ctx context.Context, participantID string, start, end time.Time) ([]availability.BusyPeriod, error) {
	feedURL, ok := p.feeds[strings.ToLower(participantID)]
	if !ok {
		return nil, errors.New("no ICS feed configured for participant")
	}

	body, err := p.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	events, skipped, err := Parse(body, p.loc)
	if err != nil {
		return nil, err
	}
	for _, e := range skipped {
		p.logger.Warn("skipping unreadable ICS event",
			logging.Participant(participantID),
			"url", RedactURL(feedURL),
			logging.Err(e))
	}

	return Expand(events, interval.New(start, end), DefaultMaxOccurrences)
}

// WorkingHours is not part of ICS feeds.
func (p *Provider) WorkingHours(context.Context, string) (*interval.WorkingHours, error) {
	return nil, nil
}
