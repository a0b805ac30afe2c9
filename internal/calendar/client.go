package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/token"
)

// Client wraps the Google Calendar service
type Client struct {
	svc *calendar.Service
	// calendarIDs maps lower-cased participant ids to calendar ids.
	calendarIDs map[string]string
}

// NewClient creates a Calendar client. Tokens come from tokenProvider when it
// holds one; otherwise Application Default Credentials are used.
// calendarIDs overrides the calendar queried per participant.
func NewClient(ctx context.Context, tokenProvider token.Provider, calendarIDs map[string]string, opts ...option.ClientOption) (*Client, error) {
	if tokenProvider != nil && tokenProvider.HasToken() {
		opts = append(opts, option.WithHTTPClient(token.HTTPClient(ctx, tokenProvider)))
	} else {
		ts, err := google.DefaultTokenSource(ctx, calendar.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find Google credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return NewClientFromService(svc, calendarIDs), nil
}

// NewClientFromService wraps an existing Calendar service.
func NewClientFromService(svc *calendar.Service, calendarIDs map[string]string) *Client {
	ids := make(map[string]string, len(calendarIDs))
	for participant, cal := range calendarIDs {
		ids[strings.ToLower(participant)] = cal
	}
	return &Client{svc: svc, calendarIDs: ids}
}

// CalendarID returns the calendar queried for a participant.
func (c *Client) CalendarID(participantID string) string {
	if id, ok := c.calendarIDs[strings.ToLower(participantID)]; ok && id != "" {
		return id
	}
	return participantID
}

// ProviderName labels metrics and spans.
func (c *Client) ProviderName(string) string {
	return instrumentation.ProviderGoogle
}

// BusyPeriods queries free/busy for one participant.
func (c *Client) BusyPeriods(ctx context.Context, participantID string, start, end time.Time) ([]availability.BusyPeriod, error) {
	calID := c.CalendarID(participantID)
	query := &calendar.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[calID]
	if !ok {
		return nil, fmt.Errorf("freebusy response has no entry for calendar %s", calID)
	}
	if len(cal.Errors) > 0 {
		reasons := make([]string, 0, len(cal.Errors))
		for _, e := range cal.Errors {
			reasons = append(reasons, e.Reason)
		}
		return nil, fmt.Errorf("freebusy failed for calendar %s: %s", calID, strings.Join(reasons, ", "))
	}

	periods := make([]availability.BusyPeriod, 0, len(cal.Busy))
	for _, busy := range cal.Busy {
		bp, err := toBusyPeriod(busy)
		if err != nil {
			return nil, err
		}
		periods = append(periods, bp)
	}
	return periods, nil
}

// WorkingHours is not exposed by the Calendar API.
func (c *Client) WorkingHours(context.Context, string) (*interval.WorkingHours, error) {
	return nil, nil
}

func toBusyPeriod(tp *calendar.TimePeriod) (availability.BusyPeriod, error) {
	start, err := time.Parse(time.RFC3339, tp.Start)
	if err != nil {
		return availability.BusyPeriod{}, fmt.Errorf("invalid busy start %q: %w", tp.Start, err)
	}
	end, err := time.Parse(time.RFC3339, tp.End)
	if err != nil {
		return availability.BusyPeriod{}, fmt.Errorf("invalid busy end %q: %w", tp.End, err)
	}
	return availability.BusyPeriod{
		Interval: interval.New(start, end),
		Status:   availability.StatusBusy,
	}, nil
}
