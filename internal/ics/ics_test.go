package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/logging"
)

var sampleFeed = strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//slotfinder//test//EN
BEGIN:VEVENT
UID:standup@test
DTSTAMP:20250301T000000Z
DTSTART:20250303T090000Z
DTEND:20250303T091500Z
RRULE:FREQ=DAILY;COUNT=10
EXDATE:20250311T090000Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:standup@test
DTSTAMP:20250301T000000Z
RECURRENCE-ID:20250312T090000Z
DTSTART:20250312T100000Z
DTEND:20250312T101500Z
SUMMARY:Standup moved
END:VEVENT
BEGIN:VEVENT
UID:lunch@test
DTSTAMP:20250301T000000Z
DTSTART:20250310T120000Z
DTEND:20250310T130000Z
TRANSP:TRANSPARENT
SUMMARY:Lunch
END:VEVENT
BEGIN:VEVENT
UID:review@test
DTSTAMP:20250301T000000Z
DTSTART:20250310T140000Z
DTEND:20250310T150000Z
STATUS:TENTATIVE
SUMMARY:Review
END:VEVENT
BEGIN:VEVENT
UID:cancelled@test
DTSTAMP:20250301T000000Z
DTSTART:20250310T160000Z
DTEND:20250310T170000Z
STATUS:CANCELLED
SUMMARY:Cancelled
END:VEVENT
BEGIN:VEVENT
UID:holiday@test
DTSTAMP:20250301T000000Z
DTSTART;VALUE=DATE:20250313
DTEND;VALUE=DATE:20250314
SUMMARY:Holiday
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")

func utc(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

func sampleWindow() interval.Interval {
	return interval.New(utc(10, 0, 0), utc(14, 0, 0))
}

func TestParse(t *testing.T) {
	events, skipped, err := Parse([]byte(sampleFeed), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, events, 6)

	assert.Equal(t, "FREQ=DAILY;COUNT=10", events[0].RRule)
	require.Len(t, events[0].ExDates, 1)
	assert.True(t, events[0].ExDates[0].Equal(utc(11, 9, 0)))
	require.NotNil(t, events[1].RecurrenceID)
	assert.True(t, events[2].Transparent)
	assert.False(t, events[2].Blocks())
	assert.Equal(t, "TENTATIVE", events[3].Status)
	assert.False(t, events[4].Blocks())
	assert.True(t, events[5].AllDay)
	assert.True(t, events[5].Start.Equal(utc(13, 0, 0)))
	assert.True(t, events[5].End.Equal(utc(14, 0, 0)))
}

func TestParse_Errors(t *testing.T) {
	_, _, err := Parse(nil, time.UTC)
	assert.Error(t, err)

	_, _, err = Parse([]byte("not a calendar"), time.UTC)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	events, _, err := Parse([]byte(sampleFeed), time.UTC)
	require.NoError(t, err)

	busy, err := Expand(events, sampleWindow(), 0)
	require.NoError(t, err)

	type entry struct {
		start  time.Time
		status availability.Status
		label  string
	}
	expected := []entry{
		{utc(10, 9, 0), availability.StatusBusy, "Standup"},
		{utc(10, 14, 0), availability.StatusTentative, "Review"},
		{utc(12, 10, 0), availability.StatusBusy, "Standup moved"},
		{utc(13, 0, 0), availability.StatusBusy, "Holiday"},
	}
	require.Len(t, busy, len(expected))
	for i, e := range expected {
		assert.True(t, busy[i].Start.Equal(e.start), "entry %d starts %s", i, busy[i].Start)
		assert.Equal(t, e.status, busy[i].Status)
		assert.Equal(t, e.label, busy[i].Label)
	}
	assert.Equal(t, 15*time.Minute, busy[0].Duration())
	assert.Equal(t, 24*time.Hour, busy[3].Duration())
}

func TestExpand_InstanceRunningIntoWindow(t *testing.T) {
	events := []Event{{
		UID:   "night@test",
		Start: utc(1, 23, 0),
		End:   utc(2, 1, 0),
		RRule: "FREQ=DAILY",
	}}

	busy, err := Expand(events, interval.New(utc(10, 0, 0), utc(10, 12, 0)), 0)
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(utc(9, 23, 0)))
}

func TestExpand_InvalidRRule(t *testing.T) {
	events := []Event{{UID: "x", Start: utc(10, 9, 0), End: utc(10, 10, 0), RRule: "FREQ=SOMETIMES"}}
	_, err := Expand(events, sampleWindow(), 0)
	assert.Error(t, err)
}

func TestExpand_Cap(t *testing.T) {
	events := []Event{{UID: "x", Start: utc(10, 0, 0), End: utc(10, 0, 1), RRule: "FREQ=MINUTELY"}}
	busy, err := Expand(events, sampleWindow(), 3)
	require.NoError(t, err)
	assert.Len(t, busy, 3)
}

func TestFetcher_ConditionalRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch {
		case n == 1:
			w.Header().Set("ETag", `"v1"`)
			_, _ = w.Write([]byte(sampleFeed))
		case r.Header.Get("If-None-Match") == `"v1"` && n == 2:
			w.WriteHeader(http.StatusNotModified)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), logging.Discard())
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/feed.ics")
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(body))

	body, err = f.Fetch(ctx, srv.URL+"/feed.ics")
	require.NoError(t, err, "304 serves the cached body")
	assert.Equal(t, sampleFeed, string(body))

	body, err = f.Fetch(ctx, srv.URL+"/feed.ics")
	require.NoError(t, err, "server errors fall back to the cached body")
	assert.Equal(t, sampleFeed, string(body))

	_, err = f.Fetch(ctx, srv.URL+"/other.ics")
	assert.Error(t, err)

	_, err = f.Fetch(ctx, "")
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://calendar.example.com/...(redacted)", RedactURL("https://calendar.example.com/private/abc.ics?token=x"))
	assert.Equal(t, "ics://...(redacted)", RedactURL("::not a url"))
}

func TestProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	p := NewProvider(NewFetcher(srv.Client(), logging.Discard()),
		map[string]string{"Alice@example.com": srv.URL + "/alice.ics"}, time.UTC, logging.Discard())

	window := sampleWindow()
	busy, err := p.BusyPeriods(context.Background(), "alice@example.com", window.Start, window.End)
	require.NoError(t, err)
	assert.Len(t, busy, 4)

	_, err = p.BusyPeriods(context.Background(), "bob@example.com", window.Start, window.End)
	assert.Error(t, err)

	wh, err := p.WorkingHours(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Nil(t, wh)
	assert.Equal(t, instrumentation.ProviderICS, p.ProviderName("alice@example.com"))
}
