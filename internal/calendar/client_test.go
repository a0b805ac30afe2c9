package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/instrumentation"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, ids map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewClientFromService(svc, ids)
}

func TestBusyPeriods(t *testing.T) {
	var req calendar.FreeBusyRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(calendar.FreeBusyResponse{
			Calendars: map[string]calendar.FreeBusyCalendar{
				"team-alice@group.calendar.google.com": {Busy: []*calendar.TimePeriod{
					{Start: "2025-03-10T09:00:00Z", End: "2025-03-10T10:00:00Z"},
					{Start: "2025-03-10T14:00:00+01:00", End: "2025-03-10T15:00:00+01:00"},
				}},
			},
		})
	}, map[string]string{"Alice@example.com": "team-alice@group.calendar.google.com"})

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	busy, err := client.BusyPeriods(context.Background(), "alice@example.com", start, end)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10T08:00:00Z", req.TimeMin)
	assert.Equal(t, "2025-03-10T18:00:00Z", req.TimeMax)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "team-alice@group.calendar.google.com", req.Items[0].Id)

	require.Len(t, busy, 2)
	assert.Equal(t, availability.StatusBusy, busy[0].Status)
	assert.True(t, busy[1].Start.Equal(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)))
}

func TestBusyPeriods_CalendarErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(calendar.FreeBusyResponse{
			Calendars: map[string]calendar.FreeBusyCalendar{
				"bob@example.com": {Errors: []*calendar.Error{{Reason: "notFound"}}},
			},
		})
	}, nil)

	_, err := client.BusyPeriods(context.Background(), "bob@example.com", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notFound")

	_, err = client.BusyPeriods(context.Background(), "carol@example.com", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err, "missing calendar entry")
}

func TestBusyPeriods_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	}, nil)

	_, err := client.BusyPeriods(context.Background(), "bob@example.com", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestBusyPeriods_InvalidTimestamp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(calendar.FreeBusyResponse{
			Calendars: map[string]calendar.FreeBusyCalendar{
				"bob@example.com": {Busy: []*calendar.TimePeriod{{Start: "soon", End: "later"}}},
			},
		})
	}, nil)

	_, err := client.BusyPeriods(context.Background(), "bob@example.com", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestWorkingHoursAndName(t *testing.T) {
	client := NewClientFromService(nil, nil)
	wh, err := client.WorkingHours(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Nil(t, wh)
	assert.Equal(t, instrumentation.ProviderGoogle, client.ProviderName("alice@example.com"))
	assert.Equal(t, "alice@example.com", client.CalendarID("alice@example.com"))
}
