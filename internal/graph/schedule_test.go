package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/slotfinder/internal/availability"
)

const scheduleBody = `{
  "value": [{
    "scheduleId": "alice@contoso.com",
    "scheduleItems": [
      {"status": "busy", "subject": "Standup",
       "start": {"dateTime": "2025-03-10T09:00:00.0000000", "timeZone": "UTC"},
       "end": {"dateTime": "2025-03-10T09:30:00.0000000", "timeZone": "UTC"}},
      {"status": "tentative",
       "start": {"dateTime": "2025-03-10T13:00:00.0000000", "timeZone": "UTC"},
       "end": {"dateTime": "2025-03-10T14:00:00.0000000", "timeZone": "UTC"}},
      {"status": "oof",
       "start": {"dateTime": "2025-03-11T00:00:00.0000000", "timeZone": "UTC"},
       "end": {"dateTime": "2025-03-12T00:00:00.0000000", "timeZone": "UTC"}}
    ],
    "workingHours": {
      "daysOfWeek": ["monday", "tuesday", "wednesday", "thursday", "friday"],
      "startTime": "08:00:00.0000000",
      "endTime": "17:00:00.0000000",
      "timeZone": {"name": "Pacific Standard Time"}
    }
  }]
}`

type recordedRequest struct {
	Method string
	Path   string
	Prefer string
	Body   map[string]interface{}
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Prefer: r.Header.Get("Prefer")}
		_ = json.Unmarshal(data, &rec.Body)
		requests = append(requests, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestBusyPeriods(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, scheduleBody)
	client := NewClient(srv.Client(), Options{BaseURL: srv.URL + "/", Organizer: "organizer@contoso.com"})

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	busy, err := client.BusyPeriods(context.Background(), "Alice@contoso.com", start, start.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, busy, 3)

	assert.Equal(t, availability.StatusBusy, busy[0].Status)
	assert.Equal(t, "Standup", busy[0].Label)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, availability.StatusTentative, busy[1].Status)
	assert.Equal(t, availability.StatusBusy, busy[2].Status)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/users/organizer@contoso.com/calendar/getSchedule", req.Path)
	assert.Equal(t, `outlook.timezone="UTC"`, req.Prefer)
	assert.Equal(t, []interface{}{"Alice@contoso.com"}, req.Body["schedules"])
	assert.Equal(t, "2025-03-10T00:00:00", req.Body["startTime"].(map[string]interface{})["dateTime"])

	// Working hours come from the same response without another request.
	wh, err := client.WorkingHours(context.Background(), "alice@contoso.com")
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.Equal(t, "08:00", wh.StartClock)
	assert.Equal(t, "17:00", wh.EndClock)
	assert.Equal(t, "America/Los_Angeles", wh.TimeZone)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, wh.Days)
	assert.Len(t, *requests, 1)
}

func TestWorkingHours_FetchesWhenNotCached(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, scheduleBody)
	client := NewClient(srv.Client(), Options{BaseURL: srv.URL})

	wh, err := client.WorkingHours(context.Background(), "alice@contoso.com")
	require.NoError(t, err)
	require.NotNil(t, wh)
	require.Len(t, *requests, 1)
	assert.Equal(t, "/me/calendar/getSchedule", (*requests)[0].Path)
}

func TestBusyPeriods_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusForbidden, `{"error":{"code":"ErrorAccessDenied","message":"Access is denied."}}`)
		client := NewClient(srv.Client(), Options{BaseURL: srv.URL})

		_, err := client.BusyPeriods(context.Background(), "alice@contoso.com", time.Now(), time.Now().Add(time.Hour))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "ErrorAccessDenied", apiErr.Code)
	})

	t.Run("schedule error", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"value":[{"scheduleId":"alice@contoso.com","error":{"message":"not found","responseCode":"ErrorMailRecipientNotFound"}}]}`)
		client := NewClient(srv.Client(), Options{BaseURL: srv.URL})

		_, err := client.BusyPeriods(context.Background(), "alice@contoso.com", time.Now(), time.Now().Add(time.Hour))
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("missing schedule", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"value":[]}`)
		client := NewClient(srv.Client(), Options{BaseURL: srv.URL})

		_, err := client.BusyPeriods(context.Background(), "alice@contoso.com", time.Now(), time.Now().Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"value":`)
		client := NewClient(srv.Client(), Options{BaseURL: srv.URL})

		_, err := client.BusyPeriods(context.Background(), "alice@contoso.com", time.Now(), time.Now().Add(time.Hour))
		assert.Error(t, err)
	})
}

func TestScheduleStatus(t *testing.T) {
	assert.Equal(t, availability.StatusFree, scheduleStatus("free"))
	assert.Equal(t, availability.StatusFree, scheduleStatus("workingElsewhere"))
	assert.Equal(t, availability.StatusTentative, scheduleStatus("tentative"))
	assert.Equal(t, availability.StatusBusy, scheduleStatus("oof"))
	assert.Equal(t, availability.StatusBusy, scheduleStatus("unknown"))
}

func TestConvertWorkingHours(t *testing.T) {
	assert.Nil(t, convertWorkingHours(nil))
	assert.Nil(t, convertWorkingHours(&workingHours{StartTime: "8am", EndTime: "17:00:00"}))
	assert.Nil(t, convertWorkingHours(&workingHours{StartTime: "08:00:00", EndTime: "17:00:00", DaysOfWeek: []string{"someday"}}))
}

func TestIANAZone(t *testing.T) {
	assert.Equal(t, "Europe/Berlin", IANAZone("W. Europe Standard Time"))
	assert.Equal(t, "Europe/Berlin", IANAZone("Europe/Berlin"))
}
