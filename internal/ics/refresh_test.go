package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/slotfinder/internal/logging"
)

func TestRefresher_RefreshAll(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/broken.ics" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(srv.Client(), logging.Discard())
	r, err := NewRefresher(fetcher, map[string]string{
		"alice@example.com": srv.URL + "/team.ics",
		"bob@example.com":   srv.URL + "/team.ics",
		"carol@example.com": srv.URL + "/broken.ics",
	}, "@every 1h", logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, 1, r.RefreshAll(context.Background()))
	assert.Equal(t, int32(2), hits.Load(), "shared feeds are fetched once")

	r.Start()
	r.Stop()
}

func TestNewRefresher_InvalidSchedule(t *testing.T) {
	_, err := NewRefresher(NewFetcher(nil, nil), nil, "every now and then", nil)
	assert.Error(t, err)
}
