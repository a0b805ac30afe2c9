package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/interval"
)

const directoryConfig = `
default_provider: google
participants:
  - id: alice@example.com
    provider: static
    working_hours: {start: "10:00", end: "18:00", days: [mon, tue]}
    busy:
      - {start: "2025-03-10T09:00:00Z", end: "2025-03-10T10:00:00Z"}
      - {start: "2025-03-12T09:00:00Z", end: "2025-03-12T10:00:00Z", status: tentative}
  - id: bob@example.com
    working_hours: {start: "07:00", end: "15:00"}
  - id: carol@example.com
    provider: graph
`

type fakeBackend struct {
	name  string
	wh    *interval.WorkingHours
	err   error
	calls []string
}

func (f *fakeBackend) BusyPeriods(_ context.Context, id string, start, end time.Time) ([]availability.BusyPeriod, error) {
	f.calls = append(f.calls, "busy:"+id)
	if f.err != nil {
		return nil, f.err
	}
	return []availability.BusyPeriod{{
		Interval: interval.New(start, start.Add(time.Hour)),
		Status:   availability.StatusBusy,
		Label:    f.name,
	}}, nil
}

func (f *fakeBackend) WorkingHours(_ context.Context, id string) (*interval.WorkingHours, error) {
	f.calls = append(f.calls, "wh:"+id)
	return f.wh, f.err
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(directoryConfig))
	require.NoError(t, err)
	return cfg
}

func TestStaticProvider(t *testing.T) {
	p, err := NewStaticProvider(loadConfig(t))
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	busy, err := p.BusyPeriods(ctx, "ALICE@example.com", start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, availability.StatusBusy, busy[0].Status)

	busy, err = p.BusyPeriods(ctx, "alice@example.com", start, start.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, busy, 2)
	assert.Equal(t, availability.StatusTentative, busy[1].Status)

	busy, err = p.BusyPeriods(ctx, "nobody@example.com", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, busy)

	wh, err := p.WorkingHours(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.Nil(t, wh)
}

func TestRouter_Dispatch(t *testing.T) {
	cfg := loadConfig(t)
	static, err := NewStaticProvider(cfg)
	require.NoError(t, err)
	google := &fakeBackend{name: "google"}
	graph := &fakeBackend{name: "graph", wh: &interval.WorkingHours{StartClock: "08:00", EndClock: "16:00"}}

	r, err := NewRouter(cfg, map[string]availability.Provider{
		config.ProviderStatic: static,
		config.ProviderGoogle: google,
		config.ProviderGraph:  graph,
	})
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	busy, err := r.BusyPeriods(ctx, "dave@example.com", start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, "google", busy[0].Label, "unlisted participants use the default provider")

	busy, err = r.BusyPeriods(ctx, "carol@example.com", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "graph", busy[0].Label)

	assert.Equal(t, config.ProviderStatic, r.ProviderName("alice@example.com"))
	assert.Equal(t, config.ProviderGoogle, r.ProviderName("bob@example.com"))
}

func TestRouter_WorkingHours(t *testing.T) {
	cfg := loadConfig(t)
	google := &fakeBackend{name: "google"}
	graph := &fakeBackend{name: "graph", wh: &interval.WorkingHours{StartClock: "08:00", EndClock: "16:00"}}
	static, err := NewStaticProvider(cfg)
	require.NoError(t, err)

	r, err := NewRouter(cfg, map[string]availability.Provider{
		config.ProviderStatic: static,
		config.ProviderGoogle: google,
		config.ProviderGraph:  graph,
	})
	require.NoError(t, err)
	ctx := context.Background()

	wh, err := r.WorkingHours(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "10:00", wh.StartClock)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday}, wh.Days)

	wh, err = r.WorkingHours(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "07:00", wh.StartClock)
	assert.Equal(t, []string{"wh:bob@example.com"}, google.calls, "backend is consulted even when overridden")

	wh, err = r.WorkingHours(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "08:00", wh.StartClock)

	wh, err = r.WorkingHours(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.Nil(t, wh)
}

func TestRouter_OverrideSurvivesBackendError(t *testing.T) {
	cfg := loadConfig(t)
	google := &fakeBackend{err: errors.New("quota exceeded")}
	r, err := NewRouter(cfg, map[string]availability.Provider{config.ProviderGoogle: google})
	require.NoError(t, err)

	wh, err := r.WorkingHours(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "07:00", wh.StartClock)

	_, err = r.WorkingHours(context.Background(), "dave@example.com")
	assert.Error(t, err)
}

func TestRouter_MissingBackend(t *testing.T) {
	r, err := NewRouter(loadConfig(t), map[string]availability.Provider{})
	require.NoError(t, err)

	_, err = r.BusyPeriods(context.Background(), "carol@example.com", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorContains(t, err, `"graph" is not configured`)
	_, err = r.WorkingHours(context.Background(), "carol@example.com")
	assert.Error(t, err)
}
