package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
)

// StaticProvider serves busy periods listed in the configuration file.
type StaticProvider struct {
	busy map[string][]availability.BusyPeriod
}

// NewStaticProvider converts the busy lists of every static participant.
func NewStaticProvider(cfg *config.Config) (*StaticProvider, error) {
	p := &StaticProvider{busy: make(map[string][]availability.BusyPeriod)}
	for _, participant := range cfg.Participants {
		if cfg.ProviderFor(participant.ID) != config.ProviderStatic {
			continue
		}
		periods, err := participant.BusyPeriods()
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", participant.ID, err)
		}
		p.busy[strings.ToLower(participant.ID)] = periods
	}
	return p, nil
}

// ProviderName labels metrics and spans.
func (p *StaticProvider) ProviderName(string) string {
	return instrumentation.ProviderStatic
}

// BusyPeriods returns the configured periods overlapping [start, end).
// Unknown participants have an empty calendar.
func (p *StaticProvider) BusyPeriods(_ context.Context, participantID string, start, end time.Time) ([]availability.BusyPeriod, error) {
	window := interval.New(start, end)
	var out []availability.BusyPeriod
	for _, b := range p.busy[strings.ToLower(participantID)] {
		if interval.Overlaps(b.Interval, window) {
			out = append(out, b)
		}
	}
	return out, nil
}

// WorkingHours is left to the Router's configured overrides.
func (p *StaticProvider) WorkingHours(context.Context, string) (*interval.WorkingHours, error) {
	return nil, nil
}
