package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/interval"
)

// Router dispatches provider calls by participant.
type Router struct {
	cfg          *config.Config
	backends     map[string]availability.Provider
	workingHours map[string]interval.WorkingHours
}

// NewRouter creates a Router. backends is keyed by provider kind
// (config.ProviderGoogle and so on); participants routed to a missing
// backend fail individually at lookup time.
func NewRouter(cfg *config.Config, backends map[string]availability.Provider) (*Router, error) {
	r := &Router{
		cfg:          cfg,
		backends:     backends,
		workingHours: make(map[string]interval.WorkingHours),
	}
	for _, p := range cfg.Participants {
		if p.WorkingHours == nil {
			continue
		}
		wh, err := p.WorkingHours.WorkingHours()
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", p.ID, err)
		}
		r.workingHours[strings.ToLower(p.ID)] = wh
	}
	return r, nil
}

func (r *Router) backend(participantID string) (availability.Provider, error) {
	kind := r.cfg.ProviderFor(participantID)
	b, ok := r.backends[kind]
	if !ok || b == nil {
		return nil, fmt.Errorf("calendar provider %q is not configured", kind)
	}
	return b, nil
}

// ProviderName returns the provider kind serving a participant.
func (r *Router) ProviderName(participantID string) string {
	return r.cfg.ProviderFor(participantID)
}

// BusyPeriods delegates to the participant's backend.
func (r *Router) BusyPeriods(ctx context.Context, participantID string, start, end time.Time) ([]availability.BusyPeriod, error) {
	b, err := r.backend(participantID)
	if err != nil {
		return nil, err
	}
	return b.BusyPeriods(ctx, participantID, start, end)
}

// WorkingHours prefers the configured template over the backend's. The
// backend is still consulted so it can release per-participant state.
func (r *Router) WorkingHours(ctx context.Context, participantID string) (*interval.WorkingHours, error) {
	b, err := r.backend(participantID)
	if err != nil {
		return nil, err
	}
	backendWH, err := b.WorkingHours(ctx, participantID)
	if wh, ok := r.workingHours[strings.ToLower(participantID)]; ok {
		return &wh, nil
	}
	return backendWH, err
}
