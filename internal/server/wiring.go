package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/calendar"
	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/directory"
	"github.com/teemow/slotfinder/internal/graph"
	"github.com/teemow/slotfinder/internal/ics"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/logging"
	"github.com/teemow/slotfinder/internal/proposal"
	"github.com/teemow/slotfinder/internal/token"
)

// Scheduling is the assembled scheduling service plus the background jobs
// its backends need while serving.
type Scheduling struct {
	Service *proposal.Service

	icsRefresher *ics.Refresher
}

// Start launches background jobs. One-shot commands skip it.
func (s *Scheduling) Start() {
	if s.icsRefresher != nil {
		s.icsRefresher.Start()
	}
}

// Stop halts background jobs.
func (s *Scheduling) Stop() {
	if s.icsRefresher != nil {
		s.icsRefresher.Stop()
	}
}

// NewScheduling builds the calendar backends named in cfg, routes
// participants between them and returns the scheduling service. Backends no
// participant uses are not created.
func NewScheduling(ctx context.Context, cfg *config.Config, logger logging.Logger, metrics *instrumentation.Metrics) (*Scheduling, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	backends := make(map[string]availability.Provider)
	scheduling := &Scheduling{}

	if cfg.UsesProvider(config.ProviderStatic) {
		static, err := directory.NewStaticProvider(cfg)
		if err != nil {
			return nil, err
		}
		backends[config.ProviderStatic] = static
	}

	if cfg.UsesProvider(config.ProviderICS) {
		feeds := make(map[string]string)
		for _, p := range cfg.Participants {
			if p.ICSURL != "" {
				feeds[p.ID] = p.ICSURL
			}
		}
		loc, _ := interval.LoadLocation(cfg.TimeZone)
		fetcher := ics.NewFetcher(&http.Client{Timeout: cfg.ICS.FetchTimeout}, logger)
		backends[config.ProviderICS] = ics.NewProvider(fetcher, feeds, loc, logger)

		if cfg.ICS.RefreshSchedule != "" {
			refresher, err := ics.NewRefresher(fetcher, feeds, cfg.ICS.RefreshSchedule, logger)
			if err != nil {
				return nil, err
			}
			scheduling.icsRefresher = refresher
		}
	}

	if cfg.UsesProvider(config.ProviderGoogle) {
		calendarIDs := make(map[string]string)
		for _, p := range cfg.Participants {
			if p.CalendarID != "" {
				calendarIDs[p.ID] = p.CalendarID
			}
		}
		client, err := calendar.NewClient(ctx, token.NewFileProvider(cfg.Google.TokenFile), calendarIDs)
		if err != nil {
			// Google participants degrade individually.
			logger.Warn("google calendar provider unavailable", logging.Err(err))
		} else {
			backends[config.ProviderGoogle] = client
		}
	}

	var native proposal.NativeFinder
	if cfg.UsesProvider(config.ProviderGraph) {
		tp := token.NewFileProvider(cfg.Graph.TokenFile)
		if !tp.HasToken() {
			logger.Warn("graph token file missing, graph participants will be unavailable")
		}
		client := graph.NewClient(token.HTTPClient(ctx, tp), graph.Options{
			BaseURL:   cfg.Graph.BaseURL,
			Organizer: cfg.Graph.Organizer,
			Supports: func(participantID string) bool {
				return cfg.ProviderFor(participantID) == config.ProviderGraph
			},
		})
		backends[config.ProviderGraph] = client
		if cfg.Scheduling.NativeFinder {
			native = client
		}
	}

	router, err := directory.NewRouter(cfg, backends)
	if err != nil {
		return nil, err
	}

	logger.Info("scheduling service configured",
		"providers", strings.Join(providerKinds(backends), ","),
		"participants", len(cfg.Participants),
		"native_finder", native != nil,
		"ics_prefetch", scheduling.icsRefresher != nil)

	scheduling.Service = proposal.NewService(router, native, logger, metrics, proposal.Options{
		ProviderTimeout: cfg.Scheduling.ProviderTimeout,
		NativeTimeout:   cfg.Scheduling.NativeTimeout,
		Concurrency:     cfg.Scheduling.Concurrency,
		RateLimit:       cfg.Scheduling.RateLimit,
		RateBurst:       cfg.Scheduling.RateBurst,
	})
	return scheduling, nil
}

func providerKinds(backends map[string]availability.Provider) []string {
	kinds := make([]string, 0, len(backends))
	for _, k := range []string{config.ProviderGoogle, config.ProviderGraph, config.ProviderICS, config.ProviderStatic} {
		if _, ok := backends[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
