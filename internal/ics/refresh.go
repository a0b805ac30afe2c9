package ics

import (
	"context"
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"

	"github.com/teemow/slotfinder/internal/logging"
)

// Refresher prefetches feeds on a cron schedule so requests are served from
// a warm Fetcher cache.
type Refresher struct {
	cron    *cron.Cron
	fetcher *Fetcher
	urls    []string
	logger  logging.Logger
}

// NewRefresher schedules every distinct feed URL in feeds. schedule accepts
// standard five-field specs and descriptors such as "@every 15m".
func NewRefresher(fetcher *Fetcher, feeds map[string]string, schedule string, logger logging.Logger) (*Refresher, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	seen := make(map[string]bool, len(feeds))
	urls := make([]string, 0, len(feeds))
	for _, u := range feeds {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)

	r := &Refresher{
		cron:    cron.New(),
		fetcher: fetcher,
		urls:    urls,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(schedule, func() {
		r.RefreshAll(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid ics refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

// RefreshAll fetches every feed once and returns the number of failures.
func (r *Refresher) RefreshAll(ctx context.Context) int {
	failed := 0
	for _, u := range r.urls {
		if _, err := r.fetcher.Fetch(ctx, u); err != nil {
			failed++
			r.logger.Warn("ics prefetch failed", "url", RedactURL(u), logging.Err(err))
		}
	}
	r.logger.Debug("ics prefetch completed", "feeds", len(r.urls), "failed", failed)
	return failed
}

// Start runs the schedule in the background.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
