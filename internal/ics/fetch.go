package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/teemow/slotfinder/internal/logging"
)

// DefaultFetchTimeout bounds a single feed download.
const DefaultFetchTimeout = 15 * time.Second

// maxFeedSize caps the bytes read from one feed.
const maxFeedSize = 32 << 20

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher downloads ICS feeds, honoring ETag and Last-Modified. The last good
// body per URL is kept in memory and served when the origin is unreachable.
type Fetcher struct {
	client *http.Client
	logger logging.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewFetcher creates a Fetcher. A nil client gets DefaultFetchTimeout.
func NewFetcher(client *http.Client, logger logging.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Fetcher{
		client: client,
		logger: logger,
		cache:  make(map[string]cacheEntry),
	}
}

// Fetch returns the feed body at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	f.mu.Lock()
	cached, hasCache := f.cache[rawURL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if hasCache {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if hasCache && ctx.Err() == nil {
			f.logger.Warn("ics fetch failed, using cached body",
				"url", RedactURL(rawURL),
				logging.Err(err))
			return cached.body, nil
		}
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read feed: %w", err)
		}
		f.mu.Lock()
		f.cache[rawURL] = cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		f.logger.Debug("ics fetch success", "url", RedactURL(rawURL), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if !hasCache {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		f.logger.Debug("ics feed not modified", "url", RedactURL(rawURL))
		return cached.body, nil

	default:
		if hasCache {
			f.logger.Warn("ics fetch non-OK, using cached body",
				"url", RedactURL(rawURL),
				"status_code", resp.StatusCode)
			return cached.body, nil
		}
		return nil, fmt.Errorf("feed request failed with status %d", resp.StatusCode)
	}
}

// RedactURL keeps only scheme and host; feed URLs often embed secrets.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
