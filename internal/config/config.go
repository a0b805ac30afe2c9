package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
)

// Provider kinds a participant can be routed to.
const (
	ProviderGoogle = "google"
	ProviderGraph  = "graph"
	ProviderICS    = "ics"
	ProviderStatic = "static"
)

// Defaults applied by Normalize.
const (
	DefaultTimeZone        = "UTC"
	DefaultProvider        = ProviderGoogle
	DefaultProviderTimeout = 10 * time.Second
	DefaultNativeTimeout   = 15 * time.Second
	DefaultConcurrency     = 4
	DefaultGraphBaseURL    = "https://graph.microsoft.com/v1.0"
	DefaultICSFetchTimeout = 15 * time.Second
)

// Config is the top-level configuration file.
type Config struct {
	// TimeZone is the IANA zone used when a request does not name one.
	TimeZone string `yaml:"time_zone" json:"time_zone"`

	// DefaultProvider handles participants not listed in Participants.
	DefaultProvider string `yaml:"default_provider" json:"default_provider"`

	Scheduling SchedulingConfig `yaml:"scheduling" json:"scheduling"`
	Google     GoogleConfig     `yaml:"google" json:"google"`
	Graph      GraphConfig      `yaml:"graph" json:"graph"`
	ICS        ICSConfig        `yaml:"ics" json:"ics"`

	// Participants is the calendar directory.
	Participants []ParticipantConfig `yaml:"participants" json:"participants"`
}

// SchedulingConfig tunes provider access for every request.
type SchedulingConfig struct {
	ProviderTimeout time.Duration `yaml:"provider_timeout" json:"provider_timeout"`
	NativeTimeout   time.Duration `yaml:"native_timeout" json:"native_timeout"`

	// Concurrency is the number of participants fetched at once.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// RateLimit caps provider lookups per second; zero disables it.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`

	// NativeFinder enables the Graph findMeetingTimes path.
	NativeFinder bool `yaml:"native_finder" json:"native_finder"`
}

// GoogleConfig configures the Google Calendar free/busy provider.
type GoogleConfig struct {
	// TokenFile holds an OAuth2 token in JSON form.
	TokenFile string `yaml:"token_file" json:"token_file"`
}

// GraphConfig configures the Microsoft Graph provider and native finder.
type GraphConfig struct {
	TokenFile string `yaml:"token_file" json:"token_file"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	// Organizer is the mailbox findMeetingTimes runs as.
	Organizer string `yaml:"organizer" json:"organizer"`
}

// ICSConfig configures ICS feed fetching.
type ICSConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	// RefreshSchedule is a cron spec (e.g. "@every 15m") for prefetching
	// every feed while serving. Empty disables prefetching.
	RefreshSchedule string `yaml:"refresh_schedule,omitempty" json:"refresh_schedule,omitempty"`
}

// ParticipantConfig maps one participant to a calendar backend.
type ParticipantConfig struct {
	// ID is the participant identifier used in requests, usually an email.
	ID string `yaml:"id" json:"id"`

	// Provider is one of google, graph, ics or static. Empty means the
	// configured default provider.
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`

	// CalendarID overrides the Google calendar queried. Defaults to ID.
	CalendarID string `yaml:"calendar_id,omitempty" json:"calendar_id,omitempty"`

	// ICSURL is the feed for the ics provider.
	ICSURL string `yaml:"ics_url,omitempty" json:"ics_url,omitempty"`

	// WorkingHours overrides whatever the provider reports.
	WorkingHours *WorkingHoursConfig `yaml:"working_hours,omitempty" json:"working_hours,omitempty"`

	// Busy lists fixed busy periods for the static provider.
	Busy []BusyConfig `yaml:"busy,omitempty" json:"busy,omitempty"`
}

// WorkingHoursConfig is the YAML form of interval.WorkingHours.
type WorkingHoursConfig struct {
	Start    string   `yaml:"start" json:"start"`
	End      string   `yaml:"end" json:"end"`
	Days     []string `yaml:"days" json:"days"`
	TimeZone string   `yaml:"time_zone,omitempty" json:"time_zone,omitempty"`
}

// BusyConfig is the YAML form of availability.BusyPeriod.
type BusyConfig struct {
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end" json:"end"`
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.TimeZone) == "" {
		c.TimeZone = DefaultTimeZone
	}
	c.DefaultProvider = strings.ToLower(strings.TrimSpace(c.DefaultProvider))
	if c.DefaultProvider == "" {
		c.DefaultProvider = DefaultProvider
	}
	if c.Scheduling.ProviderTimeout <= 0 {
		c.Scheduling.ProviderTimeout = DefaultProviderTimeout
	}
	if c.Scheduling.NativeTimeout <= 0 {
		c.Scheduling.NativeTimeout = DefaultNativeTimeout
	}
	if c.Scheduling.Concurrency <= 0 {
		c.Scheduling.Concurrency = DefaultConcurrency
	}
	if c.Scheduling.RateLimit > 0 && c.Scheduling.RateBurst <= 0 {
		c.Scheduling.RateBurst = 1
	}
	if c.Graph.BaseURL == "" {
		c.Graph.BaseURL = DefaultGraphBaseURL
	}
	c.Graph.BaseURL = strings.TrimRight(c.Graph.BaseURL, "/")
	if c.ICS.FetchTimeout <= 0 {
		c.ICS.FetchTimeout = DefaultICSFetchTimeout
	}
	c.ICS.RefreshSchedule = strings.TrimSpace(c.ICS.RefreshSchedule)
	if c.Participants == nil {
		c.Participants = []ParticipantConfig{}
	}
	for i := range c.Participants {
		p := &c.Participants[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Provider = strings.ToLower(strings.TrimSpace(p.Provider))
	}
}

// Validate checks the directory for unusable entries.
func (c *Config) Validate() error {
	if _, ok := interval.LoadLocation(c.TimeZone); !ok {
		return fmt.Errorf("unknown time zone %q", c.TimeZone)
	}
	if !knownProvider(c.DefaultProvider) {
		return fmt.Errorf("unknown default provider %q", c.DefaultProvider)
	}

	seen := make(map[string]bool, len(c.Participants))
	for i, p := range c.Participants {
		if p.ID == "" {
			return fmt.Errorf("participant %d: id is required", i)
		}
		key := strings.ToLower(p.ID)
		if seen[key] {
			return fmt.Errorf("participant %s: listed more than once", p.ID)
		}
		seen[key] = true

		if p.Provider != "" && !knownProvider(p.Provider) {
			return fmt.Errorf("participant %s: unknown provider %q", p.ID, p.Provider)
		}
		if c.ProviderFor(p.ID) == ProviderICS && p.ICSURL == "" {
			return fmt.Errorf("participant %s: ics provider requires ics_url", p.ID)
		}
		if p.WorkingHours != nil {
			if _, err := p.WorkingHours.WorkingHours(); err != nil {
				return fmt.Errorf("participant %s: %w", p.ID, err)
			}
		}
		if _, err := p.BusyPeriods(); err != nil {
			return fmt.Errorf("participant %s: %w", p.ID, err)
		}
	}
	return nil
}

// Participant looks up a directory entry, ignoring case.
func (c *Config) Participant(id string) (ParticipantConfig, bool) {
	id = strings.TrimSpace(id)
	for _, p := range c.Participants {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return ParticipantConfig{}, false
}

// ProviderFor returns the provider kind serving id.
func (c *Config) ProviderFor(id string) string {
	if p, ok := c.Participant(id); ok && p.Provider != "" {
		return p.Provider
	}
	return c.DefaultProvider
}

// UsesProvider reports whether any participant, or the default, routes to kind.
func (c *Config) UsesProvider(kind string) bool {
	if c.DefaultProvider == kind {
		return true
	}
	for _, p := range c.Participants {
		if p.Provider == kind {
			return true
		}
	}
	return false
}

func knownProvider(kind string) bool {
	switch kind {
	case ProviderGoogle, ProviderGraph, ProviderICS, ProviderStatic:
		return true
	}
	return false
}

// WorkingHours converts the YAML form. An empty day list means Monday to
// Friday.
func (w WorkingHoursConfig) WorkingHours() (interval.WorkingHours, error) {
	wh := interval.WorkingHours{
		StartClock: strings.TrimSpace(w.Start),
		EndClock:   strings.TrimSpace(w.End),
		TimeZone:   strings.TrimSpace(w.TimeZone),
	}
	if len(w.Days) == 0 {
		wh.Days = interval.DefaultWorkingHours().Days
	}
	for _, name := range w.Days {
		d, err := interval.ParseWeekday(name)
		if err != nil {
			return interval.WorkingHours{}, err
		}
		wh.Days = append(wh.Days, d)
	}
	if err := wh.Validate(); err != nil {
		return interval.WorkingHours{}, err
	}
	if _, ok := wh.Location(nil); !ok {
		return interval.WorkingHours{}, fmt.Errorf("unknown working hours time zone %q", wh.TimeZone)
	}
	return wh, nil
}

// BusyPeriod converts the YAML form. Status defaults to busy.
func (b BusyConfig) BusyPeriod() (availability.BusyPeriod, error) {
	start, err := interval.ParseTimestamp(b.Start)
	if err != nil {
		return availability.BusyPeriod{}, fmt.Errorf("busy start: %w", err)
	}
	end, err := interval.ParseTimestamp(b.End)
	if err != nil {
		return availability.BusyPeriod{}, fmt.Errorf("busy end: %w", err)
	}
	if !start.Before(end) {
		return availability.BusyPeriod{}, fmt.Errorf("busy period %s must end after it starts", b.Start)
	}
	status := availability.StatusBusy
	if b.Status != "" {
		status, err = availability.ParseStatus(b.Status)
		if err != nil {
			return availability.BusyPeriod{}, err
		}
	}
	return availability.BusyPeriod{
		Interval: interval.New(start, end),
		Status:   status,
		Label:    b.Label,
	}, nil
}

// BusyPeriods converts every static busy entry.
func (p ParticipantConfig) BusyPeriods() ([]availability.BusyPeriod, error) {
	out := make([]availability.BusyPeriod, 0, len(p.Busy))
	for _, b := range p.Busy {
		bp, err := b.BusyPeriod()
		if err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, nil
}

// Load reads, normalizes and validates the YAML file at path. An empty path
// yields the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".slotfinder-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
