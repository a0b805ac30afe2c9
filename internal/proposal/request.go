package proposal

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/slotfinder/internal/interval"
)

// Boundary defaults and limits.
const (
	DefaultGranularityMinutes = 30
	DefaultMaxCandidates      = 10
	DefaultTimeZone           = "UTC"

	MaxDurationMinutes = 24 * 60
	MaxCandidatesLimit = 100
	MaxParticipants    = 50
	MaxWindow          = 62 * 24 * time.Hour
)

// AvailabilityParams is an unvalidated availability query as it arrives from
// a tool call or the command line. Zero values select defaults.
type AvailabilityParams struct {
	Participants       []string
	WindowStart        string
	WindowEnd          string
	GranularityMinutes int
	WorkHoursOnly      bool
	TimeZone           string
}

// Request validates p. Every failure wraps ErrInvalidInput.
func (p AvailabilityParams) Request() (AvailabilityRequest, error) {
	participants, err := normalizeParticipants(p.Participants)
	if err != nil {
		return AvailabilityRequest{}, err
	}
	window, err := parseWindow(p.WindowStart, p.WindowEnd)
	if err != nil {
		return AvailabilityRequest{}, err
	}
	granularity, err := granularity(p.GranularityMinutes)
	if err != nil {
		return AvailabilityRequest{}, err
	}
	return AvailabilityRequest{
		Participants:       participants,
		Window:             window,
		GranularityMinutes: granularity,
		WorkHoursOnly:      p.WorkHoursOnly,
		TimeZone:           timeZone(p.TimeZone),
	}, nil
}

// ProposalParams is an unvalidated meeting-time query. Zero values select
// defaults; a zero MinRequiredAttendees disables the attendance filter.
type ProposalParams struct {
	Participants         []string
	DurationMinutes      int
	WindowStart          string
	WindowEnd            string
	MaxCandidates        int
	BufferBeforeMinutes  int
	BufferAfterMinutes   int
	WorkHoursOnly        bool
	MinRequiredAttendees int
	TimeZone             string
	GranularityMinutes   int
}

// Request validates p. Every failure wraps ErrInvalidInput.
func (p ProposalParams) Request() (ProposalRequest, error) {
	participants, err := normalizeParticipants(p.Participants)
	if err != nil {
		return ProposalRequest{}, err
	}
	window, err := parseWindow(p.WindowStart, p.WindowEnd)
	if err != nil {
		return ProposalRequest{}, err
	}
	if p.DurationMinutes <= 0 || p.DurationMinutes > MaxDurationMinutes {
		return ProposalRequest{}, invalid("durationMinutes must be between 1 and %d, got %d", MaxDurationMinutes, p.DurationMinutes)
	}
	if p.BufferBeforeMinutes < 0 || p.BufferAfterMinutes < 0 {
		return ProposalRequest{}, invalid("buffers must not be negative")
	}
	if p.MinRequiredAttendees < 0 {
		return ProposalRequest{}, invalid("minRequiredAttendees must not be negative")
	}
	if p.MinRequiredAttendees > len(participants) {
		return ProposalRequest{}, invalid("minRequiredAttendees %d exceeds the %d participants", p.MinRequiredAttendees, len(participants))
	}
	maxCandidates := p.MaxCandidates
	switch {
	case maxCandidates == 0:
		maxCandidates = DefaultMaxCandidates
	case maxCandidates < 0 || maxCandidates > MaxCandidatesLimit:
		return ProposalRequest{}, invalid("maxCandidates must be between 1 and %d, got %d", MaxCandidatesLimit, maxCandidates)
	}
	granularity, err := granularity(p.GranularityMinutes)
	if err != nil {
		return ProposalRequest{}, err
	}
	needed := interval.Minutes(p.DurationMinutes + p.BufferBeforeMinutes + p.BufferAfterMinutes)
	if window.Duration() < needed {
		return ProposalRequest{}, invalid("window is shorter than the meeting plus buffers")
	}

	return ProposalRequest{
		Participants:         participants,
		DurationMinutes:      p.DurationMinutes,
		Window:               window,
		MaxCandidates:        maxCandidates,
		BufferBeforeMinutes:  p.BufferBeforeMinutes,
		BufferAfterMinutes:   p.BufferAfterMinutes,
		WorkHoursOnly:        p.WorkHoursOnly,
		MinRequiredAttendees: p.MinRequiredAttendees,
		TimeZone:             timeZone(p.TimeZone),
		GranularityMinutes:   granularity,
	}, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// normalizeParticipants trims ids, drops empties and removes duplicates
// (case-insensitive), keeping first-seen order.
func normalizeParticipants(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, invalid("at least one participant is required")
	}
	if len(out) > MaxParticipants {
		return nil, invalid("at most %d participants are supported, got %d", MaxParticipants, len(out))
	}
	return out, nil
}

func parseWindow(startValue, endValue string) (interval.Interval, error) {
	start, err := interval.ParseTimestamp(startValue)
	if err != nil {
		return interval.Interval{}, invalid("windowStart must be RFC 3339 with Z or a numeric offset: %q", startValue)
	}
	end, err := interval.ParseTimestamp(endValue)
	if err != nil {
		return interval.Interval{}, invalid("windowEnd must be RFC 3339 with Z or a numeric offset: %q", endValue)
	}
	window := interval.New(start, end)
	if !window.Valid() {
		return interval.Interval{}, invalid("windowStart must be before windowEnd")
	}
	if window.Duration() > MaxWindow {
		return interval.Interval{}, invalid("window must not exceed %d days", int(MaxWindow.Hours()/24))
	}
	return window, nil
}

func granularity(minutes int) (int, error) {
	switch {
	case minutes == 0:
		return DefaultGranularityMinutes, nil
	case minutes < 0 || minutes > 60:
		return 0, invalid("granularityMinutes must be between 1 and 60, got %d", minutes)
	default:
		return minutes, nil
	}
}

func timeZone(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultTimeZone
	}
	return name
}
