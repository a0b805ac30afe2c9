package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/slotfinder/internal/interval"
)

// Status is a participant's calendar state over an interval.
type Status string

const (
	StatusFree      Status = "free"
	StatusTentative Status = "tentative"
	StatusBusy      Status = "busy"
)

// ParseStatus accepts free, tentative and busy in any case.
func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusFree, StatusTentative, StatusBusy:
		return s, nil
	default:
		return "", fmt.Errorf("unknown availability status %q", value)
	}
}

// Weight is the confidence contribution of a status.
func (s Status) Weight() float64 {
	switch s {
	case StatusFree:
		return 1.0
	case StatusTentative:
		return 0.5
	default:
		return 0.0
	}
}

// Available reports whether the status counts towards attendance.
func (s Status) Available() bool {
	return s == StatusFree || s == StatusTentative
}

// BusyPeriod is one provider calendar entry.
type BusyPeriod struct {
	interval.Interval
	Status Status
	Label  string
}

// UserAvailability is one participant's normalized view of the query window.
// Busy and Free are sorted by start and never overlap each other.
type UserAvailability struct {
	ParticipantID string
	// WorkingHours is nil when the provider failed for this participant.
	WorkingHours *interval.WorkingHours
	Busy         []BusyPeriod
	Free         []interval.Interval
}

// Empty returns the availability used for a participant whose provider failed.
func Empty(participantID string) UserAvailability {
	return UserAvailability{
		ParticipantID: participantID,
		Busy:          []BusyPeriod{},
		Free:          []interval.Interval{},
	}
}

// Provider is a calendar backend able to report busy periods and working
// hours for a participant.
type Provider interface {
	BusyPeriods(ctx context.Context, participantID string, start, end time.Time) ([]BusyPeriod, error)
	// WorkingHours may return nil, nil when the backend has no template.
	WorkingHours(ctx context.Context, participantID string) (*interval.WorkingHours, error)
}

// Namer is implemented by providers that can name the backend serving a
// participant. It only labels metrics and spans.
type Namer interface {
	ProviderName(participantID string) string
}

// ErrTimeout is returned when a provider call exceeds its bounded wait.
var ErrTimeout = errors.New("calendar provider call timed out")
