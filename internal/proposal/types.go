package proposal

import (
	"context"
	"errors"
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/intersect"
)

var (
	// ErrInvalidInput wraps every request validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoAvailabilityData is returned when every participant's provider failed.
	ErrNoAvailabilityData = errors.New("no availability data for any participant")
	// ErrNativeUnsupported is returned by finders that cannot serve a request,
	// for example when a participant is not on their backend.
	ErrNativeUnsupported = errors.New("native meeting-time finder does not support this request")
)

// Proposal sources.
const (
	SourceNative = "native"
	SourceLocal  = "local_intersection"
)

// AvailabilityRequest is a validated availability query.
type AvailabilityRequest struct {
	Participants       []string
	Window             interval.Interval
	GranularityMinutes int
	WorkHoursOnly      bool
	TimeZone           string
}

// AvailabilityResult lists availability in request order.
type AvailabilityResult struct {
	RequestID string
	TimeZone  string
	PerUser   []availability.UserAvailability
	// Unavailable lists participants whose provider failed; their entries in
	// PerUser are empty.
	Unavailable []string
}

// ProposalRequest is a validated meeting-time query.
type ProposalRequest struct {
	Participants         []string
	DurationMinutes      int
	Window               interval.Interval
	MaxCandidates        int
	BufferBeforeMinutes  int
	BufferAfterMinutes   int
	WorkHoursOnly        bool
	MinRequiredAttendees int
	TimeZone             string
	GranularityMinutes   int
}

// ProposalResult is the ranked outcome of a proposal.
type ProposalResult struct {
	RequestID   string
	TimeZone    string
	Source      string
	Candidates  []intersect.CandidateSlot
	Unavailable []string
}

// NativeRequest is what a native finder is asked for.
type NativeRequest struct {
	Required []string
	Optional []string
	// DurationMinutes already includes both buffers.
	DurationMinutes int
	Window          interval.Interval
	MaxCandidates   int
	WorkHoursOnly   bool
	TimeZone        string
}

// Participants returns required then optional attendees.
func (r NativeRequest) Participants() []string {
	out := make([]string, 0, len(r.Required)+len(r.Optional))
	out = append(out, r.Required...)
	return append(out, r.Optional...)
}

// Suggestion is one native finder result. AttendeeStatus holds the
// backend's own status names keyed by participant.
type Suggestion struct {
	Start          time.Time
	End            time.Time
	AttendeeStatus map[string]string
}

// NativeFinder is a calendar backend's built-in meeting-time suggestion API.
type NativeFinder interface {
	ProposeSlots(ctx context.Context, req NativeRequest) ([]Suggestion, error)
}
