package intersect

import (
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
)

// CandidateSlot is a proposed meeting time.
type CandidateSlot struct {
	Start time.Time
	End   time.Time
	// AttendeeAvailability maps every participant to free, tentative or busy.
	AttendeeAvailability map[string]availability.Status
	// Confidence is the mean status weight over all participants, in [0, 1].
	Confidence float64
}

// Interval returns [Start, End).
func (c CandidateSlot) Interval() interval.Interval {
	return interval.New(c.Start, c.End)
}

// AvailableCount returns how many participants are free or tentative.
func (c CandidateSlot) AvailableCount() int {
	n := 0
	for _, s := range c.AttendeeAvailability {
		if s.Available() {
			n++
		}
	}
	return n
}

// FilterMinAttendees drops candidates with fewer than min free or tentative
// participants. Survivors keep their order; nothing is back-filled.
// A non-positive min returns candidates unchanged.
func FilterMinAttendees(candidates []CandidateSlot, min int) []CandidateSlot {
	if min <= 0 {
		return candidates
	}
	kept := make([]CandidateSlot, 0, len(candidates))
	for _, c := range candidates {
		if c.AvailableCount() >= min {
			kept = append(kept, c)
		}
	}
	return kept
}
