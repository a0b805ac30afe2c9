package intersect

import (
	"math"
	"sort"
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
)

// confidenceBand is the largest confidence difference still ranked as a tie.
const confidenceBand = 0.1

// bandEpsilon absorbs float error so that e.g. 0.4-0.3 counts as within the band.
const bandEpsilon = 1e-9

// FindSlots returns ranked candidate slots of at least durationMinutes.
//
// With one participant every free interval long enough becomes a candidate.
// With more, participant 0's free intervals seed the search and each other
// participant narrows the seed to its best-overlapping free interval.
// Participants without an overlapping free interval stay in the candidate as
// busy but do not narrow it; seeds nobody else overlaps are discarded, even
// when another participant's free interval contains the whole seed.
//
// Without buffers a candidate spans the whole common interval. With buffers
// the candidate is exactly durationMinutes long. maxCandidates <= 0 disables
// truncation.
func FindSlots(participants []availability.UserAvailability, durationMinutes, bufferBeforeMinutes, bufferAfterMinutes, maxCandidates int) []CandidateSlot {
	if len(participants) == 0 || durationMinutes <= 0 {
		return []CandidateSlot{}
	}

	duration := interval.Minutes(durationMinutes)
	before := interval.Minutes(max(bufferBeforeMinutes, 0))
	after := interval.Minutes(max(bufferAfterMinutes, 0))

	var candidates []CandidateSlot
	if len(participants) == 1 {
		candidates = singleParticipant(participants[0], duration, before, after)
	} else {
		candidates = multiParticipant(participants, duration, before, after)
	}

	rank(candidates)
	if maxCandidates > 0 && len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

func singleParticipant(p availability.UserAvailability, duration, before, after time.Duration) []CandidateSlot {
	candidates := make([]CandidateSlot, 0, len(p.Free))
	for _, free := range p.Free {
		slot, ok := centered(free, duration, before, after)
		if !ok {
			continue
		}
		candidates = append(candidates, CandidateSlot{
			Start:                slot.Start,
			End:                  slot.End,
			AttendeeAvailability: map[string]availability.Status{p.ParticipantID: availability.StatusFree},
			Confidence:           1.0,
		})
	}
	return candidates
}

// centered places the meeting in the middle of free once both buffers are
// reserved at its edges. Without buffers the whole interval is returned.
func centered(free interval.Interval, duration, before, after time.Duration) (interval.Interval, bool) {
	if before == 0 && after == 0 {
		return free, free.Duration() >= duration
	}
	effective := free.Duration() - before - after
	if effective < duration {
		return interval.Interval{}, false
	}
	slack := ((effective - duration) / 2).Truncate(time.Minute)
	start := free.Start.Add(before + slack)
	return interval.New(start, start.Add(duration)), true
}

func multiParticipant(participants []availability.UserAvailability, duration, before, after time.Duration) []CandidateSlot {
	seeds := participants[0].Free
	candidates := make([]CandidateSlot, 0, len(seeds))

	for _, seed := range seeds {
		common := seed
		matched := make([]bool, len(participants))
		matched[0] = true
		overlapped := false

		for i := 1; i < len(participants); i++ {
			best, ok := bestOverlap(common, participants[i].Free)
			if !ok {
				continue
			}
			common, _ = interval.Intersect(common, best)
			matched[i] = true
			overlapped = true
		}
		if !overlapped || common.Duration() < duration {
			continue
		}

		slot, ok := leading(common, duration, before, after)
		if !ok {
			continue
		}
		candidates = append(candidates, newCandidate(slot, participants, matched))
	}
	return candidates
}

// leading reserves before at the start of common and returns exactly
// duration after it. Without buffers the whole common interval is returned.
func leading(common interval.Interval, duration, before, after time.Duration) (interval.Interval, bool) {
	if before == 0 && after == 0 {
		return common, true
	}
	if common.Duration()-before-after < duration {
		return interval.Interval{}, false
	}
	start := common.Start.Add(before)
	return interval.New(start, start.Add(duration)), true
}

// bestOverlap returns the free interval overlapping common the longest.
// Ties go to the earliest in the list.
func bestOverlap(common interval.Interval, free []interval.Interval) (interval.Interval, bool) {
	var best interval.Interval
	var bestLen time.Duration
	for _, f := range free {
		if l := interval.OverlapDuration(common, f); l > bestLen {
			best, bestLen = f, l
		}
	}
	return best, bestLen > 0
}

func newCandidate(slot interval.Interval, participants []availability.UserAvailability, matched []bool) CandidateSlot {
	statuses := make(map[string]availability.Status, len(participants))
	var total float64
	for i, p := range participants {
		status := availability.StatusBusy
		if matched[i] {
			status = availability.StatusFree
		}
		statuses[p.ParticipantID] = status
		total += status.Weight()
	}
	return CandidateSlot{
		Start:                slot.Start,
		End:                  slot.End,
		AttendeeAvailability: statuses,
		Confidence:           total / float64(len(participants)),
	}
}

// rank orders candidates by confidence, treating differences within the band
// as ties broken by earlier start.
func rank(candidates []CandidateSlot) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start.Before(candidates[j].Start)
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if math.Abs(a.Confidence-b.Confidence) > confidenceBand+bandEpsilon {
			return a.Confidence > b.Confidence
		}
		return a.Start.Before(b.Start)
	})
}
