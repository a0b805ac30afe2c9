package availability

import (
	"sort"
	"time"

	"github.com/teemow/slotfinder/internal/interval"
)

// NormalizeInput carries everything Normalize needs for one participant.
type NormalizeInput struct {
	ParticipantID string
	Busy          []BusyPeriod
	Window        interval.Interval
	WorkingHours  *interval.WorkingHours
	// Location is the request zone. Free gaps round to granularity on its
	// local clock and working hours without their own zone use it.
	Location               *time.Location
	GranularityMinutes     int
	RestrictToWorkingHours bool
}

// Normalize converts raw provider periods into busy and free lists covering
// the window. Busy periods are clipped to the window and trimmed so they
// never overlap. Free gaps are rounded inwards to the granularity; gaps that
// collapse are dropped. With RestrictToWorkingHours, a free gap survives only
// if both of its endpoints fall inside working hours.
func Normalize(in NormalizeInput) UserAvailability {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	ua := Empty(in.ParticipantID)
	ua.WorkingHours = in.WorkingHours

	periods := make([]BusyPeriod, 0, len(in.Busy))
	for _, p := range in.Busy {
		if p.Status == StatusFree || !p.Valid() {
			continue
		}
		clipped, ok := interval.Clip(p.Interval, in.Window)
		if !ok {
			continue
		}
		p.Interval = clipped
		periods = append(periods, p)
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})

	cursor := in.Window.Start
	for _, p := range periods {
		if p.Start.After(cursor) {
			if gap, ok := roundGap(cursor, p.Start, loc, in.GranularityMinutes); ok {
				ua.Free = append(ua.Free, gap)
			}
		}
		start := p.Start
		if cursor.After(start) {
			start = cursor
		}
		if start.Before(p.End) {
			ua.Busy = append(ua.Busy, BusyPeriod{
				Interval: interval.New(start, p.End),
				Status:   p.Status,
				Label:    p.Label,
			})
		}
		if p.End.After(cursor) {
			cursor = p.End
		}
	}
	if cursor.Before(in.Window.End) {
		if gap, ok := roundGap(cursor, in.Window.End, loc, in.GranularityMinutes); ok {
			ua.Free = append(ua.Free, gap)
		}
	}

	if in.RestrictToWorkingHours && in.WorkingHours != nil {
		ua.Free = filterWorkingHours(ua.Free, *in.WorkingHours, loc)
	}
	return ua
}

// roundGap rounds both ends of [start, end) to the nearest granularity step
// on loc's clock. An end that moved outwards snaps to the adjacent step
// boundary inside the gap instead, so the gap never reaches into a
// neighbouring busy period. Steps restart at every full hour, so with a
// granularity that does not divide 60 the top of the hour is also a boundary.
func roundGap(start, end time.Time, loc *time.Location, minutes int) (interval.Interval, bool) {
	if minutes <= 0 {
		return interval.New(start, end), start.Before(end)
	}

	s := interval.RoundToGranularity(start.In(loc), minutes)
	if s.Before(start) {
		s = ceilToStep(start.In(loc), minutes)
	}
	e := interval.RoundToGranularity(end.In(loc), minutes)
	if e.After(end) {
		e = floorToStep(end.In(loc), minutes)
	}
	if !s.Before(e) {
		return interval.Interval{}, false
	}
	return interval.New(s, e), true
}

// ceilToStep returns the first step boundary at or after t within t's hour,
// or the start of the next hour when no such step remains.
func ceilToStep(t time.Time, minutes int) time.Time {
	hourStart := localHour(t)
	step := interval.Minutes(minutes)
	offset := t.Sub(hourStart)
	steps := offset / step
	if offset%step != 0 {
		steps++
	}
	c := hourStart.Add(steps * step)
	if next := hourStart.Add(time.Hour); c.After(next) {
		return next
	}
	return c
}

func localHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// floorToStep returns the last step boundary at or before t within t's hour.
func floorToStep(t time.Time, minutes int) time.Time {
	hourStart := localHour(t)
	step := interval.Minutes(minutes)
	return hourStart.Add(t.Sub(hourStart) / step * step)
}

func filterWorkingHours(free []interval.Interval, wh interval.WorkingHours, requestLoc *time.Location) []interval.Interval {
	loc, _ := wh.Location(requestLoc)
	kept := free[:0]
	for _, gap := range free {
		if interval.IsWithinWorkingHours(gap.Start, wh, loc) && interval.IsWithinWorkingHours(gap.End, wh, loc) {
			kept = append(kept, gap)
		}
	}
	return kept
}
