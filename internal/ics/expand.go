package ics

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
)

// DefaultMaxOccurrences caps the instances produced per recurring event.
const DefaultMaxOccurrences = 5000

// Expand returns the blocking occurrences of events that overlap window, as
// busy periods sorted by start. Overrides (RECURRENCE-ID) replace the
// instance they name; cancelled overrides remove it.
func Expand(events []Event, window interval.Interval, maxOccurrences int) ([]availability.BusyPeriod, error) {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	overridden := make(map[string][]time.Time)
	for _, ev := range events {
		if ev.RecurrenceID != nil && ev.UID != "" {
			overridden[ev.UID] = append(overridden[ev.UID], *ev.RecurrenceID)
		}
	}

	var out []availability.BusyPeriod
	for _, ev := range events {
		if !ev.Blocks() {
			continue
		}
		if ev.RRule == "" || ev.RecurrenceID != nil {
			out = appendOccurrence(out, ev, ev.Start, ev.End, window)
			continue
		}

		starts, err := occurrences(ev, overridden[ev.UID], window, maxOccurrences)
		if err != nil {
			return nil, err
		}
		length := ev.End.Sub(ev.Start)
		days := calendarDays(ev.Start, ev.End)
		for _, s := range starts {
			end := s.Add(length)
			if ev.AllDay {
				end = s.AddDate(0, 0, days)
			}
			out = appendOccurrence(out, ev, s, end, window)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func occurrences(ev Event, overridden []time.Time, window interval.Interval, limit int) ([]time.Time, error) {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, fmt.Errorf("event %q: invalid RRULE %q: %w", ev.UID, ev.RRule, err)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	loc := ev.Start.Location()
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(loc))
	}
	for _, ov := range overridden {
		set.ExDate(ov.In(loc))
	}

	// Instances starting before the window may still run into it.
	from := window.Start.Add(-ev.End.Sub(ev.Start)).In(loc)
	starts := set.Between(from, window.End.In(loc), true)
	if len(starts) > limit {
		starts = starts[:limit]
	}
	return starts, nil
}

func appendOccurrence(out []availability.BusyPeriod, ev Event, start, end time.Time, window interval.Interval) []availability.BusyPeriod {
	iv := interval.New(start, end)
	if !iv.Valid() || !interval.Overlaps(iv, window) {
		return out
	}
	status := availability.StatusBusy
	if ev.Status == "TENTATIVE" {
		status = availability.StatusTentative
	}
	return append(out, availability.BusyPeriod{
		Interval: iv,
		Status:   status,
		Label:    ev.Summary,
	})
}

// calendarDays counts date boundaries between a and b, ignoring DST.
func calendarDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
