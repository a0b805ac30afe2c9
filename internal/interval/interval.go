package interval

import (
	"math"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns the interval [start, end).
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Valid reports whether the interval is non-empty.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Minutes returns the interval length in whole minutes, rounded.
func (iv Interval) Minutes() int {
	return DurationMinutes(iv.Start, iv.End)
}

// Equal reports whether both bounds denote the same instants.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

// Contains reports whether t lies in [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// In returns the interval with both bounds converted to loc.
func (iv Interval) In(loc *time.Location) Interval {
	return Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

// Overlaps reports whether a and b share at least one instant.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Intersect returns the common part of a and b. The boolean is false when the
// result would be empty or inverted.
func Intersect(a, b Interval) (Interval, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// OverlapDuration returns how long a and b overlap, or zero.
func OverlapDuration(a, b Interval) time.Duration {
	common, ok := Intersect(a, b)
	if !ok {
		return 0
	}
	return common.Duration()
}

// Clip restricts iv to window. The boolean is false when nothing remains.
func Clip(iv, window Interval) (Interval, bool) {
	return Intersect(iv, window)
}

// DurationMinutes returns (end-start) in minutes, rounded to the nearest minute.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// RoundToGranularity rounds t to the nearest multiple of minutes within its
// hour, in t's own location. Halfway values round up, so 60 can carry into
// the next hour. Non-positive granularities return t unchanged.
func RoundToGranularity(t time.Time, minutes int) time.Time {
	if minutes <= 0 {
		return t
	}
	hourStart := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	step := time.Duration(minutes) * time.Minute
	offset := t.Sub(hourStart)
	steps := math.Round(float64(offset) / float64(step))
	return hourStart.Add(time.Duration(steps) * step)
}

// AddBuffers widens iv by before at the start and after at the end. It is used
// when reserving padding around a busy block.
func AddBuffers(iv Interval, before, after time.Duration) Interval {
	return Interval{Start: iv.Start.Add(-before), End: iv.End.Add(after)}
}

// Minutes converts a minute count to a time.Duration.
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
