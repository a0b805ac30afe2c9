package interval

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// WorkingHours is a recurring weekly availability template.
type WorkingHours struct {
	// StartClock and EndClock are zero-padded "HH:MM" values.
	StartClock string
	EndClock   string

	// Days holds the weekdays the template applies to (time.Sunday == 0).
	Days []time.Weekday

	// TimeZone is the IANA zone the clock values are expressed in. Empty means
	// the caller's zone.
	TimeZone string
}

// DefaultWorkingHours returns Monday to Friday, 09:00 to 17:00.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		StartClock: "09:00",
		EndClock:   "17:00",
		Days: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

// Validate checks the clock format and day range.
func (wh WorkingHours) Validate() error {
	if !clockPattern.MatchString(wh.StartClock) {
		return fmt.Errorf("invalid working hours start %q: expected HH:MM", wh.StartClock)
	}
	if !clockPattern.MatchString(wh.EndClock) {
		return fmt.Errorf("invalid working hours end %q: expected HH:MM", wh.EndClock)
	}
	if wh.StartClock > wh.EndClock {
		return fmt.Errorf("working hours start %s is after end %s", wh.StartClock, wh.EndClock)
	}
	for _, d := range wh.Days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekday %d", d)
		}
	}
	return nil
}

// HasDay reports whether d is one of the template's days.
func (wh WorkingHours) HasDay(d time.Weekday) bool {
	for _, day := range wh.Days {
		if day == d {
			return true
		}
	}
	return false
}

// Location resolves the template's zone, falling back to def when the
// template has none. Unknown names resolve to UTC with ok == false.
func (wh WorkingHours) Location(def *time.Location) (loc *time.Location, ok bool) {
	if strings.TrimSpace(wh.TimeZone) == "" {
		if def == nil {
			return time.UTC, true
		}
		return def, true
	}
	return LoadLocation(wh.TimeZone)
}

// IsWithinWorkingHours converts t to loc and checks weekday membership and the
// clock range. Both clock bounds are inclusive.
func IsWithinWorkingHours(t time.Time, wh WorkingHours, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	if !wh.HasDay(local.Weekday()) {
		return false
	}
	clock := local.Format("15:04")
	return clock >= wh.StartClock && clock <= wh.EndClock
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return d, nil
}

// NormalizeClock trims seconds and fractions from provider clock values such
// as "08:00:00.0000000".
func NormalizeClock(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) >= 5 && clockPattern.MatchString(value[:5]) {
		return value[:5], nil
	}
	return "", fmt.Errorf("invalid clock value %q", value)
}
