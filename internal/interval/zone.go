package interval

import (
	"strings"
	"time"
)

// LoadLocation resolves an IANA zone name. An empty name means UTC. Unknown
// names resolve to UTC as well; ok is false in that case so the caller can
// log the degraded zone without failing the request.
func LoadLocation(name string) (loc *time.Location, ok bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") || name == "Z" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// FormatInZone renders t as an RFC 3339 timestamp carrying the numeric offset
// that the named zone's rules give for that instant. UTC renders with "Z".
func FormatInZone(t time.Time, zone string) string {
	loc, _ := LoadLocation(zone)
	return t.In(loc).Format(time.RFC3339)
}

// ParseTimestamp parses an RFC 3339 timestamp. Timestamps without an explicit
// "Z" or numeric offset are rejected.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(value))
}
