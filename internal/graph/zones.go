package graph

import "strings"

// windowsZones maps the Windows zone names Exchange commonly reports to IANA
// names.
var windowsZones = map[string]string{
	"utc":                            "UTC",
	"gmt standard time":              "Europe/London",
	"greenwich standard time":        "Atlantic/Reykjavik",
	"w. europe standard time":        "Europe/Berlin",
	"central europe standard time":   "Europe/Budapest",
	"romance standard time":          "Europe/Paris",
	"central european standard time": "Europe/Warsaw",
	"e. europe standard time":        "Europe/Chisinau",
	"fle standard time":              "Europe/Kiev",
	"gtb standard time":              "Europe/Bucharest",
	"russian standard time":          "Europe/Moscow",
	"israel standard time":           "Asia/Jerusalem",
	"arabian standard time":          "Asia/Dubai",
	"india standard time":            "Asia/Kolkata",
	"china standard time":            "Asia/Shanghai",
	"singapore standard time":        "Asia/Singapore",
	"tokyo standard time":            "Asia/Tokyo",
	"korea standard time":            "Asia/Seoul",
	"aus eastern standard time":      "Australia/Sydney",
	"new zealand standard time":      "Pacific/Auckland",
	"eastern standard time":          "America/New_York",
	"central standard time":          "America/Chicago",
	"mountain standard time":         "America/Denver",
	"us mountain standard time":      "America/Phoenix",
	"pacific standard time":          "America/Los_Angeles",
	"alaskan standard time":          "America/Anchorage",
	"hawaiian standard time":         "Pacific/Honolulu",
	"e. south america standard time": "America/Sao_Paulo",
}

// IANAZone translates a Windows zone name. Other names are returned
// unchanged.
func IANAZone(name string) string {
	if iana, ok := windowsZones[strings.ToLower(strings.TrimSpace(name))]; ok {
		return iana
	}
	return name
}
