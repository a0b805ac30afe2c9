package instrumentation

import "strings"

// ExtractUserDomain extracts the domain part of a participant address so
// metrics and general logs never carry full addresses.
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("room-42")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}

	return "unknown"
}

// DistinctDomains returns the participant domains in first-seen order.
func DistinctDomains(participants []string) []string {
	seen := make(map[string]bool, len(participants))
	var out []string
	for _, p := range participants {
		d := ExtractUserDomain(p)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
