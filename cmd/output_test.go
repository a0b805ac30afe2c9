package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/slotfinder/internal/tools/scheduling_tools"
)

func TestPrintProposal(t *testing.T) {
	resp := scheduling_tools.ProposalResponse{
		TimeZone: "UTC",
		Source:   "local_intersection",
		Candidates: []scheduling_tools.Candidate{
			{
				Start:      "2025-03-10T10:00:00Z",
				End:        "2025-03-10T10:30:00Z",
				Confidence: 0.5,
				AttendeeAvailability: map[string]string{
					"bob@example.com":   "busy",
					"alice@example.com": "free",
				},
			},
		},
		Unavailable: []string{"carol@example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, printProposal(&buf, resp))
	out := buf.String()

	assert.Contains(t, out, "Found 1 slot(s) via local_intersection (UTC)")
	assert.Contains(t, out, "1. 2025-03-10T10:00:00Z to 2025-03-10T10:30:00Z (confidence 0.50)")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("alice@example.com")), bytes.Index(buf.Bytes(), []byte("bob@example.com")))
	assert.Contains(t, out, "Calendars unavailable: carol@example.com")
}

func TestPrintAvailability(t *testing.T) {
	resp := scheduling_tools.AvailabilityResponse{
		TimeZone: "UTC",
		PerUser: []scheduling_tools.UserAvailability{
			{
				Participant:  "alice@example.com",
				WorkingHours: &scheduling_tools.WorkingHours{Start: "09:00", End: "17:00", Days: []string{"Monday"}},
				Busy:         []scheduling_tools.Period{{Start: "a", End: "b", Status: "busy", Label: "1:1"}},
				Free:         []scheduling_tools.Period{{Start: "b", End: "c"}},
			},
			{Participant: "carol@example.com"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printAvailability(&buf, resp))
	out := buf.String()

	assert.Contains(t, out, "Working hours: 09:00-17:00 Monday")
	assert.Contains(t, out, "a to b (busy) 1:1")
	assert.Contains(t, out, "Free: 1")
	assert.Contains(t, out, "carol@example.com\n  Calendar unavailable")
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput("json"))
	assert.NoError(t, validateOutput("text"))
	assert.Error(t, validateOutput("yaml"))
}
