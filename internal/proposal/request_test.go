package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProposal() ProposalParams {
	return ProposalParams{
		Participants:    []string{"a@example.com", "b@example.com"},
		DurationMinutes: 30,
		WindowStart:     "2025-03-10T09:00:00Z",
		WindowEnd:       "2025-03-10T17:00:00+00:00",
	}
}

func TestProposalParams_Defaults(t *testing.T) {
	req, err := validProposal().Request()
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxCandidates, req.MaxCandidates)
	assert.Equal(t, DefaultGranularityMinutes, req.GranularityMinutes)
	assert.Equal(t, DefaultTimeZone, req.TimeZone)
	assert.Equal(t, 0, req.MinRequiredAttendees)
	assert.Equal(t, 8*60, req.Window.Minutes())
}

func TestProposalParams_NormalizesParticipants(t *testing.T) {
	p := validProposal()
	p.Participants = []string{" a@example.com ", "", "A@example.com", "b@example.com"}

	req, err := p.Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, req.Participants)
}

func TestProposalParams_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProposalParams)
	}{
		{"no participants", func(p *ProposalParams) { p.Participants = []string{" ", ""} }},
		{"bare local start", func(p *ProposalParams) { p.WindowStart = "2025-03-10T09:00:00" }},
		{"garbage end", func(p *ProposalParams) { p.WindowEnd = "tomorrow" }},
		{"inverted window", func(p *ProposalParams) { p.WindowStart, p.WindowEnd = p.WindowEnd, p.WindowStart }},
		{"empty window", func(p *ProposalParams) { p.WindowEnd = p.WindowStart }},
		{"window too long", func(p *ProposalParams) { p.WindowEnd = "2025-06-10T09:00:00Z" }},
		{"zero duration", func(p *ProposalParams) { p.DurationMinutes = 0 }},
		{"duration over a day", func(p *ProposalParams) { p.DurationMinutes = 1441 }},
		{"negative buffer", func(p *ProposalParams) { p.BufferBeforeMinutes = -5 }},
		{"negative min attendees", func(p *ProposalParams) { p.MinRequiredAttendees = -1 }},
		{"min attendees above participants", func(p *ProposalParams) { p.MinRequiredAttendees = 3 }},
		{"negative max candidates", func(p *ProposalParams) { p.MaxCandidates = -1 }},
		{"too many candidates", func(p *ProposalParams) { p.MaxCandidates = MaxCandidatesLimit + 1 }},
		{"granularity above an hour", func(p *ProposalParams) { p.GranularityMinutes = 90 }},
		{"meeting longer than window", func(p *ProposalParams) {
			p.WindowEnd = "2025-03-10T09:30:00Z"
			p.BufferBeforeMinutes = 15
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProposal()
			tt.mutate(&p)
			_, err := p.Request()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestProposalParams_FullDayDuration(t *testing.T) {
	p := validProposal()
	p.WindowEnd = "2025-03-12T09:00:00Z"
	p.DurationMinutes = MaxDurationMinutes

	_, err := p.Request()
	assert.NoError(t, err)
}

func TestAvailabilityParams_Request(t *testing.T) {
	req, err := AvailabilityParams{
		Participants:  []string{"a@example.com"},
		WindowStart:   "2025-03-10T09:00:00+01:00",
		WindowEnd:     "2025-03-10T17:00:00+01:00",
		WorkHoursOnly: true,
		TimeZone:      "Europe/Berlin",
	}.Request()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", req.TimeZone)
	assert.Equal(t, DefaultGranularityMinutes, req.GranularityMinutes)
	assert.True(t, req.WorkHoursOnly)
	assert.Equal(t, 8, req.Window.Start.UTC().Hour())

	_, err = AvailabilityParams{Participants: []string{"a"}, WindowStart: "x", WindowEnd: "y"}.Request()
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AvailabilityParams{
		WindowStart: "2025-03-10T09:00:00Z",
		WindowEnd:   "2025-03-10T17:00:00Z",
	}.Request()
	assert.ErrorIs(t, err, ErrInvalidInput)
}
