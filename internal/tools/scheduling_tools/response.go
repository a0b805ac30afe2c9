package scheduling_tools

import (
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/proposal"
)

// Period is an interval rendered for output.
type Period struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status,omitempty"`
	Label  string `json:"label,omitempty"`
}

// WorkingHours is interval.WorkingHours rendered for output.
type WorkingHours struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Days     []string `json:"days"`
	TimeZone string   `json:"timeZone,omitempty"`
}

// UserAvailability is one participant in a get_availability response.
type UserAvailability struct {
	Participant  string        `json:"participant"`
	WorkingHours *WorkingHours `json:"workingHours"`
	Busy         []Period      `json:"busy"`
	Free         []Period      `json:"free"`
}

// AvailabilityResponse is the get_availability result.
type AvailabilityResponse struct {
	RequestID   string             `json:"requestId"`
	TimeZone    string             `json:"timeZone"`
	PerUser     []UserAvailability `json:"perUser"`
	Unavailable []string           `json:"unavailable,omitempty"`
}

// Candidate is one proposed slot.
type Candidate struct {
	Start                string            `json:"start"`
	End                  string            `json:"end"`
	Confidence           float64           `json:"confidence"`
	AttendeeAvailability map[string]string `json:"attendeeAvailability"`
}

// ProposalResponse is the propose_meeting_times result.
type ProposalResponse struct {
	RequestID   string      `json:"requestId"`
	TimeZone    string      `json:"timeZone"`
	Source      string      `json:"source"`
	Candidates  []Candidate `json:"candidates"`
	Unavailable []string    `json:"unavailable,omitempty"`
}

// NewAvailabilityResponse renders result in its time zone.
func NewAvailabilityResponse(result *proposal.AvailabilityResult) AvailabilityResponse {
	resp := AvailabilityResponse{
		RequestID:   result.RequestID,
		TimeZone:    result.TimeZone,
		PerUser:     make([]UserAvailability, 0, len(result.PerUser)),
		Unavailable: result.Unavailable,
	}
	for _, ua := range result.PerUser {
		resp.PerUser = append(resp.PerUser, userAvailability(ua, result.TimeZone))
	}
	return resp
}

// NewProposalResponse renders result in its time zone.
func NewProposalResponse(result *proposal.ProposalResult) ProposalResponse {
	resp := ProposalResponse{
		RequestID:   result.RequestID,
		TimeZone:    result.TimeZone,
		Source:      result.Source,
		Candidates:  make([]Candidate, 0, len(result.Candidates)),
		Unavailable: result.Unavailable,
	}
	for _, c := range result.Candidates {
		statuses := make(map[string]string, len(c.AttendeeAvailability))
		for id, s := range c.AttendeeAvailability {
			statuses[id] = string(s)
		}
		resp.Candidates = append(resp.Candidates, Candidate{
			Start:                interval.FormatInZone(c.Start, result.TimeZone),
			End:                  interval.FormatInZone(c.End, result.TimeZone),
			Confidence:           c.Confidence,
			AttendeeAvailability: statuses,
		})
	}
	return resp
}

func userAvailability(ua availability.UserAvailability, zone string) UserAvailability {
	out := UserAvailability{
		Participant: ua.ParticipantID,
		Busy:        make([]Period, 0, len(ua.Busy)),
		Free:        make([]Period, 0, len(ua.Free)),
	}
	if wh := ua.WorkingHours; wh != nil {
		days := make([]string, 0, len(wh.Days))
		for _, d := range wh.Days {
			days = append(days, d.String())
		}
		out.WorkingHours = &WorkingHours{
			Start:    wh.StartClock,
			End:      wh.EndClock,
			Days:     days,
			TimeZone: wh.TimeZone,
		}
	}
	for _, b := range ua.Busy {
		out.Busy = append(out.Busy, Period{
			Start:  interval.FormatInZone(b.Start, zone),
			End:    interval.FormatInZone(b.End, zone),
			Status: string(b.Status),
			Label:  b.Label,
		})
	}
	for _, f := range ua.Free {
		out.Free = append(out.Free, period(f.Start, f.End, zone))
	}
	return out
}

func period(start, end time.Time, zone string) Period {
	return Period{
		Start: interval.FormatInZone(start, zone),
		End:   interval.FormatInZone(end, zone),
	}
}
