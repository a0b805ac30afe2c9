package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/slotfinder/internal/proposal"
)

type attendeeBase struct {
	Type         string       `json:"type"`
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type timeSlot struct {
	Start dateTimeTimeZone `json:"start"`
	End   dateTimeTimeZone `json:"end"`
}

type meetingTimesRequest struct {
	Attendees      []attendeeBase `json:"attendees"`
	TimeConstraint struct {
		ActivityDomain string     `json:"activityDomain"`
		TimeSlots      []timeSlot `json:"timeSlots"`
	} `json:"timeConstraint"`
	MeetingDuration         string `json:"meetingDuration"`
	MaxCandidates           int    `json:"maxCandidates,omitempty"`
	IsOrganizerOptional     bool   `json:"isOrganizerOptional"`
	ReturnSuggestionReasons bool   `json:"returnSuggestionReasons"`
}

type meetingTimesResponse struct {
	EmptySuggestionsReason string `json:"emptySuggestionsReason"`
	MeetingTimeSuggestions []struct {
		Confidence           float64  `json:"confidence"`
		MeetingTimeSlot      timeSlot `json:"meetingTimeSlot"`
		AttendeeAvailability []struct {
			Attendee     attendeeBase `json:"attendee"`
			Availability string       `json:"availability"`
		} `json:"attendeeAvailability"`
	} `json:"meetingTimeSuggestions"`
}

// ProposeSlots calls findMeetingTimes. Requests naming a participant outside
// this tenant return proposal.ErrNativeUnsupported.
func (c *Client) ProposeSlots(ctx context.Context, req proposal.NativeRequest) ([]proposal.Suggestion, error) {
	participants := req.Participants()
	if c.supports != nil {
		for _, p := range participants {
			if !c.supports(p) {
				return nil, fmt.Errorf("%w: %s is not a Graph mailbox", proposal.ErrNativeUnsupported, p)
			}
		}
	}

	body := meetingTimesRequest{
		MeetingDuration:         isoDuration(req.DurationMinutes),
		MaxCandidates:           req.MaxCandidates,
		IsOrganizerOptional:     true,
		ReturnSuggestionReasons: true,
	}
	for _, p := range req.Required {
		body.Attendees = append(body.Attendees, attendeeBase{Type: "required", EmailAddress: emailAddress{Address: p}})
	}
	for _, p := range req.Optional {
		body.Attendees = append(body.Attendees, attendeeBase{Type: "optional", EmailAddress: emailAddress{Address: p}})
	}
	body.TimeConstraint.ActivityDomain = "unrestricted"
	if req.WorkHoursOnly {
		body.TimeConstraint.ActivityDomain = "work"
	}
	body.TimeConstraint.TimeSlots = []timeSlot{{
		Start: dateTimeTimeZone{DateTime: req.Window.Start.UTC().Format(graphTimeFormat), TimeZone: "UTC"},
		End:   dateTimeTimeZone{DateTime: req.Window.End.UTC().Format(graphTimeFormat), TimeZone: "UTC"},
	}}

	var resp meetingTimesResponse
	if err := c.post(ctx, c.mailboxPath()+"/findMeetingTimes", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to find meeting times: %w", err)
	}

	suggestions := make([]proposal.Suggestion, 0, len(resp.MeetingTimeSuggestions))
	for _, s := range resp.MeetingTimeSuggestions {
		start, err := parseDateTime(s.MeetingTimeSlot.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseDateTime(s.MeetingTimeSlot.End)
		if err != nil {
			return nil, err
		}
		statuses := make(map[string]string, len(s.AttendeeAvailability))
		for _, a := range s.AttendeeAvailability {
			statuses[matchParticipant(participants, a.Attendee.EmailAddress.Address)] = a.Availability
		}
		suggestions = append(suggestions, proposal.Suggestion{
			Start:          start,
			End:            end,
			AttendeeStatus: statuses,
		})
	}
	return suggestions, nil
}

// matchParticipant returns the requested spelling of address.
func matchParticipant(participants []string, address string) string {
	for _, p := range participants {
		if strings.EqualFold(p, address) {
			return p
		}
	}
	return address
}

// isoDuration formats minutes as an ISO 8601 duration such as PT1H30M.
func isoDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("PT%dH%dM", h, m)
	case h > 0:
		return fmt.Sprintf("PT%dH", h)
	default:
		return fmt.Sprintf("PT%dM", m)
	}
}
