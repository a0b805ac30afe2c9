package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/interval"
)

type scheduleRequest struct {
	Schedules                []string         `json:"schedules"`
	StartTime                dateTimeTimeZone `json:"startTime"`
	EndTime                  dateTimeTimeZone `json:"endTime"`
	AvailabilityViewInterval int              `json:"availabilityViewInterval"`
}

type scheduleResponse struct {
	Value []scheduleInformation `json:"value"`
}

type scheduleInformation struct {
	ScheduleID    string         `json:"scheduleId"`
	ScheduleItems []scheduleItem `json:"scheduleItems"`
	WorkingHours  *workingHours  `json:"workingHours"`
	Error         *struct {
		Message      string `json:"message"`
		ResponseCode string `json:"responseCode"`
	} `json:"error"`
}

type scheduleItem struct {
	Status  string           `json:"status"`
	Subject string           `json:"subject"`
	Start   dateTimeTimeZone `json:"start"`
	End     dateTimeTimeZone `json:"end"`
}

type workingHours struct {
	DaysOfWeek []string `json:"daysOfWeek"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	TimeZone   struct {
		Name string `json:"name"`
	} `json:"timeZone"`
}

func (c *Client) schedule(ctx context.Context, participantID string, start, end time.Time) (*scheduleInformation, error) {
	body := scheduleRequest{
		Schedules:                []string{participantID},
		StartTime:                dateTimeTimeZone{DateTime: start.UTC().Format(graphTimeFormat), TimeZone: "UTC"},
		EndTime:                  dateTimeTimeZone{DateTime: end.UTC().Format(graphTimeFormat), TimeZone: "UTC"},
		AvailabilityViewInterval: availabilityViewInterval,
	}

	var resp scheduleResponse
	if err := c.post(ctx, c.mailboxPath()+"/calendar/getSchedule", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	for i := range resp.Value {
		info := &resp.Value[i]
		if !strings.EqualFold(info.ScheduleID, participantID) {
			continue
		}
		if info.Error != nil {
			return nil, fmt.Errorf("schedule for %s unavailable: %s", participantID, info.Error.Message)
		}
		return info, nil
	}
	return nil, fmt.Errorf("getSchedule response has no entry for %s", participantID)
}

// BusyPeriods returns the participant's schedule items. The working hours
// from the same response are kept for the following WorkingHours call.
func (c *Client) BusyPeriods(ctx context.Context, participantID string, start, end time.Time) ([]availability.BusyPeriod, error) {
	info, err := c.schedule(ctx, participantID, start, end)
	if err != nil {
		return nil, err
	}

	periods := make([]availability.BusyPeriod, 0, len(info.ScheduleItems))
	for _, item := range info.ScheduleItems {
		s, err := parseDateTime(item.Start)
		if err != nil {
			return nil, err
		}
		e, err := parseDateTime(item.End)
		if err != nil {
			return nil, err
		}
		periods = append(periods, availability.BusyPeriod{
			Interval: interval.New(s, e),
			Status:   scheduleStatus(item.Status),
			Label:    item.Subject,
		})
	}

	c.mu.Lock()
	c.workingHours[strings.ToLower(participantID)] = convertWorkingHours(info.WorkingHours)
	c.mu.Unlock()
	return periods, nil
}

// WorkingHours returns the template reported by getSchedule. Without a
// preceding BusyPeriods call a one-hour schedule is fetched.
func (c *Client) WorkingHours(ctx context.Context, participantID string) (*interval.WorkingHours, error) {
	key := strings.ToLower(participantID)
	c.mu.Lock()
	wh, ok := c.workingHours[key]
	delete(c.workingHours, key)
	c.mu.Unlock()
	if ok {
		return wh, nil
	}

	now := time.Now().UTC().Truncate(time.Hour)
	info, err := c.schedule(ctx, participantID, now, now.Add(time.Hour))
	if err != nil {
		return nil, err
	}
	return convertWorkingHours(info.WorkingHours), nil
}

// scheduleStatus maps Graph freeBusyStatus values. workingElsewhere is
// treated as free; unknown values block time.
func scheduleStatus(status string) availability.Status {
	switch strings.ToLower(status) {
	case "free", "workingelsewhere":
		return availability.StatusFree
	case "tentative":
		return availability.StatusTentative
	default:
		return availability.StatusBusy
	}
}

// convertWorkingHours returns nil when Graph reports no usable template.
func convertWorkingHours(wh *workingHours) *interval.WorkingHours {
	if wh == nil {
		return nil
	}
	start, err := interval.NormalizeClock(wh.StartTime)
	if err != nil {
		return nil
	}
	end, err := interval.NormalizeClock(wh.EndTime)
	if err != nil {
		return nil
	}

	out := &interval.WorkingHours{
		StartClock: start,
		EndClock:   end,
		TimeZone:   IANAZone(wh.TimeZone.Name),
	}
	for _, name := range wh.DaysOfWeek {
		d, err := interval.ParseWeekday(name)
		if err != nil {
			return nil
		}
		out.Days = append(out.Days, d)
	}
	return out
}

func parseDateTime(dt dateTimeTimeZone) (time.Time, error) {
	loc := time.UTC
	if dt.TimeZone != "" && !strings.EqualFold(dt.TimeZone, "UTC") {
		if l, ok := interval.LoadLocation(IANAZone(dt.TimeZone)); ok {
			loc = l
		}
	}
	t, err := time.ParseInLocation(graphTimeFormat, dt.DateTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid Graph dateTime %q: %w", dt.DateTime, err)
	}
	return t, nil
}
