package proposal

import (
	"context"
	"errors"
	"strings"

	"github.com/teemow/slotfinder/internal/availability"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/interval"
	"github.com/teemow/slotfinder/internal/intersect"
	"github.com/teemow/slotfinder/internal/logging"
)

// nativeRequest builds the finder request. The first MinRequiredAttendees
// participants are required and the rest optional; everyone is required
// when the threshold is unset or covers all participants. Buffers are folded
// into the duration.
func nativeRequest(req ProposalRequest) NativeRequest {
	required := req.Participants
	var optional []string
	if n := req.MinRequiredAttendees; n > 0 && n < len(req.Participants) {
		required = req.Participants[:n]
		optional = req.Participants[n:]
	}
	return NativeRequest{
		Required:        append([]string(nil), required...),
		Optional:        append([]string(nil), optional...),
		DurationMinutes: req.DurationMinutes + req.BufferBeforeMinutes + req.BufferAfterMinutes,
		Window:          req.Window,
		MaxCandidates:   req.MaxCandidates,
		WorkHoursOnly:   req.WorkHoursOnly,
		TimeZone:        req.TimeZone,
	}
}

// tryNative returns the converted native suggestions, or false when the
// local fallback should run instead.
func (s *Service) tryNative(ctx context.Context, req ProposalRequest, requestID string) ([]intersect.CandidateSlot, bool) {
	if s.native == nil {
		s.fallback(ctx, requestID, instrumentation.FallbackUnavailable, nil)
		return nil, false
	}

	ctx, span := instrumentation.StartSpan(ctx, "proposal.native_finder")
	defer span.End()

	nreq := nativeRequest(req)
	suggestions, err := availability.CallWithTimeout(ctx, s.opts.NativeTimeout, func(ctx context.Context) ([]Suggestion, error) {
		return s.native.ProposeSlots(ctx, nreq)
	})
	if err != nil {
		instrumentation.SetSpanError(span, err)
		reason := instrumentation.FallbackError
		switch {
		case errors.Is(err, availability.ErrTimeout):
			reason = instrumentation.FallbackTimeout
		case errors.Is(err, ErrNativeUnsupported):
			reason = instrumentation.FallbackUnavailable
		}
		s.fallback(ctx, requestID, reason, err)
		return nil, false
	}

	candidates := convertSuggestions(suggestions, req)
	if len(candidates) == 0 {
		s.fallback(ctx, requestID, instrumentation.FallbackEmpty, nil)
		return nil, false
	}
	instrumentation.SetSpanSuccess(span)
	return candidates, true
}

func (s *Service) fallback(ctx context.Context, requestID, reason string, err error) {
	s.metrics.RecordNativeFallback(ctx, reason)
	s.logger.Info("native finder fallback",
		logging.RequestID(requestID),
		"reason", reason,
		logging.Err(err))
}

// convertSuggestions maps native suggestions onto candidate slots. When
// buffers were folded into the request the slot is cut back to the meeting
// itself, starting after the leading buffer. Suggestions that fall outside
// the window or are too short are skipped.
func convertSuggestions(suggestions []Suggestion, req ProposalRequest) []intersect.CandidateSlot {
	duration := interval.Minutes(req.DurationMinutes)
	before := interval.Minutes(req.BufferBeforeMinutes)
	buffered := req.BufferBeforeMinutes > 0 || req.BufferAfterMinutes > 0

	out := make([]intersect.CandidateSlot, 0, len(suggestions))
	for _, sg := range suggestions {
		slot := interval.New(sg.Start, sg.End)
		if buffered {
			start := sg.Start.Add(before)
			slot = interval.New(start, start.Add(duration))
			if slot.End.After(sg.End) {
				continue
			}
		}
		if slot.Duration() < duration || slot.Start.Before(req.Window.Start) || slot.End.After(req.Window.End) {
			continue
		}

		statuses := make(map[string]availability.Status, len(req.Participants))
		notBusy := 0
		for _, p := range req.Participants {
			st := MapNativeStatus(lookupStatus(sg.AttendeeStatus, p))
			statuses[p] = st
			if st != availability.StatusBusy {
				notBusy++
			}
		}
		out = append(out, intersect.CandidateSlot{
			Start:                slot.Start,
			End:                  slot.End,
			AttendeeAvailability: statuses,
			Confidence:           float64(notBusy) / float64(len(req.Participants)),
		})
		if len(out) == req.MaxCandidates {
			break
		}
	}
	return out
}

func lookupStatus(statuses map[string]string, participant string) string {
	if v, ok := statuses[participant]; ok {
		return v
	}
	for k, v := range statuses {
		if strings.EqualFold(k, participant) {
			return v
		}
	}
	return ""
}

// MapNativeStatus folds backend availability names into free, tentative or
// busy. Unknown and missing values count as tentative.
func MapNativeStatus(value string) availability.Status {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "free", "workingelsewhere":
		return availability.StatusFree
	case "busy", "oof", "outofoffice":
		return availability.StatusBusy
	default:
		return availability.StatusTentative
	}
}
