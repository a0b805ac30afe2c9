package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/slotfinder/internal/proposal"
	"github.com/teemow/slotfinder/internal/tools/scheduling_tools"
)

func newProposeCmd() *cobra.Command {
	var (
		participants string
		params       proposal.ProposalParams
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose ranked meeting times",
		Long: `Find meeting slots for all participants. The native finder of the
calendar backend is used when configured; otherwise calendars are
intersected locally.

Example:
  slotfinder propose --participants alice@example.com,bob@example.com \
    --duration 45 --start 2025-03-10T08:00:00Z --end 2025-03-14T18:00:00Z \
    --buffer-before 10 --work-hours-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(outputFormat); err != nil {
				return err
			}
			params.Participants = parseCommaSeparatedList(participants)
			req, err := params.Request()
			if err != nil {
				return err
			}

			_, scheduling, err := newScheduling(cmd.Context(), "cli.propose", nil)
			if err != nil {
				return err
			}
			result, err := scheduling.Service.ProposeMeetingTimes(cmd.Context(), req)
			if err != nil {
				return err
			}

			resp := scheduling_tools.NewProposalResponse(result)
			if outputFormat == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return printProposal(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&participants, "participants", "p", "", "Comma-separated participant ids (required)")
	cmd.Flags().IntVarP(&params.DurationMinutes, "duration", "d", 0, "Meeting duration in minutes (required)")
	cmd.Flags().StringVar(&params.WindowStart, "start", "", "Window start, RFC3339 with Z or offset (required)")
	cmd.Flags().StringVar(&params.WindowEnd, "end", "", "Window end, RFC3339 with Z or offset (required)")
	cmd.Flags().IntVarP(&params.MaxCandidates, "max", "n", proposal.DefaultMaxCandidates, "Maximum number of slots")
	cmd.Flags().IntVar(&params.BufferBeforeMinutes, "buffer-before", 0, "Free minutes required before the meeting")
	cmd.Flags().IntVar(&params.BufferAfterMinutes, "buffer-after", 0, "Free minutes required after the meeting")
	cmd.Flags().BoolVar(&params.WorkHoursOnly, "work-hours-only", false, "Only consider time inside working hours")
	cmd.Flags().IntVar(&params.MinRequiredAttendees, "min-attendees", 0, "Drop slots with fewer free or tentative participants (0 disables)")
	cmd.Flags().IntVar(&params.GranularityMinutes, "granularity", proposal.DefaultGranularityMinutes, "Slot boundary rounding in minutes")
	cmd.Flags().StringVar(&params.TimeZone, "time-zone", proposal.DefaultTimeZone, "IANA time zone for working hours and output")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", outputText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("participants")
	_ = cmd.MarkFlagRequired("duration")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func printProposal(w io.Writer, resp scheduling_tools.ProposalResponse) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d slot(s) via %s (%s):\n\n", len(resp.Candidates), resp.Source, resp.TimeZone))

	for i, c := range resp.Candidates {
		sb.WriteString(fmt.Sprintf("%d. %s to %s (confidence %.2f)\n", i+1, c.Start, c.End, c.Confidence))

		ids := make([]string, 0, len(c.AttendeeAvailability))
		for id := range c.AttendeeAvailability {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			sb.WriteString(fmt.Sprintf("   %s: %s\n", id, c.AttendeeAvailability[id]))
		}
	}
	if len(resp.Unavailable) > 0 {
		sb.WriteString(fmt.Sprintf("\nCalendars unavailable: %s\n", strings.Join(resp.Unavailable, ", ")))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
