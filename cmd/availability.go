package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/slotfinder/internal/proposal"
	"github.com/teemow/slotfinder/internal/tools/scheduling_tools"
)

func newAvailabilityCmd() *cobra.Command {
	var (
		participants string
		params       proposal.AvailabilityParams
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show busy and free time for participants",
		Long: `Fetch each participant's calendar through the configured provider and
print their busy periods and free intervals within the window.

Example:
  slotfinder availability --participants alice@example.com,bob@example.com \
    --start 2025-03-10T08:00:00Z --end 2025-03-14T18:00:00Z --time-zone Europe/Berlin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(outputFormat); err != nil {
				return err
			}
			params.Participants = parseCommaSeparatedList(participants)
			req, err := params.Request()
			if err != nil {
				return err
			}

			_, scheduling, err := newScheduling(cmd.Context(), "cli.availability", nil)
			if err != nil {
				return err
			}
			result, err := scheduling.Service.GetAvailability(cmd.Context(), req)
			if err != nil {
				return err
			}

			resp := scheduling_tools.NewAvailabilityResponse(result)
			if outputFormat == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return printAvailability(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&participants, "participants", "p", "", "Comma-separated participant ids (required)")
	cmd.Flags().StringVar(&params.WindowStart, "start", "", "Window start, RFC3339 with Z or offset (required)")
	cmd.Flags().StringVar(&params.WindowEnd, "end", "", "Window end, RFC3339 with Z or offset (required)")
	cmd.Flags().IntVar(&params.GranularityMinutes, "granularity", proposal.DefaultGranularityMinutes, "Free interval rounding in minutes")
	cmd.Flags().BoolVar(&params.WorkHoursOnly, "work-hours-only", false, "Only show free time inside working hours")
	cmd.Flags().StringVar(&params.TimeZone, "time-zone", proposal.DefaultTimeZone, "IANA time zone for working hours and output")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", outputText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("participants")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func printAvailability(w io.Writer, resp scheduling_tools.AvailabilityResponse) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Availability (%s):\n\n", resp.TimeZone))

	for _, ua := range resp.PerUser {
		sb.WriteString(fmt.Sprintf("%s\n", ua.Participant))
		if ua.WorkingHours == nil {
			sb.WriteString("  Calendar unavailable\n\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("  Working hours: %s-%s %s\n",
			ua.WorkingHours.Start, ua.WorkingHours.End, strings.Join(ua.WorkingHours.Days, ",")))

		sb.WriteString(fmt.Sprintf("  Busy: %d\n", len(ua.Busy)))
		for _, b := range ua.Busy {
			sb.WriteString(fmt.Sprintf("    %s to %s (%s)", b.Start, b.End, b.Status))
			if b.Label != "" {
				sb.WriteString(" " + b.Label)
			}
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("  Free: %d\n", len(ua.Free)))
		for _, f := range ua.Free {
			sb.WriteString(fmt.Sprintf("    %s to %s\n", f.Start, f.End))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
