package scheduling_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/slotfinder/internal/proposal"
	"github.com/teemow/slotfinder/internal/server"
	"github.com/teemow/slotfinder/internal/tools/common"
)

// Tool names.
const (
	GetAvailabilityTool     = "get_availability"
	ProposeMeetingTimesTool = "propose_meeting_times"
)

// RegisterSchedulingTools registers scheduling and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAvailabilityTool := mcp.NewTool(GetAvailabilityTool,
		mcp.WithDescription("Get busy and free time for one or more participants in a time range"),
		participantsOption(),
		mcp.WithString("windowStart",
			mcp.Required(),
			mcp.Description("Start of the range (RFC3339 with Z or offset, e.g., '2025-03-10T08:00:00Z')"),
		),
		mcp.WithString("windowEnd",
			mcp.Required(),
			mcp.Description("End of the range (RFC3339 with Z or offset, e.g., '2025-03-14T18:00:00Z')"),
		),
		mcp.WithNumber("granularityMinutes",
			mcp.Description(fmt.Sprintf("Free interval boundaries are rounded to this many minutes (default: %d)", proposal.DefaultGranularityMinutes)),
		),
		mcp.WithBoolean("workHoursOnly",
			mcp.Description("Only return free intervals inside each participant's working hours (default: false)"),
		),
		timeZoneOption(),
	)

	s.AddTool(getAvailabilityTool, common.InstrumentedToolHandler(GetAvailabilityTool, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAvailability(ctx, request, sc)
		}))

	proposeMeetingTimesTool := mcp.NewTool(ProposeMeetingTimesTool,
		mcp.WithDescription("Propose ranked meeting times that work for all or most participants"),
		participantsOption(),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithString("windowStart",
			mcp.Required(),
			mcp.Description("Earliest meeting start (RFC3339 with Z or offset)"),
		),
		mcp.WithString("windowEnd",
			mcp.Required(),
			mcp.Description("Latest meeting end (RFC3339 with Z or offset)"),
		),
		mcp.WithNumber("maxCandidates",
			mcp.Description(fmt.Sprintf("Maximum number of slots to return (default: %d)", proposal.DefaultMaxCandidates)),
		),
		mcp.WithNumber("bufferBeforeMinutes",
			mcp.Description("Free time required before the meeting (default: 0)"),
		),
		mcp.WithNumber("bufferAfterMinutes",
			mcp.Description("Free time required after the meeting (default: 0)"),
		),
		mcp.WithBoolean("workHoursOnly",
			mcp.Description("Only consider time inside each participant's working hours (default: false)"),
		),
		mcp.WithNumber("minRequiredAttendees",
			mcp.Description("Drop slots where fewer participants are free or tentative (default: 0, no filter)"),
		),
		mcp.WithNumber("granularityMinutes",
			mcp.Description(fmt.Sprintf("Slot boundaries are rounded to this many minutes (default: %d)", proposal.DefaultGranularityMinutes)),
		),
		timeZoneOption(),
	)

	s.AddTool(proposeMeetingTimesTool, common.InstrumentedToolHandler(ProposeMeetingTimesTool, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleProposeMeetingTimes(ctx, request, sc)
		}))

	return nil
}

func participantsOption() mcp.ToolOption {
	return mcp.WithArray("participants",
		mcp.Required(),
		mcp.Description("Participant email addresses or calendar ids"),
		mcp.WithStringItems(),
	)
}

func timeZoneOption() mcp.ToolOption {
	return mcp.WithString("timeZone",
		mcp.Description("IANA time zone for working hours and output (default: UTC)"),
	)
}

func handleGetAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	params := proposal.AvailabilityParams{
		Participants:  common.StringListArg(args, "participants"),
		WindowStart:   common.StringArg(args, "windowStart"),
		WindowEnd:     common.StringArg(args, "windowEnd"),
		WorkHoursOnly: common.BoolArg(args, "workHoursOnly", false),
		TimeZone:      common.StringArg(args, "timeZone"),
	}
	var err error
	if params.GranularityMinutes, err = optionalInt(args, "granularityMinutes"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req, err := params.Request()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sc.Service().GetAvailability(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get availability: %v", err)), nil
	}
	common.InvocationFromContext(ctx).WithRequestID(result.RequestID)

	return jsonResult(NewAvailabilityResponse(result))
}

func handleProposeMeetingTimes(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	params := proposal.ProposalParams{
		Participants:  common.StringListArg(args, "participants"),
		WindowStart:   common.StringArg(args, "windowStart"),
		WindowEnd:     common.StringArg(args, "windowEnd"),
		WorkHoursOnly: common.BoolArg(args, "workHoursOnly", false),
		TimeZone:      common.StringArg(args, "timeZone"),
	}

	duration, ok := common.IntArg(args, "durationMinutes")
	if !ok {
		return mcp.NewToolResultError("durationMinutes is required and must be a whole number"), nil
	}
	params.DurationMinutes = duration

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"maxCandidates", &params.MaxCandidates},
		{"bufferBeforeMinutes", &params.BufferBeforeMinutes},
		{"bufferAfterMinutes", &params.BufferAfterMinutes},
		{"minRequiredAttendees", &params.MinRequiredAttendees},
		{"granularityMinutes", &params.GranularityMinutes},
	} {
		n, err := optionalInt(args, f.name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*f.dst = n
	}

	req, err := params.Request()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sc.Service().ProposeMeetingTimes(ctx, req)
	if err != nil {
		if errors.Is(err, proposal.ErrNoAvailabilityData) {
			return mcp.NewToolResultError("No calendar data could be retrieved for any participant"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to propose meeting times: %v", err)), nil
	}
	common.InvocationFromContext(ctx).
		WithRequestID(result.RequestID).
		WithOutcome(result.Source, len(result.Candidates))

	return jsonResult(NewProposalResponse(result))
}

// optionalInt returns 0 for an absent or null argument.
func optionalInt(args map[string]any, key string) (int, error) {
	if v, present := args[key]; !present || v == nil {
		return 0, nil
	}
	n, ok := common.IntArg(args, key)
	if !ok {
		return 0, fmt.Errorf("%s must be a whole number", key)
	}
	return n, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
