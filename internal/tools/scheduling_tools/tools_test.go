package scheduling_tools

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/logging"
	"github.com/teemow/slotfinder/internal/proposal"
	"github.com/teemow/slotfinder/internal/server"
)

const directoryConfig = `
default_provider: static
participants:
  - id: alice@example.com
    busy:
      - {start: "2025-03-10T09:00:00Z", end: "2025-03-10T10:00:00Z", label: "1:1"}
  - id: bob@example.com
    busy:
      - {start: "2025-03-10T10:30:00Z", end: "2025-03-10T11:00:00Z", status: tentative}
`

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	cfg, err := config.Parse([]byte(directoryConfig))
	require.NoError(t, err)
	scheduling, err := server.NewScheduling(context.Background(), cfg, logging.Discard(), nil)
	require.NoError(t, err)
	sc, err := server.NewServerContext(context.Background(), server.Options{Service: scheduling.Service, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callTool(t *testing.T, sc *server.ServerContext, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcpserver.NewMCPServer("test-server", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterSchedulingTools(s, sc))

	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestRegisterSchedulingTools(t *testing.T) {
	sc := newServerContext(t)
	s := mcpserver.NewMCPServer("test-server", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterSchedulingTools(s, sc))

	tools := s.ListTools()
	assert.Contains(t, tools, GetAvailabilityTool)
	assert.Contains(t, tools, ProposeMeetingTimesTool)
}

func TestGetAvailability(t *testing.T) {
	sc := newServerContext(t)
	result := callTool(t, sc, GetAvailabilityTool, map[string]any{
		"participants": []any{"alice@example.com", "bob@example.com"},
		"windowStart":  "2025-03-10T08:00:00Z",
		"windowEnd":    "2025-03-10T12:00:00Z",
		"timeZone":     "Europe/Berlin",
	})
	require.False(t, result.IsError, resultText(t, result))

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "Europe/Berlin", resp.TimeZone)
	require.Len(t, resp.PerUser, 2)

	alice := resp.PerUser[0]
	assert.Equal(t, "alice@example.com", alice.Participant)
	require.Len(t, alice.Busy, 1)
	assert.Equal(t, Period{
		Start:  "2025-03-10T10:00:00+01:00",
		End:    "2025-03-10T11:00:00+01:00",
		Status: "busy",
		Label:  "1:1",
	}, alice.Busy[0])
	require.NotNil(t, alice.WorkingHours)
	assert.Equal(t, "09:00", alice.WorkingHours.Start)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, alice.WorkingHours.Days)

	require.Len(t, alice.Free, 2)
	assert.Equal(t, Period{Start: "2025-03-10T09:00:00+01:00", End: "2025-03-10T10:00:00+01:00"}, alice.Free[0])
	assert.Equal(t, Period{Start: "2025-03-10T11:00:00+01:00", End: "2025-03-10T13:00:00+01:00"}, alice.Free[1])

	bob := resp.PerUser[1]
	require.Len(t, bob.Busy, 1)
	assert.Equal(t, "tentative", bob.Busy[0].Status)
}

func TestGetAvailability_RejectsBareLocalTime(t *testing.T) {
	sc := newServerContext(t)
	result := callTool(t, sc, GetAvailabilityTool, map[string]any{
		"participants": []any{"alice@example.com"},
		"windowStart":  "2025-03-10T08:00:00",
		"windowEnd":    "2025-03-10T12:00:00Z",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "windowStart")
}

func TestProposeMeetingTimes(t *testing.T) {
	sc := newServerContext(t)
	result := callTool(t, sc, ProposeMeetingTimesTool, map[string]any{
		"participants":    "alice@example.com, bob@example.com",
		"durationMinutes": 30.0,
		"windowStart":     "2025-03-10T09:00:00Z",
		"windowEnd":       "2025-03-10T12:00:00Z",
		"maxCandidates":   5.0,
	})
	require.False(t, result.IsError, resultText(t, result))

	var resp ProposalResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))

	assert.Equal(t, proposal.SourceLocal, resp.Source)
	assert.Equal(t, "UTC", resp.TimeZone)
	require.NotEmpty(t, resp.Candidates)
	assert.LessOrEqual(t, len(resp.Candidates), 5)

	best := resp.Candidates[0]
	assert.Equal(t, 1.0, best.Confidence)
	assert.Equal(t, map[string]string{
		"alice@example.com": "free",
		"bob@example.com":   "free",
	}, best.AttendeeAvailability)

	aliceBusyEnd := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	for _, c := range resp.Candidates {
		start, err := time.Parse(time.RFC3339, c.Start)
		require.NoError(t, err)
		if c.AttendeeAvailability["alice@example.com"] == "free" {
			assert.False(t, start.Before(aliceBusyEnd), "alice is busy until 10:00, got %s", c.Start)
		}
	}
}

func TestProposeMeetingTimes_ArgumentErrors(t *testing.T) {
	sc := newServerContext(t)
	base := func() map[string]any {
		return map[string]any{
			"participants":    []any{"alice@example.com", "bob@example.com"},
			"durationMinutes": 30.0,
			"windowStart":     "2025-03-10T09:00:00Z",
			"windowEnd":       "2025-03-10T12:00:00Z",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"missing duration", func(a map[string]any) { delete(a, "durationMinutes") }, "durationMinutes"},
		{"fractional duration", func(a map[string]any) { a["durationMinutes"] = 30.5 }, "durationMinutes"},
		{"duration too long", func(a map[string]any) { a["durationMinutes"] = 1441.0 }, "durationMinutes"},
		{"fractional candidates", func(a map[string]any) { a["maxCandidates"] = 2.5 }, "maxCandidates"},
		{"negative buffer", func(a map[string]any) { a["bufferBeforeMinutes"] = -5.0 }, "buffers"},
		{"too many required", func(a map[string]any) { a["minRequiredAttendees"] = 3.0 }, "minRequiredAttendees"},
		{"no participants", func(a map[string]any) { a["participants"] = []any{} }, "participant"},
		{"reversed window", func(a map[string]any) { a["windowEnd"] = "2025-03-10T08:00:00Z" }, "windowStart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := base()
			tt.mutate(args)
			result := callTool(t, sc, ProposeMeetingTimesTool, args)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestOptionalInt(t *testing.T) {
	n, err := optionalInt(map[string]any{"x": nil}, "x")
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = optionalInt(map[string]any{"x": 15.0}, "x")
	assert.NoError(t, err)
	assert.Equal(t, 15, n)

	_, err = optionalInt(map[string]any{"x": "soon"}, "x")
	assert.Error(t, err)
}
