package resources

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/slotfinder/internal/server"
)

// Resource URIs.
const (
	ParticipantsURI = "directory://participants"
	SettingsURI     = "directory://settings"
)

const mimeJSON = "application/json"

type participantEntry struct {
	ID           string             `json:"id"`
	Provider     string             `json:"provider"`
	WorkingHours *workingHoursEntry `json:"workingHours,omitempty"`
	StaticBusy   int                `json:"staticBusyPeriods,omitempty"`
}

type workingHoursEntry struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Days     []string `json:"days"`
	TimeZone string   `json:"timeZone,omitempty"`
}

type settingsEntry struct {
	TimeZone        string `json:"timeZone"`
	DefaultProvider string `json:"defaultProvider"`
	NativeFinder    bool   `json:"nativeFinder"`
	ProviderTimeout string `json:"providerTimeout"`
	Concurrency     int    `json:"concurrency"`
	Participants    int    `json:"participants"`
}

// RegisterDirectoryResources registers the participant directory and the
// scheduling defaults as MCP resources.
func RegisterDirectoryResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	participants := mcp.NewResource(
		ParticipantsURI,
		"Participant Directory",
		mcp.WithResourceDescription("Participants with a configured calendar backend and their working hours overrides"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(participants, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleParticipants(request, sc)
	})

	settings := mcp.NewResource(
		SettingsURI,
		"Scheduling Settings",
		mcp.WithResourceDescription("Default time zone and provider used when a request leaves them out"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(settings, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(request, sc)
	})

	return nil
}

func handleParticipants(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()

	entries := make([]participantEntry, 0, len(cfg.Participants))
	for _, p := range cfg.Participants {
		e := participantEntry{
			ID:         p.ID,
			Provider:   cfg.ProviderFor(p.ID),
			StaticBusy: len(p.Busy),
		}
		if wh := p.WorkingHours; wh != nil {
			e.WorkingHours = &workingHoursEntry{
				Start:    wh.Start,
				End:      wh.End,
				Days:     wh.Days,
				TimeZone: wh.TimeZone,
			}
		}
		entries = append(entries, e)
	}

	return textContents(request.Params.URI, map[string]any{
		"defaultProvider": cfg.DefaultProvider,
		"participants":    entries,
	})
}

func handleSettings(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()

	return textContents(request.Params.URI, settingsEntry{
		TimeZone:        cfg.TimeZone,
		DefaultProvider: cfg.DefaultProvider,
		NativeFinder:    cfg.Scheduling.NativeFinder,
		ProviderTimeout: cfg.Scheduling.ProviderTimeout.String(),
		Concurrency:     cfg.Scheduling.Concurrency,
		Participants:    len(cfg.Participants),
	})
}

func textContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}
