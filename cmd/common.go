package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/teemow/slotfinder/internal/config"
	"github.com/teemow/slotfinder/internal/instrumentation"
	"github.com/teemow/slotfinder/internal/logging"
	"github.com/teemow/slotfinder/internal/server"
)

// Output formats for one-shot commands.
const (
	outputJSON = "json"
	outputText = "text"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globals.configPath)
	if err != nil {
		return nil, err
	}
	if globals.configPath == "" {
		slog.Debug("no config file given, using defaults")
	}
	return cfg, nil
}

// newScheduling loads the configuration and assembles the scheduling
// service for a one-shot command. operation tags every log line.
func newScheduling(ctx context.Context, operation string, metrics *instrumentation.Metrics) (*config.Config, *server.Scheduling, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	scheduling, err := server.NewScheduling(ctx, cfg, logging.NewSlogAdapter(logging.WithOperation(slog.Default(), operation)), metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scheduling service: %w", err)
	}
	return cfg, scheduling, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func validateOutput(format string) error {
	switch format {
	case outputJSON, outputText:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: json, text)", format)
	}
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
