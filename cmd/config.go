package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/slotfinder/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the calendar directory file",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write an example configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(path, exampleConfig()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and summarize the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if globals.configPath == "" {
				return errors.New("no configuration file given (use --config or SLOTFINDER_CONFIG)")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, p := range cfg.Participants {
				counts[cfg.ProviderFor(p.ID)]++
			}
			kinds := make([]string, 0, len(counts))
			for k := range counts {
				kinds = append(kinds, fmt.Sprintf("%s=%d", k, counts[k]))
			}
			sort.Strings(kinds)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK: %s\n", globals.configPath)
			fmt.Fprintf(out, "  Time zone: %s\n", cfg.TimeZone)
			fmt.Fprintf(out, "  Default provider: %s\n", cfg.DefaultProvider)
			fmt.Fprintf(out, "  Participants: %d (%s)\n", len(cfg.Participants), strings.Join(kinds, ", "))
			return nil
		},
	}
}

func exampleConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DefaultProvider = config.ProviderStatic
	cfg.Google.TokenFile = "/etc/slotfinder/google-token.json"
	cfg.Participants = []config.ParticipantConfig{
		{
			ID:       "alice@example.com",
			Provider: config.ProviderGoogle,
		},
		{
			ID:       "bob@example.com",
			Provider: config.ProviderICS,
			ICSURL:   "https://calendar.example.com/bob.ics",
			WorkingHours: &config.WorkingHoursConfig{
				Start:    "08:00",
				End:      "16:00",
				Days:     []string{"mon", "tue", "wed", "thu"},
				TimeZone: "Europe/Berlin",
			},
		},
		{
			ID: "room-1@example.com",
			Busy: []config.BusyConfig{
				{Start: "2025-03-10T09:00:00Z", End: "2025-03-10T10:00:00Z", Label: "maintenance"},
			},
		},
	}
	return cfg
}
