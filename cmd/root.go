package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/slotfinder/internal/logging"
)

// rootCmd represents the base command for the slotfinder application
var rootCmd = &cobra.Command{
	Use:   "slotfinder",
	Short: "Finds common free time across calendars and proposes meeting slots",
	Long: `slotfinder reads busy time and working hours from Google Calendar,
Microsoft Graph, ICS feeds or a static directory, intersects them and ranks
meeting slots that work for all or most participants.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A one-shot CLI (availability, propose)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(globals.envFile, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}
		applyGlobalEnv(cmd)
		slog.SetDefault(logging.NewLogger(os.Stderr, globals.logFormat, globals.debug))
		return nil
	},
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	debug      bool
	logFormat  string
}

var globals globalFlags

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "slotfinder version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globals.configPath, "config", "c", "", "Path to the YAML calendar directory. Can also use SLOTFINDER_CONFIG env var.")
	rootCmd.PersistentFlags().StringVar(&globals.envFile, "env-file", ".env", "Dotenv file loaded before reading environment variables (ignored when the default is missing)")
	rootCmd.PersistentFlags().BoolVar(&globals.debug, "debug", false, "Enable debug logging. Can also use SLOTFINDER_DEBUG env var.")
	rootCmd.PersistentFlags().StringVar(&globals.logFormat, "log-format", logging.FormatText, "Log format: text or json. Can also use LOG_FORMAT env var.")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAvailabilityCmd())
	rootCmd.AddCommand(newProposeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadEnvFile loads path without overriding variables already set. A
// missing file is only an error when it was named explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyGlobalEnv fills global flags from the environment when they were not
// set on the command line.
func applyGlobalEnv(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("config") {
		if v := os.Getenv("SLOTFINDER_CONFIG"); v != "" {
			globals.configPath = v
		}
	}
	if !flags.Changed("debug") && os.Getenv("SLOTFINDER_DEBUG") == "true" {
		globals.debug = true
	}
	if !flags.Changed("log-format") {
		if v := os.Getenv("LOG_FORMAT"); v != "" {
			globals.logFormat = v
		}
	}
}
