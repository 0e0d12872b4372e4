package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string

	// logger is configured from the persistent flags before any command runs.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "orepack",
	Short: "Place miners over ore while keeping a path to the exit",
	Long: `orepack searches for the placement of 2x2 miners that covers the most ore
tiles on a grid, while every miner keeps a path through open terrain to the
single exit tile.

Grids are plain text, one character per tile:
  .  empty    #  ore    E  exit    X  wall`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging builds the process logger from --log-level and --log-format.
// Logs go to stderr so that boards written to stdout stay clean.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	switch logFormat {
	case "console":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen})
	case "json":
		logger = zerolog.New(cmd.ErrOrStderr())
	default:
		return fmt.Errorf("invalid log format %q (use console or json)", logFormat)
	}
	logger = logger.Level(level).With().Timestamp().Logger()
	return nil
}
