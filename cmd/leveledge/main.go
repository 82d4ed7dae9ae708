package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "LevelEdge"
	version = "v1.3.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "leveledge",
		Short:   "Level-aware trade probability scanner",
		Version: version,
		Long: `LevelEdge scores enriched ticker cards into calibrated trade decisions:
factor-weighted probability, EV-ranked stop ladder, whale and credibility
adjustments, and quarter-Kelly position sizing.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newOutcomesCmd())
	rootCmd.AddCommand(newLearnCmd())
	rootCmd.AddCommand(newMonitorCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setupLogging configures zerolog: pretty console output on a TTY,
// plain JSON when piped.
func setupLogging(cmd *cobra.Command) {
	zerolog.TimeFieldFormat = time.RFC3339

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = log.Output(os.Stderr)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
