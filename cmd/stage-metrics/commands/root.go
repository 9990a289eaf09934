package commands

import (
	"fmt"

	"jira-stage-metrics/internal/config"
	"jira-stage-metrics/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	quiet   bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "stage-metrics",
	Short: "Stage duration, cycle time and churn metrics from Jira changelogs",
	Long: `Reconstructs how long each issue spent in each workflow stage from its status changelog,
and aggregates stage durations, cycle times, backward moves (churn) and aging across a batch.

Without a subcommand it runs the MCP server on stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(logging.Options{Verbose: verbose, Quiet: quiet}); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("cache", cfg.CacheDir).
			Msg("stage-metrics starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log to the log file only")

	rootCmd.AddCommand(analyzeCmd, importCmd, timelineCmd, reportCmd, serveCmd)
}
