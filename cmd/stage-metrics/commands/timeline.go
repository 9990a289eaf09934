package commands

import (
	"fmt"
	"slices"
	"strings"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/stats"

	"github.com/spf13/cobra"
)

var (
	timelineFlags  analysisFlags
	timelineKey    string
	timelineOutput string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [FILE]",
	Short: "Show the stage intervals and churn of a single issue",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := timelineFlags.options(cmd)
		if err != nil {
			return err
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		records, err := timelineFlags.records(path)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(records, func(r jira.Record) bool { return strings.EqualFold(r.Key, timelineKey) })
		if idx < 0 {
			return fmt.Errorf("issue %s not found", timelineKey)
		}

		res, err := stats.ExplainIssue(records[idx].ToIssue(), opts)
		if err != nil {
			return fmt.Errorf("cannot reconstruct %s: %w", timelineKey, err)
		}
		return writeOutput(cmd.OutOrStdout(), timelineOutput, res)
	},
}

func init() {
	timelineFlags.register(timelineCmd)
	timelineCmd.Flags().StringVarP(&timelineKey, "key", "k", "", "issue key, e.g. PROJ-123")
	timelineCmd.Flags().StringVarP(&timelineOutput, "output", "o", outputJSON, "output format: json or yaml")
	_ = timelineCmd.MarkFlagRequired("key")
}
