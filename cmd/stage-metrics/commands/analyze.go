package commands

import (
	"runtime"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/stats"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	analyzeFlags  analysisFlags
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Aggregate stage metrics for one or more record files",
	Long: `Builds one report per input. With several files each is analyzed independently and the
result is keyed by file name. Without files, --source reads a cached import.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := analyzeFlags.options(cmd)
		if err != nil {
			return err
		}

		if len(args) <= 1 {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			report, err := analyzeInput(path, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), analyzeOutput, report)
		}

		reports := make([]stats.Report, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(runtime.NumCPU())
		for i, path := range args {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				report, err := analyzeInput(path, opts)
				if err != nil {
					return err
				}
				reports[i] = report
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		byFile := make(map[string]stats.Report, len(args))
		for i, path := range args {
			byFile[path] = reports[i]
		}
		return writeOutput(cmd.OutOrStdout(), analyzeOutput, byFile)
	},
}

func analyzeInput(path string, opts stats.Options) (stats.Report, error) {
	records, err := analyzeFlags.records(path)
	if err != nil {
		return stats.Report{}, err
	}
	report, err := stats.Aggregate(jira.ToIssues(records), opts)
	if err != nil {
		return stats.Report{}, err
	}
	log.Info().Str("input", path).Int("issues", report.TotalIssues).Msg("Analysis complete")
	return report, nil
}

func init() {
	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", outputJSON, "output format: json or yaml")
}
