package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	reportFlags analysisFlags
	reportHTML  string
	reportTitle string
	reportOpen  bool
)

var reportCmd = &cobra.Command{
	Use:   "report [FILE]",
	Short: "Render an HTML dashboard with Mermaid charts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := reportFlags.options(cmd)
		if err != nil {
			return err
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		records, err := reportFlags.records(path)
		if err != nil {
			return err
		}
		report, err := stats.Aggregate(jira.ToIssues(records), opts)
		if err != nil {
			return err
		}

		title := reportTitle
		if title == "" {
			name := reportFlags.source
			if path != "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			title = "Stage metrics: " + name
		}

		f, err := os.Create(reportHTML)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", reportHTML, err)
		}
		if err := visuals.RenderHTML(f, title, report); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info().Str("path", reportHTML).Int("issues", report.TotalIssues).Msg("Dashboard written")

		if reportOpen {
			if err := browser.OpenFile(reportHTML); err != nil {
				log.Warn().Err(err).Msg("Failed to open browser")
			}
		}
		return nil
	},
}

func init() {
	reportFlags.register(reportCmd)
	reportCmd.Flags().StringVar(&reportHTML, "html", "stage-metrics.html", "path of the HTML file to write")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "dashboard title")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "open the dashboard in the default browser")
}
