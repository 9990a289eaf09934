package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jira-stage-metrics/internal/config"
	"jira-stage-metrics/internal/stats"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleRecords = `[
  {"key":"PROJ-1","createdAt":"2024-01-01T09:00:00Z","currentLabel":"In Progress","changelog":[
    {"timestamp":"2024-01-02T09:00:00Z","field":"status","fromLabel":"To Do","toLabel":"In Review"},
    {"timestamp":"2024-01-03T09:00:00Z","field":"status","fromLabel":"In Review","toLabel":"In Progress"}
  ]},
  {"key":"PROJ-2","createdAt":"2024-01-01T09:00:00Z","currentLabel":"Done"}
]`

func withConfig(t *testing.T) {
	t.Helper()
	old := cfg
	cfg = &config.AppConfig{CacheDir: t.TempDir(), Analysis: stats.DefaultOptions()}
	t.Cleanup(func() { cfg = old })
}

func newFlagCmd(f *analysisFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	return cmd
}

func TestAnalysisFlags_Options(t *testing.T) {
	withConfig(t)

	var f analysisFlags
	cmd := newFlagCmd(&f)
	require.NoError(t, cmd.Flags().Parse([]string{"--exclude-weekends=false", "--as-of", "2024-01-10T00:00:00Z"}))

	opts, err := f.options(cmd)
	require.NoError(t, err)
	require.False(t, opts.ExcludeWeekends)
	require.Equal(t, stats.DefaultMinTimeThreshold, opts.MinTimeThreshold)
	require.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), opts.AsOf)
}

func TestAnalysisFlags_OptionsErrors(t *testing.T) {
	withConfig(t)

	var f analysisFlags
	cmd := newFlagCmd(&f)
	require.NoError(t, cmd.Flags().Parse([]string{"--min-threshold=-2"}))
	_, err := f.options(cmd)
	require.ErrorIs(t, err, stats.ErrInvalidOptions)

	var g analysisFlags
	cmd = newFlagCmd(&g)
	require.NoError(t, cmd.Flags().Parse([]string{"--as-of", "yesterday"}))
	_, err = g.options(cmd)
	require.ErrorContains(t, err, "--as-of")
}

func TestAnalysisFlags_Records(t *testing.T) {
	withConfig(t)

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0644))

	f := analysisFlags{input: "records"}
	records, err := f.records(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = f.records("")
	require.Error(t, err)
}

func TestAnalyzeInput(t *testing.T) {
	withConfig(t)

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0644))

	analyzeFlags = analysisFlags{input: "records"}
	opts := cfg.Analysis
	opts.AsOf = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	report, err := analyzeInput(path, opts)
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalIssues)
	require.Equal(t, 1, report.CompletedIssues)
	require.Equal(t, 1, report.Churn.TotalChurn)
}

func TestWriteOutput(t *testing.T) {
	report := stats.Report{TotalIssues: 3, CompletedIssues: 1}

	var js bytes.Buffer
	require.NoError(t, writeOutput(&js, outputJSON, report))
	require.Contains(t, js.String(), `"total_issues": 3`)

	var ys bytes.Buffer
	require.NoError(t, writeOutput(&ys, outputYAML, report))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(ys.Bytes(), &decoded))
	require.EqualValues(t, 3, decoded["total_issues"])
	require.EqualValues(t, 1, decoded["completed_issues"])

	require.Error(t, writeOutput(&js, "xml", report))
}
