package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// analysisFlags are shared by every command that runs the engine.
type analysisFlags struct {
	input           string
	source          string
	excludeWeekends bool
	minThreshold    float64
	asOf            string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", jira.InputRecords, "input format: records or jira")
	cmd.Flags().StringVar(&f.source, "source", "", "read a cached import instead of a file")
	cmd.Flags().BoolVar(&f.excludeWeekends, "exclude-weekends", true, "drop Saturday and Sunday from durations")
	cmd.Flags().Float64Var(&f.minThreshold, "min-threshold", stats.DefaultMinTimeThreshold, "hours below which an interval is treated as noise")
	cmd.Flags().StringVar(&f.asOf, "as-of", "", "evaluation time for open intervals (RFC3339, default now)")
}

// options starts from the configured defaults and applies the flags the user set.
func (f *analysisFlags) options(cmd *cobra.Command) (stats.Options, error) {
	opts := cfg.Analysis
	if cmd.Flags().Changed("exclude-weekends") {
		opts.ExcludeWeekends = f.excludeWeekends
	}
	if cmd.Flags().Changed("min-threshold") {
		opts.MinTimeThreshold = f.minThreshold
	}
	if f.asOf != "" {
		asOf, err := time.Parse(time.RFC3339, f.asOf)
		if err != nil {
			return opts, fmt.Errorf("invalid --as-of %q: %w", f.asOf, err)
		}
		opts.AsOf = asOf
	}
	return opts, opts.Validate()
}

// records reads the issues of one file, or of the cached source when path is empty.
func (f *analysisFlags) records(path string) ([]jira.Record, error) {
	if path != "" {
		return jira.DecodeFile(path, f.input)
	}
	if f.source == "" {
		return nil, fmt.Errorf("either a file or --source is required")
	}
	st := store.NewRecordStore()
	if err := st.Load(cfg.CacheDir, f.source); err != nil {
		return nil, err
	}
	return st.Get(f.source)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		m, err := stats.AsMap(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputJSON, outputYAML)
	}
}
