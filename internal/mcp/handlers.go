package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/store"
	"jira-stage-metrics/internal/visuals"
	"jira-stage-metrics/internal/workflow"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// sourceArgs selects the issues a tool works on.
type sourceArgs struct {
	SourceID string
	Path     string
	Input    string
}

// AnalyzeArgs are the arguments of analyze_stage_metrics.
type AnalyzeArgs struct {
	SourceID         string   `json:"source_id,omitempty" jsonschema:"id of a cached import"`
	Path             string   `json:"path,omitempty" jsonschema:"path to a records or Jira search file"`
	Input            string   `json:"input,omitempty" jsonschema:"format of 'path': records (default) or jira"`
	ExcludeWeekends  *bool    `json:"exclude_weekends,omitempty" jsonschema:"drop Saturday and Sunday from durations (default from configuration)"`
	MinTimeThreshold *float64 `json:"min_time_threshold,omitempty" jsonschema:"hours below which an interval is treated as noise"`
	IncludeCharts    bool     `json:"include_charts,omitempty" jsonschema:"append Mermaid charts to the result"`
}

// TimelineArgs are the arguments of analyze_issue_timeline.
type TimelineArgs struct {
	SourceID         string   `json:"source_id,omitempty" jsonschema:"id of a cached import"`
	Path             string   `json:"path,omitempty" jsonschema:"path to a records or Jira search file"`
	Input            string   `json:"input,omitempty" jsonschema:"format of 'path': records (default) or jira"`
	IssueKey         string   `json:"issue_key" jsonschema:"the issue key, e.g. PROJ-123"`
	ExcludeWeekends  *bool    `json:"exclude_weekends,omitempty" jsonschema:"drop Saturday and Sunday from durations"`
	MinTimeThreshold *float64 `json:"min_time_threshold,omitempty" jsonschema:"hours below which an interval is treated as noise"`
}

// ClassifyArgs are the arguments of classify_statuses.
type ClassifyArgs struct {
	Labels []string `json:"labels" jsonschema:"raw status names"`
}

// ListArgs are the (empty) arguments of list_sources.
type ListArgs struct{}

func (s *Server) handleAnalyzeStageMetrics(ctx context.Context, _ *sdk.CallToolRequest, args AnalyzeArgs) (*sdk.CallToolResult, any, error) {
	records, err := s.resolveRecords(sourceArgs{args.SourceID, args.Path, args.Input})
	if err != nil {
		return nil, nil, err
	}

	opts := s.options(args.ExcludeWeekends, args.MinTimeThreshold)
	report, err := stats.Aggregate(jira.ToIssues(records), opts)
	if err != nil {
		return nil, nil, err
	}

	result := map[string]any{"report": report}
	var guidance []string
	if n := len(report.Diagnostics.UncategorizedStatuses); n > 0 {
		guidance = append(guidance, fmt.Sprintf("%d status(es) did not map to a stage: %s. Their time is excluded from stage metrics; add them to the workflow file if they belong to a stage.",
			n, strings.Join(report.Diagnostics.UncategorizedStatuses, ", ")))
	}
	if n := len(report.Diagnostics.FailedIssues); n > 0 {
		guidance = append(guidance, fmt.Sprintf("%d issue(s) had no creation date and only count toward totals.", n))
	}
	if len(guidance) > 0 {
		result["_guidance"] = guidance
	}

	if args.IncludeCharts {
		var charts []string
		for _, c := range []string{visuals.StageHoursChart(report), visuals.ChurnHistogramChart(report), visuals.AgingChart(report)} {
			if c != "" {
				charts = append(charts, visuals.Markdown(c))
			}
		}
		result["charts"] = charts
	}

	log.Info().Int("issues", report.TotalIssues).Msg("analyze_stage_metrics completed")
	return textResult(result)
}

func (s *Server) handleAnalyzeIssueTimeline(ctx context.Context, _ *sdk.CallToolRequest, args TimelineArgs) (*sdk.CallToolResult, any, error) {
	if args.IssueKey == "" {
		return nil, nil, fmt.Errorf("issue_key is required")
	}
	records, err := s.resolveRecords(sourceArgs{args.SourceID, args.Path, args.Input})
	if err != nil {
		return nil, nil, err
	}

	idx := slices.IndexFunc(records, func(r jira.Record) bool { return strings.EqualFold(r.Key, args.IssueKey) })
	if idx < 0 {
		return nil, nil, fmt.Errorf("issue %s not found", args.IssueKey)
	}

	res, err := stats.ExplainIssue(records[idx].ToIssue(), s.options(args.ExcludeWeekends, args.MinTimeThreshold))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot reconstruct %s: %w", args.IssueKey, err)
	}
	return textResult(res)
}

func (s *Server) handleClassifyStatuses(ctx context.Context, _ *sdk.CallToolRequest, args ClassifyArgs) (*sdk.CallToolResult, any, error) {
	c := workflow.NewClassifier(s.cfg.Analysis.Synonyms)
	mapping := make(map[string]workflow.Stage, len(args.Labels))
	for _, label := range args.Labels {
		mapping[label] = c.Classify(label)
	}
	return textResult(map[string]any{
		"status_mapping":         mapping,
		"uncategorized_statuses": c.Uncategorized(),
	})
}

func (s *Server) handleListSources(ctx context.Context, _ *sdk.CallToolRequest, _ ListArgs) (*sdk.CallToolResult, any, error) {
	sources := make(map[string]int)
	for _, id := range s.store.Sources() {
		sources[id] = s.store.Count(id)
	}
	return textResult(map[string]any{"sources": sources})
}

// resolveRecords reads records from a file or from the store, loading the cache on first use.
func (s *Server) resolveRecords(args sourceArgs) ([]jira.Record, error) {
	switch {
	case args.Path != "":
		return jira.DecodeFile(args.Path, args.Input)
	case args.SourceID != "":
		records, err := s.store.Get(args.SourceID)
		if errors.Is(err, store.ErrUnknownSource) {
			if err := s.store.Load(s.cfg.CacheDir, args.SourceID); err != nil {
				return nil, err
			}
			records, err = s.store.Get(args.SourceID)
		}
		return records, err
	default:
		return nil, fmt.Errorf("either source_id or path is required")
	}
}

// options applies per-call overrides to the configured analysis defaults.
func (s *Server) options(excludeWeekends *bool, minThreshold *float64) stats.Options {
	opts := s.cfg.Analysis
	if excludeWeekends != nil {
		opts.ExcludeWeekends = *excludeWeekends
	}
	if minThreshold != nil {
		opts.MinTimeThreshold = *minThreshold
	}
	return opts
}
