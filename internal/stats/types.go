package stats

import (
	"time"

	"jira-stage-metrics/internal/timeline"
	"jira-stage-metrics/internal/workflow"
)

// Report is the cross-issue result of one aggregation run.
type Report struct {
	AsOf               time.Time                       `json:"as_of"`
	Options            ReportOptions                   `json:"options"`
	TotalIssues        int                             `json:"total_issues"`
	CompletedIssues    int                             `json:"completed_issues"`
	InProgressIssues   int                             `json:"in_progress_issues"`
	CurrentStatus      map[workflow.Stage]int          `json:"current_status"`
	StageMetrics       map[workflow.Stage]StageMetrics `json:"stage_metrics"`
	CycleTimes         map[string]CycleTime            `json:"cycle_times"`
	PartialTransitions map[string]int                  `json:"partial_transitions"`
	Churn              ChurnSummary                    `json:"churn_metrics"`
	Aging              AgingSummary                    `json:"aging"`
	Diagnostics        Diagnostics                     `json:"workflow_info"`
}

// ReportOptions echoes the options that shaped the numbers.
type ReportOptions struct {
	ExcludeWeekends    bool    `json:"exclude_weekends"`
	MinTimeThreshold   float64 `json:"min_time_threshold"`
	ChurnFlagThreshold int     `json:"churn_flag_threshold"`
}

// StageMetrics aggregates every counted interval of one stage across the batch.
type StageMetrics struct {
	TicketCount             int     `json:"ticket_count"`
	OpenTicketCount         int     `json:"open_ticket_count"`
	ClosedTicketCount       int     `json:"closed_ticket_count"`
	TotalHours              float64 `json:"total_hours"`
	OpenHours               float64 `json:"open_hours"`
	ClosedHours             float64 `json:"closed_hours"`
	AvgHoursPerTicket       float64 `json:"avg_hours_per_ticket"`
	AvgOpenHoursPerTicket   float64 `json:"avg_open_hours_per_ticket"`
	AvgClosedHoursPerTicket float64 `json:"avg_closed_hours_per_ticket"`
	Occurrences             int     `json:"occurrences"`
	AvgHoursPerOccurrence   float64 `json:"avg_hours_per_occurrence"`
}

// CycleTime is the time between first entries into two stages, summed over issues.
type CycleTime struct {
	AverageHours float64 `json:"average_hours"`
	Count        int     `json:"count"`
	TotalHours   float64 `json:"total_hours"`
	Description  string  `json:"description"`
}

// ChurnSummary folds per-issue churn results over the batch.
type ChurnSummary struct {
	TotalChurn      int                   `json:"total_churn"`
	IssuesWithChurn int                   `json:"tickets_with_churn"`
	FlaggedIssues   int                   `json:"flagged_tickets"`
	Categories      map[Category]int      `json:"churn_details"`
	ScoreBuckets    map[string]int        `json:"tickets_by_score"`
	Issues          map[string]IssueChurn `json:"tickets_with_scores"`
}

// IssueChurn is the churn detail reported for an issue with a positive score.
type IssueChurn struct {
	Score       int              `json:"score"`
	Flagged     bool             `json:"flagged"`
	Categories  map[Category]int `json:"churn"`
	Transitions []StageChange    `json:"transitions"`
}

// AgingSummary lists issues sitting in an active stage for too long.
type AgingSummary struct {
	Thresholds map[workflow.Stage]float64 `json:"thresholds"`
	Counts     map[string]int             `json:"counts"`
	Issues     []AgingIssue               `json:"issues"`
}

// AgingIssue is one issue at or above its stage threshold.
type AgingIssue struct {
	Key   string         `json:"key"`
	Label string         `json:"status"`
	Stage workflow.Stage `json:"stage"`
	Hours float64        `json:"hours_in_status"`
	Risk  string         `json:"risk"`
}

// Diagnostics explains how raw labels were interpreted and what was dropped.
type Diagnostics struct {
	AllStatuses             []string                  `json:"all_statuses"`
	UncategorizedStatuses   []string                  `json:"uncategorized_statuses"`
	StatusMapping           map[string]workflow.Stage `json:"status_mapping"`
	FailedIssues            []string                  `json:"failed_issues"`
	SkippedIntervals        int                       `json:"skipped_intervals"`
	BelowThresholdIntervals int                       `json:"below_threshold_intervals"`
}

// IssueTimeline is the drill-down view of one issue.
type IssueTimeline struct {
	Key       string          `json:"key"`
	Intervals []TimedInterval `json:"intervals"`
	Churn     ChurnResult     `json:"churn"`
	Skipped   int             `json:"skipped_intervals"`
}

// TimedInterval is an interval with its computed duration.
type TimedInterval struct {
	timeline.Interval
	Hours   float64 `json:"hours"`
	Counted bool    `json:"counted"`
}
