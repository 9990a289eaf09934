package visuals

import (
	"fmt"
	"math"
	"strings"

	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/workflow"
)

// maxAgingBars keeps the aging chart readable.
const maxAgingBars = 20

// Markdown wraps a Mermaid diagram in a fenced code block. Empty diagrams stay empty.
func Markdown(diagram string) string {
	if diagram == "" {
		return ""
	}
	return "```mermaid\n" + diagram + "\n```"
}

// StageHoursChart creates a Mermaid bar chart of the average hours per ticket in each stage.
func StageHoursChart(report stats.Report) string {
	labels := make([]string, 0, len(workflow.Ordered))
	values := make([]float64, 0, len(workflow.Ordered))
	for _, s := range workflow.Ordered {
		labels = append(labels, s.String())
		values = append(values, report.StageMetrics[s].AvgHoursPerTicket)
	}
	return barChart("Average Hours per Ticket by Stage", "Hours", labels, values)
}

// CycleTimeChart creates a Mermaid bar chart of the average cycle times.
func CycleTimeChart(report stats.Report) string {
	names := []string{"Development", "Review", "QA", "Completion", "Total"}
	labels := make([]string, 0, len(names))
	values := make([]float64, 0, len(names))
	for _, n := range names {
		ct, ok := report.CycleTimes[n]
		if !ok {
			continue
		}
		labels = append(labels, n)
		values = append(values, ct.AverageHours)
	}
	return barChart("Average Cycle Times", "Hours", labels, values)
}

// ChurnHistogramChart creates a Mermaid bar chart of tickets per churn-score range.
func ChurnHistogramChart(report stats.Report) string {
	if report.Churn.IssuesWithChurn == 0 {
		return ""
	}
	values := make([]float64, 0, len(stats.ScoreBuckets))
	for _, b := range stats.ScoreBuckets {
		values = append(values, float64(report.Churn.ScoreBuckets[b]))
	}
	return barChart("Tickets by Churn Score", "Tickets", stats.ScoreBuckets, values)
}

// AgingChart creates a Mermaid bar chart of the oldest items in an active stage.
func AgingChart(report stats.Report) string {
	issues := report.Aging.Issues
	if len(issues) == 0 {
		return ""
	}
	if len(issues) > maxAgingBars {
		issues = issues[:maxAgingBars]
	}

	labels := make([]string, 0, len(issues))
	values := make([]float64, 0, len(issues))
	for _, item := range issues {
		labels = append(labels, item.Key)
		values = append(values, item.Hours)
	}
	return barChart(fmt.Sprintf("Aging Work (Top %d)", len(issues)), "Hours in Status", labels, values)
}

// CurrentStatusChart creates a Mermaid pie chart of the current stage distribution.
func CurrentStatusChart(report stats.Report) string {
	if report.TotalIssues == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("pie title \"Current Status\"\n")
	for _, s := range workflow.All {
		if n := report.CurrentStatus[s]; n > 0 {
			sb.WriteString(fmt.Sprintf("    %q : %d\n", s.String(), n))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func barChart(title, axis string, labels []string, values []float64) string {
	if len(labels) == 0 {
		return ""
	}

	quoted := make([]string, len(labels))
	formatted := make([]string, len(values))
	maxVal := 0.0
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	for i, v := range values {
		formatted[i] = fmt.Sprintf("%.1f", v)
		maxVal = math.Max(maxVal, v)
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %q\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(quoted, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis %q 0 --> %d\n", axis, int(math.Ceil(maxVal*1.2))+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]", strings.Join(formatted, ", ")))
	return sb.String()
}
