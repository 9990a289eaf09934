package stats

import (
	"cmp"
	"maps"
	"slices"

	"jira-stage-metrics/internal/timeline"
	"jira-stage-metrics/internal/workflow"
)

// Aging risk levels.
const (
	RiskNone   = "none"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskLevel grades the hours an issue has spent in its current status against a threshold.
func RiskLevel(hours, threshold float64) string {
	switch {
	case hours >= 2*threshold:
		return RiskHigh
	case hours >= threshold:
		return RiskMedium
	default:
		return RiskNone
	}
}

type agingAccumulator struct {
	thresholds map[workflow.Stage]float64
	counts     map[string]int
	issues     []AgingIssue
}

func newAgingAccumulator(thresholds map[workflow.Stage]float64) agingAccumulator {
	return agingAccumulator{
		thresholds: thresholds,
		counts:     map[string]int{RiskNone: 0, RiskMedium: 0, RiskHigh: 0},
		issues:     []AgingIssue{},
	}
}

// add ages an unfinished issue by its open interval. Issues whose current stage has no
// threshold are ignored.
func (ag *agingAccumulator) add(key string, intervals []timeline.Interval, excludeWeekends bool) {
	current, ok := timeline.Current(intervals)
	if !ok {
		return
	}
	threshold, ok := ag.thresholds[current.Stage]
	if !ok {
		return
	}
	hours, err := timeline.Hours(current.Start, current.End, excludeWeekends)
	if err != nil {
		return
	}

	risk := RiskLevel(hours, threshold)
	ag.counts[risk]++
	if risk == RiskNone {
		return
	}
	ag.issues = append(ag.issues, AgingIssue{
		Key:   key,
		Label: current.Label,
		Stage: current.Stage,
		Hours: Round2(hours),
		Risk:  risk,
	})
}

func (ag *agingAccumulator) summary() AgingSummary {
	issues := slices.Clone(ag.issues)
	slices.SortFunc(issues, func(a, b AgingIssue) int {
		if c := cmp.Compare(b.Hours, a.Hours); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	thresholds := maps.Clone(ag.thresholds)
	if thresholds == nil {
		thresholds = map[workflow.Stage]float64{}
	}
	return AgingSummary{
		Thresholds: thresholds,
		Counts:     ag.counts,
		Issues:     issues,
	}
}
