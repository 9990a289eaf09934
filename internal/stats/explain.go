package stats

import (
	"time"

	"jira-stage-metrics/internal/timeline"
	"jira-stage-metrics/internal/workflow"
)

// ExplainIssue reconstructs one issue and reports, per interval, the hours it contributes and
// whether it passes the noise threshold, together with the issue's churn.
func ExplainIssue(issue timeline.Issue, opts Options) (IssueTimeline, error) {
	if err := opts.Validate(); err != nil {
		return IssueTimeline{}, err
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}

	classifier := workflow.NewClassifier(opts.Synonyms)
	tl, err := timeline.NewReconstructor(classifier, opts.AsOf).Reconstruct(issue)
	if err != nil {
		return IssueTimeline{Key: issue.Key}, err
	}

	out := IssueTimeline{
		Key:       issue.Key,
		Intervals: make([]TimedInterval, 0, len(tl.Intervals)),
		Churn:     timelineChurn(tl.Intervals),
		Skipped:   tl.Skipped,
	}
	for _, iv := range tl.Intervals {
		hours, err := timeline.Hours(iv.Start, iv.End, opts.ExcludeWeekends)
		if err != nil {
			continue
		}
		out.Intervals = append(out.Intervals, TimedInterval{
			Interval: iv,
			Hours:    Round2(hours),
			Counted:  iv.Stage.IsOrdered() && hours >= opts.MinTimeThreshold,
		})
	}
	return out, nil
}
