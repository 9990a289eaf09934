package stats

import (
	"time"

	"jira-stage-metrics/internal/timeline"
	"jira-stage-metrics/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type stageAccumulator struct {
	tickets, openTickets, closedTickets int
	totalHours, openHours, closedHours  float64
	occurrences                         int
}

type stageSeen struct {
	any, open, closed bool
}

// aggregator holds the running totals of a single run. It is never shared between runs.
type aggregator struct {
	opts          Options
	logger        zerolog.Logger
	classifier    *workflow.Classifier
	reconstructor *timeline.Reconstructor

	total, completed, inProgress int
	currentStatus                map[workflow.Stage]int
	stages                       map[workflow.Stage]*stageAccumulator
	cycles                       map[string]*cycleAccumulator
	partials                     map[string]int
	churn                        ChurnSummary
	aging                        agingAccumulator

	failed                  []string
	skipped, belowThreshold int
}

// Aggregate folds a batch of issues into a Report. Problems with individual issues are
// recorded in the report diagnostics and never fail the run; only invalid options do.
func Aggregate(issues []timeline.Issue, opts Options) (Report, error) {
	if err := opts.Validate(); err != nil {
		return Report{}, err
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}

	a := newAggregator(opts)
	a.logger.Debug().
		Int("issues", len(issues)).
		Bool("exclude_weekends", opts.ExcludeWeekends).
		Float64("min_threshold", opts.MinTimeThreshold).
		Msg("Starting aggregation")

	for _, issue := range issues {
		a.add(issue)
	}

	report := a.finish()
	a.logger.Info().
		Int("issues", report.TotalIssues).
		Int("failed", len(report.Diagnostics.FailedIssues)).
		Int("uncategorized", len(report.Diagnostics.UncategorizedStatuses)).
		Msg("Aggregation complete")
	return report, nil
}

func newAggregator(opts Options) *aggregator {
	classifier := workflow.NewClassifier(opts.Synonyms)
	a := &aggregator{
		opts:          opts,
		logger:        log.With().Str("run", uuid.NewString()).Logger(),
		classifier:    classifier,
		reconstructor: timeline.NewReconstructor(classifier, opts.AsOf),
		currentStatus: make(map[workflow.Stage]int, len(workflow.All)),
		stages:        make(map[workflow.Stage]*stageAccumulator, len(workflow.Ordered)),
		cycles:        make(map[string]*cycleAccumulator, len(reportedCycles)),
		partials:      make(map[string]int, len(cycleDefs)),
		churn:         newChurnSummary(),
		aging:         newAgingAccumulator(opts.AgingThresholds),
		failed:        []string{},
	}
	for _, s := range workflow.All {
		a.currentStatus[s] = 0
	}
	for _, s := range workflow.Ordered {
		a.stages[s] = &stageAccumulator{}
	}
	for _, def := range reportedCycles {
		a.cycles[def.Name] = &cycleAccumulator{}
	}
	for _, def := range cycleDefs {
		a.partials[def.Name] = 0
	}
	return a
}

func (a *aggregator) add(issue timeline.Issue) {
	a.total++

	current := workflow.Other
	if issue.CurrentLabel != "" {
		current = a.classifier.Classify(issue.CurrentLabel)
	}
	a.currentStatus[current]++

	completed := current == workflow.Done || issue.ResolvedAt != nil
	switch {
	case completed:
		a.completed++
	case current != workflow.ToDo:
		a.inProgress++
	}

	tl, err := a.reconstructor.Reconstruct(issue)
	if err != nil {
		a.logger.Warn().Err(err).Str("issue", issue.Key).Msg("Excluding issue from duration and churn metrics")
		a.failed = append(a.failed, issue.Key)
		return
	}
	a.skipped += tl.Skipped

	a.addStageTime(tl.Intervals)
	a.addChurn(issue.Key, tl.Intervals)
	a.addCycles(tl.Intervals, current, completed)
	if !completed {
		a.aging.add(issue.Key, tl.Intervals, a.opts.ExcludeWeekends)
	}
}

func (a *aggregator) addStageTime(intervals []timeline.Interval) {
	seen := make(map[workflow.Stage]*stageSeen)
	for _, iv := range intervals {
		if !iv.Stage.IsOrdered() {
			continue
		}
		hours, err := timeline.Hours(iv.Start, iv.End, a.opts.ExcludeWeekends)
		if err != nil {
			// Reconstruct drops and counts these.
			a.logger.Debug().
				Err(err).
				Str("stage", iv.Stage.String()).
				Time("start", iv.Start).
				Time("end", iv.End).
				Msg("Ignoring interval with negative duration in stage totals")
			continue
		}
		if hours < a.opts.MinTimeThreshold {
			a.belowThreshold++
			continue
		}

		acc := a.stages[iv.Stage]
		acc.occurrences++
		acc.totalHours += hours

		s, ok := seen[iv.Stage]
		if !ok {
			s = &stageSeen{}
			seen[iv.Stage] = s
		}
		s.any = true
		if iv.IsOpen {
			acc.openHours += hours
			s.open = true
		} else {
			acc.closedHours += hours
			s.closed = true
		}
	}

	for stage, s := range seen {
		acc := a.stages[stage]
		if s.any {
			acc.tickets++
		}
		if s.open {
			acc.openTickets++
		}
		if s.closed {
			acc.closedTickets++
		}
	}
}

func (a *aggregator) addChurn(key string, intervals []timeline.Interval) {
	res := timelineChurn(intervals)
	if res.Score == 0 {
		return
	}

	flagged := res.Score >= a.opts.ChurnFlagThreshold
	a.churn.TotalChurn += res.Score
	a.churn.IssuesWithChurn++
	if flagged {
		a.churn.FlaggedIssues++
	}
	for c, n := range res.Categories {
		a.churn.Categories[c] += n
	}
	a.churn.ScoreBuckets[ScoreBucket(res.Score)]++
	a.churn.Issues[key] = IssueChurn{
		Score:       res.Score,
		Flagged:     flagged,
		Categories:  res.Categories,
		Transitions: res.Changes,
	}

	a.logger.Debug().Str("issue", key).Int("score", res.Score).Bool("flagged", flagged).Msg("Churn detected")
}

func (a *aggregator) finish() Report {
	r := Report{
		AsOf: a.opts.AsOf,
		Options: ReportOptions{
			ExcludeWeekends:    a.opts.ExcludeWeekends,
			MinTimeThreshold:   a.opts.MinTimeThreshold,
			ChurnFlagThreshold: a.opts.ChurnFlagThreshold,
		},
		TotalIssues:        a.total,
		CompletedIssues:    a.completed,
		InProgressIssues:   a.inProgress,
		CurrentStatus:      a.currentStatus,
		StageMetrics:       make(map[workflow.Stage]StageMetrics, len(a.stages)),
		CycleTimes:         make(map[string]CycleTime, len(a.cycles)),
		PartialTransitions: a.partials,
		Churn:              a.churn,
		Aging:              a.aging.summary(),
		Diagnostics: Diagnostics{
			AllStatuses:             a.classifier.Labels(),
			UncategorizedStatuses:   a.classifier.Uncategorized(),
			StatusMapping:           a.classifier.Mapping(),
			FailedIssues:            a.failed,
			SkippedIntervals:        a.skipped,
			BelowThresholdIntervals: a.belowThreshold,
		},
	}

	for stage, acc := range a.stages {
		r.StageMetrics[stage] = StageMetrics{
			TicketCount:             acc.tickets,
			OpenTicketCount:         acc.openTickets,
			ClosedTicketCount:       acc.closedTickets,
			TotalHours:              Round2(acc.totalHours),
			OpenHours:               Round2(acc.openHours),
			ClosedHours:             Round2(acc.closedHours),
			AvgHoursPerTicket:       Round2(SafeMean(acc.totalHours, acc.tickets)),
			AvgOpenHoursPerTicket:   Round2(SafeMean(acc.openHours, acc.openTickets)),
			AvgClosedHoursPerTicket: Round2(SafeMean(acc.closedHours, acc.closedTickets)),
			Occurrences:             acc.occurrences,
			AvgHoursPerOccurrence:   Round2(SafeMean(acc.totalHours, acc.occurrences)),
		}
	}

	for _, def := range reportedCycles {
		r.CycleTimes[def.Name] = a.cycles[def.Name].result(def.Description)
	}
	return r
}

func newChurnSummary() ChurnSummary {
	buckets := make(map[string]int, len(ScoreBuckets))
	for _, b := range ScoreBuckets {
		buckets[b] = 0
	}
	return ChurnSummary{
		Categories:   emptyCategoryCounts(),
		ScoreBuckets: buckets,
		Issues:       make(map[string]IssueChurn),
	}
}

// timelineChurn runs churn detection over a timeline and dates every stage change.
func timelineChurn(intervals []timeline.Interval) ChurnResult {
	res := DetectChurn(timeline.Stages(intervals))
	for i := range res.Changes {
		res.Changes[i].At = intervals[res.Changes[i].Index].Start
	}
	return res
}
