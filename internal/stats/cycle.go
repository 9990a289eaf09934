package stats

import (
	"time"

	"jira-stage-metrics/internal/timeline"
	"jira-stage-metrics/internal/workflow"
)

// CycleDef names the span between the first entries into two stages.
type CycleDef struct {
	Name        string
	From, To    workflow.Stage
	Description string
}

var (
	cycleDefs = []CycleDef{
		{Name: "Development", From: workflow.ToDo, To: workflow.InProgress, Description: "Time from TO DO to IN PROGRESS"},
		{Name: "Review", From: workflow.InProgress, To: workflow.CodeReview, Description: "Time from IN PROGRESS to IN REVIEW"},
		{Name: "QA", From: workflow.CodeReview, To: workflow.QA, Description: "Time from IN REVIEW to IN QA"},
		{Name: "Completion", From: workflow.QA, To: workflow.Done, Description: "Time from IN QA to DONE"},
	}
	// totalCycle is only measured for completed issues.
	totalCycle = CycleDef{Name: "Total", From: workflow.ToDo, To: workflow.Done, Description: "Total time from TO DO to DONE"}

	reportedCycles = []CycleDef{cycleDefs[0], cycleDefs[1], cycleDefs[2], cycleDefs[3], totalCycle}
)

type cycleAccumulator struct {
	totalHours float64
	count      int
}

func (c *cycleAccumulator) result(description string) CycleTime {
	return CycleTime{
		AverageHours: Round2(SafeMean(c.totalHours, c.count)),
		Count:        c.count,
		TotalHours:   Round2(c.totalHours),
		Description:  description,
	}
}

// addCycles measures every named cycle from the first stage entries of a timeline and counts
// issues that are still waiting inside one.
func (a *aggregator) addCycles(intervals []timeline.Interval, current workflow.Stage, completed bool) {
	first := timeline.FirstEntries(intervals)

	for _, def := range cycleDefs {
		_, started := first[def.From]
		_, finished := first[def.To]
		if started && !finished && !completed && current == def.From {
			a.partials[def.Name]++
		}
		a.measureCycle(def, first)
	}
	if completed {
		a.measureCycle(totalCycle, first)
	}
}

func (a *aggregator) measureCycle(def CycleDef, first map[workflow.Stage]time.Time) {
	start, ok := first[def.From]
	if !ok {
		return
	}
	end, ok := first[def.To]
	if !ok {
		return
	}
	if !end.After(start) {
		a.logger.Debug().Str("cycle", def.Name).Time("start", start).Time("end", end).Msg("Ignoring non-positive cycle")
		return
	}

	hours, err := timeline.Hours(start, end, a.opts.ExcludeWeekends)
	if err != nil {
		return
	}
	acc := a.cycles[def.Name]
	acc.totalHours += hours
	acc.count++
}
