package timeline

import (
	"time"

	"jira-stage-metrics/internal/workflow"
)

// Transition is a single status change taken from an issue's changelog.
type Transition struct {
	At   time.Time
	From string // empty when the tracker did not record the origin status
	To   string
}

// Issue is the immutable input the engine works on.
type Issue struct {
	Key          string
	CreatedAt    time.Time // zero when the tracker did not provide it
	ResolvedAt   *time.Time
	CurrentLabel string
	Changelog    []Transition
}

// Interval is a contiguous span an issue spent in one status label.
type Interval struct {
	Stage  workflow.Stage `json:"stage"`
	Label  string         `json:"label"`
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	IsOpen bool           `json:"is_open"`
}

// Stages returns the stage of every interval, in order.
func Stages(intervals []Interval) []workflow.Stage {
	out := make([]workflow.Stage, len(intervals))
	for i, iv := range intervals {
		out[i] = iv.Stage
	}
	return out
}

// Current returns the open interval of a timeline, if any.
func Current(intervals []Interval) (Interval, bool) {
	if len(intervals) == 0 {
		return Interval{}, false
	}
	last := intervals[len(intervals)-1]
	return last, last.IsOpen
}

// FirstEntries returns the start of the first interval in each ordered stage.
func FirstEntries(intervals []Interval) map[workflow.Stage]time.Time {
	first := make(map[workflow.Stage]time.Time)
	for _, iv := range intervals {
		if !iv.Stage.IsOrdered() {
			continue
		}
		if _, seen := first[iv.Stage]; !seen {
			first[iv.Stage] = iv.Start
		}
	}
	return first
}
