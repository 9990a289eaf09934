package timeline

import (
	"errors"
	"slices"
	"time"

	"jira-stage-metrics/internal/workflow"

	"github.com/rs/zerolog/log"
)

// ErrMissingCreated is returned for issues without a creation timestamp.
var ErrMissingCreated = errors.New("issue has no creation date")

// Classifier resolves a status label to a stage.
type Classifier interface {
	Classify(label string) workflow.Stage
}

// Timeline is the reconstructed interval sequence of one issue.
type Timeline struct {
	Key       string
	Intervals []Interval
	// Skipped counts intervals dropped because they ended before they started.
	Skipped int
}

// Reconstructor rebuilds per-issue timelines against a fixed reference instant.
type Reconstructor struct {
	classifier Classifier
	now        time.Time
}

// NewReconstructor creates a Reconstructor. Open intervals end at now.
func NewReconstructor(classifier Classifier, now time.Time) *Reconstructor {
	return &Reconstructor{classifier: classifier, now: now}
}

type point struct {
	label string
	at    time.Time
}

// Reconstruct turns an issue's sparse changelog into an ordered, gap-free interval sequence
// running from creation to the reference instant (or resolution). The issue is not modified.
func (r *Reconstructor) Reconstruct(issue Issue) (Timeline, error) {
	tl := Timeline{Key: issue.Key}
	if issue.CreatedAt.IsZero() {
		return tl, ErrMissingCreated
	}

	changes := slices.Clone(issue.Changelog)
	slices.SortStableFunc(changes, func(a, b Transition) int {
		return a.At.Compare(b.At)
	})

	// 1. Seed with the status the issue held before its first recorded change
	initial := issue.CurrentLabel
	if len(changes) > 0 {
		initial = changes[0].From
	}
	if initial == "" {
		initial = workflow.UnknownLabel
	}

	// Changes after the reference instant have not happened yet
	for i, c := range changes {
		if c.At.After(r.now) {
			log.Debug().
				Str("issue", issue.Key).
				Int("ignored", len(changes)-i).
				Time("asOf", r.now).
				Msg("Ignoring changes after the reference time")
			changes = changes[:i]
			break
		}
	}

	points := make([]point, 0, len(changes)+1)
	points = append(points, point{label: initial, at: issue.CreatedAt})
	for _, c := range changes {
		if c.From != "" {
			// Origin labels are classified for diagnostics only.
			r.classifier.Classify(c.From)
		}
		points = append(points, point{label: c.To, at: c.At})
	}

	// 2. Each point spans until the next one; the last stays open
	last := points[len(points)-1].at
	final := r.now
	if issue.ResolvedAt != nil && !issue.ResolvedAt.Before(last) && issue.ResolvedAt.Before(r.now) {
		final = *issue.ResolvedAt
	}
	if final.Before(last) {
		// Only the creation point can lie after the reference instant
		final = last
	}

	tl.Intervals = make([]Interval, 0, len(points))
	for i, p := range points {
		end := final
		isOpen := i == len(points)-1
		if !isOpen {
			end = points[i+1].at
		}

		if end.Before(p.at) {
			log.Debug().
				Str("issue", issue.Key).
				Str("label", p.label).
				Time("start", p.at).
				Time("end", end).
				Msg("Skipping interval that ends before it starts")
			tl.Skipped++
			continue
		}

		tl.Intervals = append(tl.Intervals, Interval{
			Stage:  r.classifier.Classify(p.label),
			Label:  p.label,
			Start:  p.at,
			End:    end,
			IsOpen: isOpen,
		})
	}

	return tl, nil
}
