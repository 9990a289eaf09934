package stats

import (
	"time"

	"jira-stage-metrics/internal/workflow"
)

// Category names a recognised kind of backward move.
type Category string

const (
	InProgressToToDo   Category = "in_progress_to_to_do"
	ReviewToInProgress Category = "in_review_to_in_progress"
	QAToReview         Category = "in_qa_to_in_review"
	QAToInProgress     Category = "in_qa_to_in_progress"
	DoneToAny          Category = "done_to_any"
)

// Categories lists every named churn category.
var Categories = []Category{InProgressToToDo, ReviewToInProgress, QAToReview, QAToInProgress, DoneToAny}

// ScoreBuckets are the reporting ranges for per-issue churn scores.
var ScoreBuckets = []string{"1-5", "6-10", "11-20", "21+"}

// StageChange is a move between two different stages within one issue's timeline.
type StageChange struct {
	From     workflow.Stage `json:"from"`
	To       workflow.Stage `json:"to"`
	At       time.Time      `json:"at"`
	Backward bool           `json:"backward"`
	Category Category       `json:"category,omitempty"`
	// Index is the position of the destination interval in the timeline.
	Index int `json:"-"`
}

// ChurnResult is the churn assessment of a single issue.
type ChurnResult struct {
	Score      int              `json:"score"`
	Categories map[Category]int `json:"categories"`
	Changes    []StageChange    `json:"transitions"`
}

// Categorize names a backward move. Unnamed backward moves return false but still count.
func Categorize(from, to workflow.Stage) (Category, bool) {
	switch {
	case from == workflow.Done:
		return DoneToAny, true
	case from == workflow.InProgress && to == workflow.ToDo:
		return InProgressToToDo, true
	case from == workflow.CodeReview && to == workflow.InProgress:
		return ReviewToInProgress, true
	case from == workflow.QA && to == workflow.CodeReview:
		return QAToReview, true
	case from == workflow.QA && to == workflow.InProgress:
		return QAToInProgress, true
	}
	return "", false
}

// IsChurn reports whether moving from one stage to another goes backward in the workflow.
// Moves touching Other never count.
func IsChurn(from, to workflow.Stage) bool {
	return from != to && to.Before(from)
}

// DetectChurn walks consecutive stage pairs and scores the backward moves.
func DetectChurn(stages []workflow.Stage) ChurnResult {
	res := ChurnResult{Categories: emptyCategoryCounts(), Changes: []StageChange{}}

	for i := 1; i < len(stages); i++ {
		from, to := stages[i-1], stages[i]
		if from == to {
			continue
		}

		change := StageChange{From: from, To: to, Index: i}
		if IsChurn(from, to) {
			change.Backward = true
			res.Score++
			if cat, ok := Categorize(from, to); ok {
				change.Category = cat
				res.Categories[cat]++
			}
		}
		res.Changes = append(res.Changes, change)
	}
	return res
}

// ScoreBucket returns the reporting range for a positive churn score.
func ScoreBucket(score int) string {
	switch {
	case score <= 5:
		return "1-5"
	case score <= 10:
		return "6-10"
	case score <= 20:
		return "11-20"
	default:
		return "21+"
	}
}

func emptyCategoryCounts() map[Category]int {
	m := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		m[c] = 0
	}
	return m
}
