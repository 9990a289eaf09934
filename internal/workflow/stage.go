package workflow

// Stage is a canonical workflow bucket that tracker-specific status labels map onto.
type Stage string

const (
	ToDo       Stage = "to_do"
	InProgress Stage = "in_progress"
	CodeReview Stage = "in_review"
	QA         Stage = "in_qa"
	Done       Stage = "done"
	// Other collects every label no synonym matched. It has no position in the workflow order.
	Other Stage = "other"
)

// UnknownLabel stands in for a changelog entry whose origin status was not recorded.
const UnknownLabel = "(unknown)"

// Ordered lists the ordered stages in workflow order. It is also the tie-break order for
// fuzzy matching.
var Ordered = []Stage{ToDo, InProgress, CodeReview, QA, Done}

// All lists every stage, Other last.
var All = []Stage{ToDo, InProgress, CodeReview, QA, Done, Other}

var order = map[Stage]int{
	ToDo:       1,
	InProgress: 2,
	CodeReview: 3,
	QA:         4,
	Done:       5,
}

// Order returns the position of s in the workflow and false for Other or unknown values.
func (s Stage) Order() (int, bool) {
	o, ok := order[s]
	return o, ok
}

// IsOrdered reports whether s takes part in duration and churn accounting.
func (s Stage) IsOrdered() bool {
	_, ok := order[s]
	return ok
}

// Before reports whether s comes strictly earlier in the workflow than other.
// Comparisons involving Other are always false.
func (s Stage) Before(other Stage) bool {
	a, okA := order[s]
	b, okB := order[other]
	return okA && okB && a < b
}

func (s Stage) String() string {
	return string(s)
}

// DefaultSynonyms are the built-in status labels for each stage.
func DefaultSynonyms() map[Stage][]string {
	return map[Stage][]string{
		ToDo:       {"TO DO", "To Do", "Backlog", "Open", "New", "Product Backlog"},
		InProgress: {"IN PROGRESS", "In Progress", "Development", "Implementing", "Dev", "Coding"},
		CodeReview: {"IN REVIEW", "In Review", "Code Review", "Review", "Reviewing", "PR Review"},
		QA:         {"IN QA", "In QA", "QA", "Testing", "Validation", "Test"},
		Done:       {"DONE", "Done", "Closed", "Resolved", "Completed", "Fixed"},
	}
}

// ParseStage converts a stage key (as used in reports and workflow files) to a Stage.
func ParseStage(key string) (Stage, bool) {
	for _, s := range All {
		if string(s) == key {
			return s, true
		}
	}
	return "", false
}
