package stats

import (
	"errors"
	"testing"

	"jira-stage-metrics/internal/timeline"
	"jira-stage-metrics/internal/workflow"
)

func TestExplainIssue(t *testing.T) {
	res, err := ExplainIssue(reviewBounce(), testOptions())
	if err != nil {
		t.Fatalf("ExplainIssue failed: %v", err)
	}

	if len(res.Intervals) != 5 {
		t.Fatalf("Expected 5 intervals, got %d", len(res.Intervals))
	}
	review := res.Intervals[2]
	if review.Stage != workflow.CodeReview || review.Counted {
		t.Errorf("Expected uncounted review interval, got %+v", review)
	}
	if review.Hours != 0.1 {
		t.Errorf("Expected 0.1 hours, got %v", review.Hours)
	}
	if !res.Intervals[1].Counted || res.Intervals[1].Hours != 24 {
		t.Errorf("Expected counted 24h development interval, got %+v", res.Intervals[1])
	}
	if !res.Intervals[4].IsOpen {
		t.Errorf("Expected the last interval to be open")
	}
	if res.Churn.Score != 1 {
		t.Errorf("Expected churn score 1, got %d", res.Churn.Score)
	}
}

func TestExplainIssue_OtherNeverCounted(t *testing.T) {
	issue := timeline.Issue{Key: "X-1", CreatedAt: at(1, 0, 0), CurrentLabel: "Blocked"}

	res, err := ExplainIssue(issue, testOptions())
	if err != nil {
		t.Fatalf("ExplainIssue failed: %v", err)
	}
	if len(res.Intervals) != 1 || res.Intervals[0].Counted {
		t.Errorf("Other intervals must be retained but never counted, got %+v", res.Intervals)
	}
}

func TestExplainIssue_MissingCreated(t *testing.T) {
	_, err := ExplainIssue(timeline.Issue{Key: "X-2"}, testOptions())
	if !errors.Is(err, timeline.ErrMissingCreated) {
		t.Errorf("Expected ErrMissingCreated, got %v", err)
	}
}
