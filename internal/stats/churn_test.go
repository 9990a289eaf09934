package stats

import (
	"testing"

	"jira-stage-metrics/internal/workflow"
)

func TestDetectChurn_SingleReviewBounce(t *testing.T) {
	stages := []workflow.Stage{
		workflow.ToDo, workflow.InProgress, workflow.CodeReview,
		workflow.InProgress, workflow.CodeReview, workflow.QA, workflow.Done,
	}

	res := DetectChurn(stages)
	if res.Score != 1 {
		t.Errorf("Expected score 1, got %d", res.Score)
	}
	for _, c := range Categories {
		want := 0
		if c == ReviewToInProgress {
			want = 1
		}
		if res.Categories[c] != want {
			t.Errorf("Category %s: expected %d, got %d", c, want, res.Categories[c])
		}
	}
	if len(res.Changes) != 6 {
		t.Errorf("Expected 6 stage changes, got %d", len(res.Changes))
	}
}

func TestDetectChurn_OtherNeverCounts(t *testing.T) {
	// Review -> Blocked -> In Progress does not bridge across Other.
	stages := []workflow.Stage{workflow.CodeReview, workflow.Other, workflow.InProgress}

	res := DetectChurn(stages)
	if res.Score != 0 {
		t.Errorf("Expected score 0 across Other, got %d", res.Score)
	}
}

func TestDetectChurn_UnnamedBackwardStillScores(t *testing.T) {
	stages := []workflow.Stage{workflow.ToDo, workflow.QA, workflow.ToDo}

	res := DetectChurn(stages)
	if res.Score != 1 {
		t.Errorf("Expected score 1, got %d", res.Score)
	}
	for c, n := range res.Categories {
		if n != 0 {
			t.Errorf("Expected no named category, got %s=%d", c, n)
		}
	}
	if !res.Changes[1].Backward || res.Changes[1].Category != "" {
		t.Errorf("Unexpected change classification: %+v", res.Changes[1])
	}
}

func TestDetectChurn_Reopen(t *testing.T) {
	stages := []workflow.Stage{workflow.InProgress, workflow.Done, workflow.InProgress, workflow.Done, workflow.ToDo}

	res := DetectChurn(stages)
	if res.Score != 2 {
		t.Errorf("Expected score 2, got %d", res.Score)
	}
	if res.Categories[DoneToAny] != 2 {
		t.Errorf("Expected 2 done_to_any, got %d", res.Categories[DoneToAny])
	}
}

func TestDetectChurn_RepeatedStageIgnored(t *testing.T) {
	stages := []workflow.Stage{workflow.InProgress, workflow.InProgress, workflow.ToDo}

	res := DetectChurn(stages)
	if res.Score != 1 || res.Categories[InProgressToToDo] != 1 {
		t.Errorf("Expected one in_progress_to_to_do, got %+v", res)
	}
	if len(res.Changes) != 1 {
		t.Errorf("Expected a single stage change, got %d", len(res.Changes))
	}
}

func TestDetectChurn_Empty(t *testing.T) {
	res := DetectChurn(nil)
	if res.Score != 0 || len(res.Changes) != 0 {
		t.Errorf("Expected empty result, got %+v", res)
	}
	if len(res.Categories) != len(Categories) {
		t.Errorf("Expected all categories present, got %v", res.Categories)
	}
}

func TestScoreBucket(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{1, "1-5"}, {5, "1-5"}, {6, "6-10"}, {10, "6-10"}, {11, "11-20"}, {20, "11-20"}, {21, "21+"}, {99, "21+"},
	}
	for _, tt := range tests {
		if got := ScoreBucket(tt.score); got != tt.expected {
			t.Errorf("ScoreBucket(%d) = %s, want %s", tt.score, got, tt.expected)
		}
	}
}
