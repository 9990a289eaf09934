package timeline

import (
	"errors"
	"math"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}

func TestHours(t *testing.T) {
	tests := []struct {
		name            string
		start, end      string
		excludeWeekends bool
		expected        float64
	}{
		{"FullDay", "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", false, 24},
		{"WeekendOnly", "2024-01-06T00:00:00Z", "2024-01-08T00:00:00Z", true, 0},
		{"WeekendCountedWhenIncluded", "2024-01-06T00:00:00Z", "2024-01-08T00:00:00Z", false, 48},
		{"FridayNoonToMondayNoon", "2024-01-05T12:00:00Z", "2024-01-08T12:00:00Z", true, 24},
		{"SameDayPartial", "2024-01-03T09:00:00Z", "2024-01-03T17:30:00Z", true, 8.5},
		{"FullWeek", "2024-01-01T00:00:00Z", "2024-01-08T00:00:00Z", true, 120},
		{"SaturdayPartialOnly", "2024-01-06T10:00:00Z", "2024-01-06T11:00:00Z", true, 0},
		{"ZeroLength", "2024-01-03T09:00:00Z", "2024-01-03T09:00:00Z", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hours(mustTime(t, tt.start), mustTime(t, tt.end), tt.excludeWeekends)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Hours() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHours_NegativeSpan(t *testing.T) {
	got, err := Hours(mustTime(t, "2024-01-02T00:00:00Z"), mustTime(t, "2024-01-01T00:00:00Z"), true)
	if !errors.Is(err, ErrNegativeSpan) {
		t.Errorf("Expected ErrNegativeSpan, got %v", err)
	}
	if got != 0 {
		t.Errorf("Expected 0 hours for negative span, got %v", got)
	}
}

func TestHours_UsesStartLocation(t *testing.T) {
	// Friday 23:00 at -0500 is already Saturday in UTC; the hour still counts.
	loc := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, 1, 5, 23, 0, 0, 0, loc)
	end := start.Add(time.Hour)

	got, err := Hours(start, end.UTC(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected 1 weekday hour, got %v", got)
	}
}
