package timeline

import (
	"errors"
	"time"
)

// ErrNegativeSpan is returned when a span ends before it starts.
var ErrNegativeSpan = errors.New("span ends before it starts")

// Hours returns the elapsed hours between start and end. With excludeWeekends set, only the
// parts of [start, end) that fall on Monday to Friday count. Weekdays are evaluated in the
// location of start.
func Hours(start, end time.Time, excludeWeekends bool) (float64, error) {
	if end.Before(start) {
		return 0, ErrNegativeSpan
	}
	if !excludeWeekends {
		return end.Sub(start).Hours(), nil
	}
	return weekdayDuration(start, end).Hours(), nil
}

// weekdayDuration walks [start, end) one calendar day at a time, counting the partial first
// and last days under their own weekday.
func weekdayDuration(start, end time.Time) time.Duration {
	loc := start.Location()
	end = end.In(loc)

	var total time.Duration
	cursor := start
	for cursor.Before(end) {
		y, m, d := cursor.Date()
		nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		segEnd := end
		if nextMidnight.Before(end) {
			segEnd = nextMidnight
		}
		if isWeekday(cursor.Weekday()) {
			total += segEnd.Sub(cursor)
		}
		cursor = segEnd
	}
	return total
}

func isWeekday(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}
