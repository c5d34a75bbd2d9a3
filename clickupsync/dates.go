package clickupsync

import (
	"strconv"
	"strings"
	"time"
)

// defaultStartHour is applied when a start timestamp arrives date-only;
// field work is scheduled from 08:00.
const defaultStartHour = 8

type rawTaskDates struct {
	StartDate   string
	DueDate     string
	DateCreated string
	DateUpdated string
	DateClosed  string
}

func taskDates(task *clickupTask) rawTaskDates {
	return rawTaskDates{
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		DateCreated: task.DateCreated,
		DateUpdated: task.DateUpdated,
		DateClosed:  task.DateClosed,
	}
}

type resolvedDates struct {
	Start     *time.Time
	Due       *time.Time
	Completed *time.Time
}

// resolveDates derives the stored timestamps from the raw external ones.
// completed is nil unless the status is terminal, no matter what raw
// timestamps are present; when terminal the fallback order is
// date_closed, date_updated, sync time.
func resolveDates(raw rawTaskDates, isTerminal bool, now time.Time) resolvedDates {
	var out resolvedDates

	start, hasClock := parseClickupTimestamp(raw.StartDate)
	if start == nil {
		start, hasClock = parseClickupTimestamp(raw.DateCreated)
	}
	if start != nil {
		if !hasClock {
			d := time.Date(start.Year(), start.Month(), start.Day(), defaultStartHour, 0, 0, 0, time.UTC)
			start = &d
		}
		out.Start = start
	}

	if due, _ := parseClickupTimestamp(raw.DueDate); due != nil {
		out.Due = due
	}

	if isTerminal {
		if closed, _ := parseClickupTimestamp(raw.DateClosed); closed != nil {
			out.Completed = closed
		} else if updated, _ := parseClickupTimestamp(raw.DateUpdated); updated != nil {
			out.Completed = updated
		} else {
			t := now.UTC()
			out.Completed = &t
		}
	}

	return out
}

// parseClickupTimestamp accepts millisecond-epoch strings (the API default)
// and ISO strings (RFC3339 or date-only). The second return reports whether
// the input carried a clock component.
func parseClickupTimestamp(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, false
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, true
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		t = t.UTC()
		return &t, false
	}

	return nil, false
}
