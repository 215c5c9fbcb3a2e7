package scheduling

import (
	"fmt"
	"time"
)

// Duration bounds for a scheduler task, in calendar days.
const (
	MinDurationDays = 1
	MaxDurationDays = 365
)

// ClampDuration bounds a duration to [MinDurationDays, MaxDurationDays].
// Called before every recomputation, not just on input entry, to guard
// against programmatic callers.
func ClampDuration(days int) int {
	if days < MinDurationDays {
		return MinDurationDays
	}
	if days > MaxDurationDays {
		return MaxDurationDays
	}
	return days
}

// DaysBetween returns the number of calendar days from a to b, ignoring the
// time-of-day component.
func DaysBetween(a, b time.Time) int {
	a = truncateToDay(a)
	b = truncateToDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// EndFromAnchor derives the end date from an anchored start date and an
// inclusive duration. The duration is clamped first.
func EndFromAnchor(anchor time.Time, durationDays int) time.Time {
	return anchor.AddDate(0, 0, ClampDuration(durationDays)-1)
}

// DurationOf returns the inclusive duration of a date range in days.
func DurationOf(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks the task's internal consistency: end >= start, the stored
// duration matches the range, and the completion timestamp agrees with the
// status.
func (t SchedulerTask) Validate() error {
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("task %s: end date %s before start date %s",
			t.ID, t.EndDate.Format("2006-01-02"), t.StartDate.Format("2006-01-02"))
	}

	if want := DurationOf(t.StartDate, t.EndDate); t.DurationDays != want {
		return fmt.Errorf("task %s: duration %d does not match range (%d days)", t.ID, t.DurationDays, want)
	}

	switch t.Status {
	case StatusCompleted:
		if t.CompletedAt == nil {
			return fmt.Errorf("task %s: completed without a completion timestamp", t.ID)
		}
	case StatusPending:
		if t.CompletedAt != nil {
			return fmt.Errorf("task %s: pending with a completion timestamp", t.ID)
		}
	default:
		return fmt.Errorf("task %s: invalid status %q", t.ID, t.Status)
	}

	return nil
}
