// Package scheduling models schedulable quotation items and their attached
// scheduler tasks.
package scheduling

import (
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
)

type ProfitType string

const (
	ProfitService ProfitType = "service"
	ProfitProduct ProfitType = "product"
)

// ScheduledItem is the unit of work: a quotation item that may carry an
// attached scheduler task and an assigned crew member. An item has at most
// one live task at any time.
type ScheduledItem struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Quantity     int            `json:"quantity"`
	UnitCost     float64        `json:"unit_cost"`
	Profit       ProfitType     `json:"profit_type"`
	CrewMemberID string         `json:"crew_member_id,omitempty"`
	Crew         *crew.Summary  `json:"crew,omitempty"`
	Task         *SchedulerTask `json:"task,omitempty"`
}

// HasCrew reports whether a crew member is assigned.
func (i ScheduledItem) HasCrew() bool {
	return i.CrewMemberID != ""
}

// HasTask reports whether a scheduler task is attached.
func (i ScheduledItem) HasTask() bool {
	return i.Task != nil
}

// Clone returns a deep copy of the item. Mutations on the copy never alias
// the original's task or crew summary.
func (i ScheduledItem) Clone() ScheduledItem {
	out := i
	if i.Task != nil {
		task := *i.Task
		out.Task = &task
	}
	if i.Crew != nil {
		summary := *i.Crew
		out.Crew = &summary
	}
	return out
}

// WithCrew returns a copy with the assignment applied. An empty id clears
// both the reference and the display summary.
func (i ScheduledItem) WithCrew(memberID string, summary *crew.Summary) ScheduledItem {
	out := i.Clone()
	out.CrewMemberID = memberID
	if memberID == "" {
		out.Crew = nil
		return out
	}
	if summary != nil {
		s := *summary
		out.Crew = &s
	}
	return out
}

// SchedulerTask is the date-ranged, completable occurrence attached to an
// item. Duration is inclusive of both endpoints: a single-day task has
// duration 1 and end == start.
type SchedulerTask struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	DurationDays    int        `json:"duration_days"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Status          TaskStatus `json:"status"`
	ProgressPercent int        `json:"progress_percent"`
}

// WithCompletion returns a copy with the completion fields derived from the
// target state. All other fields are preserved unchanged: completing sets the
// timestamp, status and progress 100; reopening clears the timestamp and
// keeps the prior progress.
func (t SchedulerTask) WithCompletion(completed bool, now time.Time) SchedulerTask {
	out := t
	if completed {
		at := now
		out.CompletedAt = &at
		out.Status = StatusCompleted
		out.ProgressPercent = 100
		return out
	}
	out.CompletedAt = nil
	out.Status = StatusPending
	return out
}

// WithDates returns a copy with the date range replaced, preserving all
// other fields.
func (t SchedulerTask) WithDates(start, end time.Time, durationDays int) SchedulerTask {
	out := t
	out.StartDate = start
	out.EndDate = end
	out.DurationDays = durationDays
	return out
}
