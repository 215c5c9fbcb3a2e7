// Package events defines domain events emitted by the scheduling core and
// the dispatcher that fans them out to aggregators, stores and broadcasters.
package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	AggregateID_ string                 `json:"aggregate_id"`
	Timestamp    time.Time              `json:"timestamp"`
	Actor        string                 `json:"actor,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.AggregateID_ }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// Event type constants.
const (
	TypeTaskScheduled     = "task.scheduled"
	TypeTaskUnscheduled   = "task.unscheduled"
	TypeTaskCompleted     = "task.completed"
	TypeTaskReopened      = "task.reopened"
	TypeTaskDatesChanged  = "task.dates_changed"
	TypeCrewAssigned      = "crew.assigned"
	TypePayrollGenerated  = "payroll.generated"
	TypePayrollRemoved    = "payroll.removed"
	TypeSnapshotPublished = "snapshot.published"
)

// TaskScheduled is emitted when a task is attached to an item.
type TaskScheduled struct {
	BaseEvent
	TaskID       string `json:"task_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DurationDays int    `json:"duration_days"`
}

// TaskUnscheduled is emitted when a task is detached from an item.
type TaskUnscheduled struct {
	BaseEvent
	TaskID string `json:"task_id"`
}

// TaskCompleted is emitted on a Pending -> Completed transition.
type TaskCompleted struct {
	BaseEvent
	TaskID      string `json:"task_id"`
	MemberID    string `json:"member_id,omitempty"`
	SkipPayroll bool   `json:"skip_payroll"`
}

// TaskReopened is emitted on a Completed -> Pending transition.
type TaskReopened struct {
	BaseEvent
	TaskID string `json:"task_id"`
}

// TaskDatesChanged is emitted when a date-range edit is confirmed.
type TaskDatesChanged struct {
	BaseEvent
	TaskID       string `json:"task_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DurationDays int    `json:"duration_days"`
}

// CrewAssigned is emitted when the crew assignment on an item changes.
// An empty MemberID means the assignment was cleared.
type CrewAssigned struct {
	BaseEvent
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name,omitempty"`
}

// PayrollGenerated is emitted when the payroll collaborator created a record.
type PayrollGenerated struct {
	BaseEvent
	TaskID     string  `json:"task_id"`
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Amount     float64 `json:"amount"`
}

// PayrollRemoved is emitted when a reopen removed the completion's record.
type PayrollRemoved struct {
	BaseEvent
	TaskID string `json:"task_id"`
}

// NewBase constructs a BaseEvent for the given type and aggregate.
func NewBase(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:         eventType,
		AggregateID_: aggregateID,
		Timestamp:    time.Now(),
	}
}
