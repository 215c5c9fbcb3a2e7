package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

// DurationService creates duration editors bound to the canonical store.
type DurationService struct {
	repo       scheduling.ItemRepository
	dispatcher *events.Dispatcher
	notifier   Notifier
	mirrors    *optimistic.Registry
}

func NewDurationService(repo scheduling.ItemRepository, dispatcher *events.Dispatcher, notifier Notifier, mirrors *optimistic.Registry) *DurationService {
	return &DurationService{
		repo:       repo,
		dispatcher: dispatcher,
		notifier:   notifier,
		mirrors:    mirrors,
	}
}

// Editor opens a duration editor for the item's attached task.
func (s *DurationService) Editor(itemID string) (*DurationEditor, error) {
	item, err := s.repo.LoadItem(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if !item.HasTask() {
		return nil, fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}

	e := &DurationEditor{svc: s, itemID: itemID}
	e.seed(*item.Task)
	return e, nil
}

// DurationEditor lets the user edit a task's duration in days while the
// start date stays anchored. The end date is always derived from
// anchor + duration; a save affordance only appears when the edited value
// actually differs from the canonical one.
type DurationEditor struct {
	svc               *DurationService
	itemID            string
	taskID            string
	anchor            time.Time
	canonicalEnd      time.Time
	canonicalDuration int
	durationDays      int
}

func (e *DurationEditor) seed(task scheduling.SchedulerTask) {
	e.taskID = task.ID
	e.anchor = task.StartDate
	e.canonicalEnd = task.EndDate
	e.canonicalDuration = task.DurationDays
	e.durationDays = task.DurationDays
}

// Reseed replaces the canonical baseline when the task changed identity
// upstream; an observation of the same task keeps the local edit.
func (e *DurationEditor) Reseed(task scheduling.SchedulerTask) {
	if task.ID == e.taskID {
		e.anchor = task.StartDate
		e.canonicalEnd = task.EndDate
		e.canonicalDuration = task.DurationDays
		return
	}
	e.seed(task)
}

// SetDuration records the edited duration, clamped to the valid range.
func (e *DurationEditor) SetDuration(days int) {
	e.durationDays = scheduling.ClampDuration(days)
}

func (e *DurationEditor) Duration() int {
	return e.durationDays
}

// Changed reports whether the edited duration differs from the canonical one.
func (e *DurationEditor) Changed() bool {
	return e.durationDays != e.canonicalDuration
}

// PreviewEnd returns the candidate end date for display: the canonical end
// when unchanged, otherwise anchor + duration.
func (e *DurationEditor) PreviewEnd() time.Time {
	if !e.Changed() {
		return e.canonicalEnd
	}
	return scheduling.EndFromAnchor(e.anchor, e.durationDays)
}

// Save re-derives the end date from the current canonical anchor and the
// edited duration. The range is recomputed at save time, never reused from
// the preview, so a since-changed anchor cannot leak a stale end date. On a
// rejected confirmation the mirror restores the pre-edit snapshot before the
// error is surfaced.
func (e *DurationEditor) Save(ctx context.Context) error {
	if !e.Changed() {
		return nil
	}

	item, err := e.svc.repo.LoadItem(e.itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, e.itemID)
	}
	if !item.HasTask() || item.Task.ID != e.taskID {
		return fmt.Errorf("task no longer attached to item %s", e.itemID)
	}

	anchor := item.Task.StartDate
	days := scheduling.ClampDuration(e.durationDays)
	end := scheduling.EndFromAnchor(anchor, days)

	m := e.svc.mirrors.Mirror(*item)
	if err := m.ApplyDateRangeEdit(ctx, anchor, end, days, func(ctx context.Context) error {
		return e.svc.repo.SaveItem(m.Snapshot())
	}); err != nil {
		notify(e.svc.notifier, LevelError, fmt.Sprintf("could not save duration: %v", err))
		return err
	}

	snap := m.Snapshot()
	e.Reseed(*snap.Task)

	if e.svc.dispatcher != nil {
		if derr := e.svc.dispatcher.Dispatch(ctx, events.TaskDatesChanged{
			BaseEvent:    events.NewBase(events.TypeTaskDatesChanged, e.itemID),
			TaskID:       e.taskID,
			StartDate:    anchor.Format("2006-01-02"),
			EndDate:      end.Format("2006-01-02"),
			DurationDays: days,
		}); derr != nil {
			notify(e.svc.notifier, LevelWarning, fmt.Sprintf("event %s not fully delivered: %v", events.TypeTaskDatesChanged, derr))
		}
	}
	return nil
}
