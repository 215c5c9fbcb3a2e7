package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/domain/payroll"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/google/uuid"
)

var ErrItemNotFound = errors.New("item not found")
var ErrNotScheduled = errors.New("item has no scheduler task")
var ErrAlreadyScheduled = errors.New("item already has a scheduler task")

const payrollTimeout = 10 * time.Second

// CompletionPrompt is a deferred Pending -> Completed transition: the guard
// decided a prompt must be resolved first. The toggle has not been applied.
type CompletionPrompt struct {
	Gate   scheduling.CompletionGate
	Member *crew.Member
}

// ScheduleService owns the task lifecycle and the completion state machine
// orchestration: guards, prompts, payroll side effects and notifications.
type ScheduleService struct {
	repo       scheduling.ItemRepository
	roster     crew.Roster
	ledger     payroll.Ledger
	dispatcher *events.Dispatcher
	notifier   Notifier
	mirrors    *optimistic.Registry
}

func NewScheduleService(repo scheduling.ItemRepository, roster crew.Roster, ledger payroll.Ledger, dispatcher *events.Dispatcher, notifier Notifier, mirrors *optimistic.Registry) *ScheduleService {
	return &ScheduleService{
		repo:       repo,
		roster:     roster,
		ledger:     ledger,
		dispatcher: dispatcher,
		notifier:   notifier,
		mirrors:    mirrors,
	}
}

// Mirrors exposes the registry for views that render local snapshots.
func (s *ScheduleService) Mirrors() *optimistic.Registry {
	return s.mirrors
}

func (s *ScheduleService) loadItem(id string) (*scheduling.ScheduledItem, error) {
	item, err := s.repo.LoadItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// Schedule attaches a task to an item, anchored at start with an inclusive
// duration in days. An item carries at most one live task.
func (s *ScheduleService) Schedule(ctx context.Context, itemID string, start time.Time, durationDays int) (*scheduling.SchedulerTask, error) {
	item, err := s.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.HasTask() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyScheduled, itemID)
	}

	days := scheduling.ClampDuration(durationDays)
	task := scheduling.SchedulerTask{
		ID:           uuid.New().String(),
		Name:         item.Name,
		StartDate:    start,
		EndDate:      scheduling.EndFromAnchor(start, days),
		DurationDays: days,
		Status:       scheduling.StatusPending,
	}

	item.Task = &task
	if err := s.repo.SaveItem(*item); err != nil {
		return nil, err
	}
	s.mirrors.Mirror(*item)

	s.dispatch(ctx, events.TaskScheduled{
		BaseEvent:    events.NewBase(events.TypeTaskScheduled, item.ID),
		TaskID:       task.ID,
		StartDate:    task.StartDate.Format("2006-01-02"),
		EndDate:      task.EndDate.Format("2006-01-02"),
		DurationDays: task.DurationDays,
	})

	return &task, nil
}

// Unschedule detaches the item's task. The identity loss propagates to any
// open contextual UI through the next canonical observation.
func (s *ScheduleService) Unschedule(ctx context.Context, itemID string) error {
	item, err := s.loadItem(itemID)
	if err != nil {
		return err
	}
	if !item.HasTask() {
		return fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}

	taskID := item.Task.ID
	item.Task = nil
	if err := s.repo.SaveItem(*item); err != nil {
		return err
	}
	s.mirrors.Mirror(*item)

	s.dispatch(ctx, events.TaskUnscheduled{
		BaseEvent: events.NewBase(events.TypeTaskUnscheduled, item.ID),
		TaskID:    taskID,
	})
	return nil
}

// Complete attempts the Pending -> Completed transition. When a guard defers
// it, the returned prompt describes the required resolution and no state has
// changed; a nil prompt means the transition went through.
func (s *ScheduleService) Complete(ctx context.Context, itemID string) (*CompletionPrompt, error) {
	item, err := s.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if !item.HasTask() {
		return nil, fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}
	if !item.Task.Status.CanTransitionWith("complete") {
		return nil, fmt.Errorf("task %s is already %s", item.Task.ID, item.Task.Status)
	}

	member, err := s.assignee(ctx, *item)
	if err != nil {
		return nil, err
	}

	gate := scheduling.GateForCompletion(*item, member)
	if gate.Deferred() {
		return &CompletionPrompt{Gate: gate, Member: member}, nil
	}

	return nil, s.complete(ctx, item, member, false)
}

// ResolveAssignAndComplete resolves the assignment prompt by assigning the
// member and completing in the same action. The assignment confirmation is
// fully sequenced before the completion confirmation is dispatched.
func (s *ScheduleService) ResolveAssignAndComplete(ctx context.Context, itemID, memberID string) error {
	member, err := s.roster.Member(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("crew member not found: %s", memberID)
	}

	item, err := s.loadItem(itemID)
	if err != nil {
		return err
	}
	if !item.HasTask() {
		return fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}

	m := s.mirrors.Mirror(*item)
	summary := member.Summary()
	if err := m.ApplyCrewAssignment(ctx, member.ID, &summary, func(ctx context.Context) error {
		return s.repo.SaveItem(m.Snapshot())
	}); err != nil {
		notify(s.notifier, LevelError, fmt.Sprintf("could not assign %s: %v", member.Name, err))
		return err
	}
	s.dispatch(ctx, events.CrewAssigned{
		BaseEvent:  events.NewBase(events.TypeCrewAssigned, itemID),
		MemberID:   member.ID,
		MemberName: member.Name,
	})

	assigned, err := s.loadItem(itemID)
	if err != nil {
		return err
	}
	return s.complete(ctx, assigned, member, false)
}

// ResolveCompleteWithoutPayroll resolves the assignment prompt by completing
// anyway, with the payroll side effect explicitly suppressed.
func (s *ScheduleService) ResolveCompleteWithoutPayroll(ctx context.Context, itemID string) error {
	item, err := s.loadItem(itemID)
	if err != nil {
		return err
	}
	if !item.HasTask() {
		return fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}

	member, err := s.assignee(ctx, *item)
	if err != nil {
		return err
	}
	return s.complete(ctx, item, member, true)
}

// ResolvePayrollConfirmation resolves the fixed-salary prompt. Declining
// still completes the task, with payroll explicitly skipped.
func (s *ScheduleService) ResolvePayrollConfirmation(ctx context.Context, itemID string, generate bool) error {
	item, err := s.loadItem(itemID)
	if err != nil {
		return err
	}
	if !item.HasTask() {
		return fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}

	member, err := s.assignee(ctx, *item)
	if err != nil {
		return err
	}
	return s.complete(ctx, item, member, !generate)
}

// Reopen runs the unguarded Completed -> Pending transition and removes the
// payroll record the completion had created.
func (s *ScheduleService) Reopen(ctx context.Context, itemID string) error {
	item, err := s.loadItem(itemID)
	if err != nil {
		return err
	}
	if !item.HasTask() {
		return fmt.Errorf("%w: %s", ErrNotScheduled, itemID)
	}

	fsm, err := scheduling.NewCompletionMachine(string(item.Task.Status), item.Task.ID, nil)
	if err != nil {
		return err
	}
	if err := fsm.Transition("reopen"); err != nil {
		return err
	}

	taskID := item.Task.ID
	m := s.mirrors.Mirror(*item)
	if err := m.ApplyCompletionToggle(ctx, false, func(ctx context.Context) error {
		return s.repo.SaveItem(m.Snapshot())
	}); err != nil {
		notify(s.notifier, LevelError, fmt.Sprintf("could not reopen task: %v", err))
		return err
	}

	s.dispatch(ctx, events.TaskReopened{
		BaseEvent: events.NewBase(events.TypeTaskReopened, itemID),
		TaskID:    taskID,
	})

	// The ledger removes whatever record the completion created. A removal
	// failure is a partial success: the reopen stands, the user is warned.
	if err := s.removePayroll(ctx, taskID); err != nil {
		notify(s.notifier, LevelWarning, fmt.Sprintf("payroll record was not removed: %v", err))
		return nil
	}
	s.dispatch(ctx, events.PayrollRemoved{
		BaseEvent: events.NewBase(events.TypePayrollRemoved, itemID),
		TaskID:    taskID,
	})
	return nil
}

// assignee resolves the item's assigned crew member, nil when unassigned or
// unknown to the roster.
func (s *ScheduleService) assignee(ctx context.Context, item scheduling.ScheduledItem) (*crew.Member, error) {
	if !item.HasCrew() {
		return nil, nil
	}
	return s.roster.Member(ctx, item.CrewMemberID)
}

// complete applies the guarded transition through the FSM, mutates the
// mirror optimistically, persists, and fires the payroll side effect. A
// payroll failure after a successful task mutation is a partial success.
func (s *ScheduleService) complete(ctx context.Context, item *scheduling.ScheduledItem, member *crew.Member, skipPayroll bool) error {
	fsm, err := scheduling.NewCompletionMachine(string(item.Task.Status), item.Task.ID, nil)
	if err != nil {
		return err
	}
	if err := fsm.Transition("complete"); err != nil {
		return err
	}

	taskID := item.Task.ID
	var outcome payroll.Outcome

	m := s.mirrors.Mirror(*item)
	if err := m.ApplyCompletionToggle(ctx, true, func(ctx context.Context) error {
		if err := s.repo.SaveItem(m.Snapshot()); err != nil {
			return err
		}
		outcome = s.generatePayroll(ctx, m.Snapshot(), member, skipPayroll)
		return nil
	}); err != nil {
		notify(s.notifier, LevelError, fmt.Sprintf("could not complete task: %v", err))
		return err
	}

	memberID := ""
	if member != nil {
		memberID = member.ID
	}
	s.dispatch(ctx, events.TaskCompleted{
		BaseEvent:   events.NewBase(events.TypeTaskCompleted, item.ID),
		TaskID:      taskID,
		MemberID:    memberID,
		SkipPayroll: skipPayroll,
	})

	switch outcome.Kind {
	case payroll.OutcomeGenerated:
		notify(s.notifier, LevelInfo, outcome.String())
	case payroll.OutcomeFailed:
		notify(s.notifier, LevelWarning, outcome.String())
	}
	return nil
}

// generatePayroll fires the side effect against the ledger collaborator,
// classifying the result as a tagged outcome. Never fails the completion.
func (s *ScheduleService) generatePayroll(ctx context.Context, item scheduling.ScheduledItem, member *crew.Member, skip bool) payroll.Outcome {
	if skip || member == nil || member.CompensationMode() == crew.CompensationNone {
		return payroll.Skipped()
	}
	if s.ledger == nil || item.Task == nil {
		return payroll.Skipped()
	}

	rec := payroll.Record{
		ID:          uuid.New().String(),
		ItemID:      item.ID,
		TaskID:      item.Task.ID,
		MemberID:    member.ID,
		MemberName:  member.Name,
		Amount:      member.PayAmount(),
		GeneratedAt: time.Now(),
	}

	t := timeout.New[struct{}](timeout.Config{DefaultTimeout: payrollTimeout})
	if _, err := t.Execute(ctx, payrollTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.ledger.Generate(ctx, rec)
	}); err != nil {
		return payroll.Failed(err.Error())
	}

	s.dispatch(ctx, events.PayrollGenerated{
		BaseEvent:  events.NewBase(events.TypePayrollGenerated, item.ID),
		TaskID:     rec.TaskID,
		MemberID:   rec.MemberID,
		MemberName: rec.MemberName,
		Amount:     rec.Amount,
	})
	return payroll.Generated(member.Name)
}

func (s *ScheduleService) removePayroll(ctx context.Context, taskID string) error {
	if s.ledger == nil {
		return nil
	}

	t := timeout.New[struct{}](timeout.Config{DefaultTimeout: payrollTimeout})
	_, err := t.Execute(ctx, payrollTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.ledger.RemoveForTask(ctx, taskID)
	})
	return err
}

// dispatch emits a domain event; handler failures degrade to a warning
// instead of failing the user action.
func (s *ScheduleService) dispatch(ctx context.Context, event events.DomainEvent) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		notify(s.notifier, LevelWarning, fmt.Sprintf("event %s not fully delivered: %v", event.EventType(), err))
	}
}
