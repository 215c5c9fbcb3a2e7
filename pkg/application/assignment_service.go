package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

// AssignmentService sets and clears the crew assignment on items,
// independently of the task lifecycle.
type AssignmentService struct {
	repo       scheduling.ItemRepository
	roster     crew.Roster
	dispatcher *events.Dispatcher
	notifier   Notifier
	mirrors    *optimistic.Registry
}

func NewAssignmentService(repo scheduling.ItemRepository, roster crew.Roster, dispatcher *events.Dispatcher, notifier Notifier, mirrors *optimistic.Registry) *AssignmentService {
	return &AssignmentService{
		repo:       repo,
		roster:     roster,
		dispatcher: dispatcher,
		notifier:   notifier,
		mirrors:    mirrors,
	}
}

// Assign resolves the member against the roster and applies the assignment
// optimistically. An unknown member is a validation rejection: no mutation
// is attempted.
func (s *AssignmentService) Assign(ctx context.Context, itemID, memberID string) error {
	member, err := s.roster.Member(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("crew member not found: %s", memberID)
	}

	item, err := s.repo.LoadItem(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
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
	return nil
}

// Unassign clears the crew assignment.
func (s *AssignmentService) Unassign(ctx context.Context, itemID string) error {
	item, err := s.repo.LoadItem(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	m := s.mirrors.Mirror(*item)
	if err := m.ApplyCrewAssignment(ctx, "", nil, func(ctx context.Context) error {
		return s.repo.SaveItem(m.Snapshot())
	}); err != nil {
		notify(s.notifier, LevelError, fmt.Sprintf("could not clear assignment: %v", err))
		return err
	}

	s.dispatch(ctx, events.CrewAssigned{
		BaseEvent: events.NewBase(events.TypeCrewAssigned, itemID),
		MemberID:  "",
	})
	return nil
}

func (s *AssignmentService) dispatch(ctx context.Context, event events.DomainEvent) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		notify(s.notifier, LevelWarning, fmt.Sprintf("event %s not fully delivered: %v", event.EventType(), err))
	}
}
