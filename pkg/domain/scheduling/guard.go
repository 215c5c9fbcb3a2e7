package scheduling

import "github.com/felixgeelhaar/atelier/pkg/domain/crew"

// CompletionGate is the decision about what must happen before a pending
// task may complete, computed once from the current item and roster state.
type CompletionGate string

const (
	// GateNoCrewNeeded: the transition proceeds immediately, with payroll
	// generation requested when a crew member is assigned.
	GateNoCrewNeeded CompletionGate = "no_crew_needed"
	// GateNeedsAssignmentPrompt: no crew member is assigned; the transition
	// is deferred behind an "assign crew before completing" prompt.
	GateNeedsAssignmentPrompt CompletionGate = "needs_assignment_prompt"
	// GateNeedsPayrollConfirmation: the assigned member is on a fixed salary;
	// the transition is deferred behind an explicit payroll confirmation.
	GateNeedsPayrollConfirmation CompletionGate = "needs_payroll_confirmation"
)

// GateForCompletion computes the gate for completing the given item. The
// member argument is the resolved assignee, nil when the item has none.
func GateForCompletion(item ScheduledItem, member *crew.Member) CompletionGate {
	if !item.HasCrew() {
		return GateNeedsAssignmentPrompt
	}
	if member != nil && member.CompensationMode() == crew.CompensationFixed {
		return GateNeedsPayrollConfirmation
	}
	return GateNoCrewNeeded
}

// Deferred reports whether the gate defers the transition behind a prompt.
func (g CompletionGate) Deferred() bool {
	return g != GateNoCrewNeeded
}
