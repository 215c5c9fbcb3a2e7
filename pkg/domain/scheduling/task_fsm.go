package scheduling

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID
// compatibility. Values are kept in sync with TaskStatus constants.
const (
	StatePending   = "pending"
	StateCompleted = "completed"
)

// init validates at startup that FSM state constants match TaskStatus values.
func init() {
	stateMap := map[string]TaskStatus{
		StatePending:   StatusPending,
		StateCompleted: StatusCompleted,
	}

	for fsmState, taskStatus := range stateMap {
		if fsmState != string(taskStatus) {
			panic(fmt.Sprintf("FSM state %q does not match TaskStatus %q - constants are out of sync", fsmState, taskStatus))
		}
	}
}

// CompletionContext carries state data for the completion machine.
type CompletionContext struct {
	TaskID string
	Guard  func(taskID string, event string) bool
}

// CompletionMachine governs the Pending <-> Completed toggle. The "complete"
// transition is guarded so callers can defer it behind crew-assignment and
// payroll-confirmation prompts; "reopen" is unguarded.
type CompletionMachine struct {
	interpreter *statekit.Interpreter[CompletionContext]
}

func NewCompletionMachine(initialState string, taskID string, guard func(string, string) bool) (*CompletionMachine, error) {
	if guard == nil {
		guard = func(string, string) bool { return true }
	}

	builder := statekit.NewMachine[CompletionContext]("completion-machine").
		WithInitial(statekit.StateID(initialState)).
		WithContext(CompletionContext{
			TaskID: taskID,
			Guard:  guard,
		}).
		WithGuard("completionGuard", func(ctx CompletionContext, e statekit.Event) bool {
			return ctx.Guard(ctx.TaskID, string(e.Type))
		})

	builder.State(StatePending).
		On("complete").Target(StateCompleted).Guard("completionGuard").
		Done()

	builder.State(StateCompleted).
		On("reopen").Target(StatePending).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build completion machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &CompletionMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the task to a new state. In statekit, if no
// transition matches or the guard fails, the state stays the same; that is
// reported as an error.
func (sm *CompletionMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	return fmt.Errorf("the action '%s' is not allowed while the task is in the '%s' state", event, before)
}

func (sm *CompletionMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStatus returns the current state as a TaskStatus value object.
func (sm *CompletionMachine) CurrentStatus() TaskStatus {
	return TaskStatus(sm.Current())
}

// CanTransition checks if the given event is valid for the current state.
// This delegates to the TaskStatus value object for consistency.
func (sm *CompletionMachine) CanTransition(event string) bool {
	return sm.CurrentStatus().CanTransitionWith(event)
}

// IsComplete returns true if the task is completed.
func (sm *CompletionMachine) IsComplete() bool {
	return sm.CurrentStatus() == StatusCompleted
}
