// Package payroll models the payroll side effect fired on task completion
// transitions.
package payroll

import "fmt"

// OutcomeKind tags the result of a payroll side effect.
type OutcomeKind string

const (
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeGenerated OutcomeKind = "generated"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is the tagged result of a completion's payroll side effect,
// consumed exhaustively by the notification layer. A failed outcome is a
// partial success: the task transition stands, only the payroll record is
// missing.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	PersonnelName string      `json:"personnel_name,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// Skipped marks payroll as explicitly suppressed for this transition.
func Skipped() Outcome {
	return Outcome{Kind: OutcomeSkipped}
}

// Generated marks a payroll record created for the named crew member.
func Generated(personnelName string) Outcome {
	return Outcome{Kind: OutcomeGenerated, PersonnelName: personnelName}
}

// Failed marks a payroll failure with the collaborator's reason, surfaced
// verbatim to the user.
func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}

// String renders the outcome for logs and notifications.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeGenerated:
		return fmt.Sprintf("payroll generated for %s", o.PersonnelName)
	case OutcomeFailed:
		return fmt.Sprintf("payroll was not generated: %s", o.Reason)
	default:
		return "payroll skipped"
	}
}
