// Package crew models assignable studio personnel.
//
// The roster is owned by an external collaborator; this package only reads
// members and derives their compensation mode for payroll gating.
package crew

import "context"

type CompensationMode string

const (
	CompensationFixed    CompensationMode = "fixed_salary"
	CompensationVariable CompensationMode = "variable"
	CompensationNone     CompensationMode = "none"
)

// Member is an assignable crew member.
type Member struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Type           string  `json:"type" yaml:"type"` // e.g. "photographer", "editor"
	FixedSalary    float64 `json:"fixed_salary,omitempty" yaml:"fixed_salary,omitempty"`
	VariableSalary float64 `json:"variable_salary,omitempty" yaml:"variable_salary,omitempty"`
}

// CompensationMode derives the active mode from the salary figures.
// A positive fixed salary wins over a positive variable salary, so at most
// one mode triggers payroll.
func (m Member) CompensationMode() CompensationMode {
	switch {
	case m.FixedSalary > 0:
		return CompensationFixed
	case m.VariableSalary > 0:
		return CompensationVariable
	default:
		return CompensationNone
	}
}

// PayAmount returns the salary figure for the active compensation mode.
func (m Member) PayAmount() float64 {
	switch m.CompensationMode() {
	case CompensationFixed:
		return m.FixedSalary
	case CompensationVariable:
		return m.VariableSalary
	default:
		return 0
	}
}

// Summary is the denormalized shape embedded in scheduled items for display.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (m Member) Summary() Summary {
	return Summary{ID: m.ID, Name: m.Name, Type: m.Type}
}

// Roster is a read-only source of crew members.
type Roster interface {
	Members(ctx context.Context) ([]Member, error)
	Member(ctx context.Context, id string) (*Member, error)
}
