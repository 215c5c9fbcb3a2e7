package payroll

import (
	"context"
	"time"
)

// Record is a payroll entry created for a task completion.
type Record struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	TaskID      string    `json:"task_id"`
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name"`
	Amount      float64   `json:"amount"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Ledger is the external payroll collaborator. Generate is invoked on a
// completion transition; RemoveForTask on a reopen, which deletes whatever
// record the completion had created.
type Ledger interface {
	Generate(ctx context.Context, rec Record) error
	RemoveForTask(ctx context.Context, taskID string) error
	ListByMember(ctx context.Context, memberID string) ([]Record, error)
}
