// Package payroll provides the SQLite-backed payroll ledger.
package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	domain "github.com/felixgeelhaar/atelier/pkg/domain/payroll"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS payroll_records (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL,
	task_id TEXT NOT NULL,
	member_id TEXT NOT NULL,
	member_name TEXT NOT NULL,
	amount REAL NOT NULL,
	generated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payroll_task ON payroll_records(task_id);
CREATE INDEX IF NOT EXISTS idx_payroll_member ON payroll_records(member_id);
`

// OpenDB opens the ledger database at the given path. ":memory:" uses an
// in-memory database. WAL mode is enabled and the schema applied.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return db, nil
}

// SQLiteLedger implements the payroll ledger over a SQLite database.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

const recordColumns = `id, item_id, task_id, member_id, member_name, amount, generated_at`

func (l *SQLiteLedger) Generate(ctx context.Context, rec domain.Record) error {
	query := `INSERT INTO payroll_records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, query,
		rec.ID,
		rec.ItemID,
		rec.TaskID,
		rec.MemberID,
		rec.MemberName,
		rec.Amount,
		rec.GeneratedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting payroll record: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) RemoveForTask(ctx context.Context, taskID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM payroll_records WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("removing payroll records: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) ListByMember(ctx context.Context, memberID string) ([]domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM payroll_records WHERE member_id = ? ORDER BY generated_at`
	rows, err := l.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("querying payroll records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListForTask returns the records created for a task's completions.
func (l *SQLiteLedger) ListForTask(ctx context.Context, taskID string) ([]domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM payroll_records WHERE task_id = ? ORDER BY generated_at`
	rows, err := l.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying payroll records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var out []domain.Record
	for rows.Next() {
		var rec domain.Record
		var generatedAt string
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.TaskID, &rec.MemberID, &rec.MemberName, &rec.Amount, &generatedAt); err != nil {
			return nil, fmt.Errorf("scanning payroll record: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing generated_at: %w", err)
		}
		rec.GeneratedAt = ts
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payroll records: %w", err)
	}
	return out, nil
}

var _ domain.Ledger = (*SQLiteLedger)(nil)
