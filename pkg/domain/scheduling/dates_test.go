package scheduling_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestClampDuration(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{30, 30},
		{365, 365},
		{366, 365},
		{10000, 365},
	}

	for _, tt := range tests {
		if got := scheduling.ClampDuration(tt.in); got != tt.want {
			t.Errorf("ClampDuration(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEndFromAnchor(t *testing.T) {
	anchor := date("2024-01-01")

	tests := []struct {
		name     string
		duration int
		want     string
	}{
		{"single day ends on anchor", 1, "2024-01-01"},
		{"three days", 3, "2024-01-03"},
		{"month boundary", 31, "2024-01-31"},
		{"zero clamps to one", 0, "2024-01-01"},
		{"over max clamps to a year", 400, "2024-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scheduling.EndFromAnchor(anchor, tt.duration)
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("EndFromAnchor(%d) = %s, want %s", tt.duration, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestDurationOf(t *testing.T) {
	if got := scheduling.DurationOf(date("2024-01-01"), date("2024-01-01")); got != 1 {
		t.Errorf("single-day duration = %d, want 1", got)
	}
	if got := scheduling.DurationOf(date("2024-01-01"), date("2024-01-03")); got != 3 {
		t.Errorf("duration = %d, want 3", got)
	}
}

func TestTaskValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		task    scheduling.SchedulerTask
		wantErr bool
	}{
		{
			"valid pending",
			scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-01"), EndDate: date("2024-01-03"), DurationDays: 3, Status: scheduling.StatusPending},
			false,
		},
		{
			"valid completed",
			scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-01"), EndDate: date("2024-01-01"), DurationDays: 1, Status: scheduling.StatusCompleted, CompletedAt: &now},
			false,
		},
		{
			"end before start",
			scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-03"), EndDate: date("2024-01-01"), DurationDays: 1, Status: scheduling.StatusPending},
			true,
		},
		{
			"duration mismatch",
			scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-01"), EndDate: date("2024-01-03"), DurationDays: 2, Status: scheduling.StatusPending},
			true,
		},
		{
			"completed without timestamp",
			scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-01"), EndDate: date("2024-01-01"), DurationDays: 1, Status: scheduling.StatusCompleted},
			true,
		},
		{
			"pending with timestamp",
			scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-01"), EndDate: date("2024-01-01"), DurationDays: 1, Status: scheduling.StatusPending, CompletedAt: &now},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
