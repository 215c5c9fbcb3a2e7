package optimistic_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func scheduledItem() scheduling.ScheduledItem {
	return scheduling.ScheduledItem{
		ID:       "i1",
		Name:     "Wedding shoot",
		Quantity: 1,
		UnitCost: 2500,
		Profit:   scheduling.ProfitService,
		Task: &scheduling.SchedulerTask{
			ID:              "t1",
			Name:            "Setup",
			StartDate:       date("2024-01-01"),
			EndDate:         date("2024-01-03"),
			DurationDays:    3,
			Status:          scheduling.StatusPending,
			ProgressPercent: 40,
		},
	}
}

func TestAggregatorNotifiedBeforeConfirm(t *testing.T) {
	var order []string

	m := optimistic.NewMirror(scheduledItem(), func(item scheduling.ScheduledItem) {
		order = append(order, "aggregator")
	})

	err := m.ApplyCompletionToggle(context.Background(), true, func(ctx context.Context) error {
		order = append(order, "confirm")
		return nil
	})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	want := []string{"aggregator", "confirm"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestCompletionToggleShallowMerge(t *testing.T) {
	m := optimistic.NewMirror(scheduledItem(), nil)

	if err := m.ApplyCompletionToggle(context.Background(), true, nil); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	got := m.Snapshot().Task
	if got.CompletedAt == nil {
		t.Fatal("CompletedAt not set")
	}
	if got.Status != scheduling.StatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
	if got.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %d, want 100", got.ProgressPercent)
	}
	if got.Name != "Setup" {
		t.Errorf("unrelated field dropped: Name = %q", got.Name)
	}
	if got.DurationDays != 3 || !got.StartDate.Equal(date("2024-01-01")) || !got.EndDate.Equal(date("2024-01-03")) {
		t.Errorf("date fields changed: %+v", got)
	}

	// Completion/timestamp invariant holds in the optimistic-pending state.
	if err := got.Validate(); err != nil {
		t.Errorf("invariant broken after toggle: %v", err)
	}
}

func TestCompletionToggleNoTaskIsNoop(t *testing.T) {
	item := scheduledItem()
	item.Task = nil

	var notified, confirmed bool
	m := optimistic.NewMirror(item, func(scheduling.ScheduledItem) { notified = true })

	err := m.ApplyCompletionToggle(context.Background(), true, func(ctx context.Context) error {
		confirmed = true
		return nil
	})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if notified {
		t.Error("aggregator notified for a no-op")
	}
	if confirmed {
		t.Error("confirmation dispatched for a no-op")
	}
}

func TestCrewAssignmentAppliedBeforeConfirmResolves(t *testing.T) {
	m := optimistic.NewMirror(scheduledItem(), nil)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.ApplyCrewAssignment(context.Background(), "c1", &crew.Summary{ID: "c1", Name: "Ana", Type: "photographer"}, func(ctx context.Context) error {
			<-release
			return nil
		})
	}()

	// The local view must reflect the assignment while the confirm is pending.
	deadline := time.After(time.Second)
	for m.Snapshot().CrewMemberID != "c1" {
		select {
		case <-deadline:
			t.Fatal("assignment not visible before confirmation resolved")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("assignment failed: %v", err)
	}
	if got := m.Snapshot().Crew; got == nil || got.Name != "Ana" {
		t.Errorf("summary not applied: %+v", got)
	}
}

func TestRollbackOnRejectedConfirm(t *testing.T) {
	var announced []scheduling.ScheduledItem
	m := optimistic.NewMirror(scheduledItem(), func(item scheduling.ScheduledItem) {
		announced = append(announced, item)
	})

	before := m.Snapshot()
	boom := errors.New("server unavailable")

	err := m.ApplyDateRangeEdit(context.Background(), date("2024-01-01"), date("2024-01-05"), 5, func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rejection not propagated: %v", err)
	}

	after := m.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state not restored:\nbefore %+v\nafter  %+v", before, after)
	}

	// The aggregator saw the optimistic patch and then the restored snapshot.
	if len(announced) != 2 {
		t.Fatalf("announced %d snapshots, want 2", len(announced))
	}
	if announced[0].Task.DurationDays != 5 {
		t.Errorf("first announcement should carry the patch: %+v", announced[0].Task)
	}
	if !reflect.DeepEqual(announced[1], before) {
		t.Errorf("second announcement should restore the pre-patch snapshot")
	}
}

func TestStaleRejectionDoesNotClobberNewerPatch(t *testing.T) {
	m := optimistic.NewMirror(scheduledItem(), nil)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.ApplyDateRangeEdit(context.Background(), date("2024-01-01"), date("2024-01-05"), 5, func(ctx context.Context) error {
			<-release
			return errors.New("rejected")
		})
	}()

	deadline := time.After(time.Second)
	for m.Snapshot().Task.DurationDays != 5 {
		select {
		case <-deadline:
			t.Fatal("first patch never became visible")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A second mutation lands while the first confirmation is in flight.
	if err := m.ApplyCrewAssignment(context.Background(), "c1", &crew.Summary{ID: "c1", Name: "Ana"}, nil); err != nil {
		t.Fatalf("second mutation failed: %v", err)
	}

	close(release)
	err := <-done
	if !errors.Is(err, optimistic.ErrStaleMutation) {
		t.Fatalf("expected ErrStaleMutation, got %v", err)
	}

	// The newer patch survives; the stale rollback did not clobber it.
	got := m.Snapshot()
	if got.CrewMemberID != "c1" {
		t.Errorf("newer assignment clobbered: %+v", got)
	}
	if got.Task.DurationDays != 5 {
		t.Errorf("rejected patch rolled back despite newer mutation: %+v", got.Task)
	}
}

func TestResyncReplacesOnFingerprintChange(t *testing.T) {
	m := optimistic.NewMirror(scheduledItem(), nil)

	// An unconfirmed optimistic patch is standing.
	if err := m.ApplyDateRangeEdit(context.Background(), date("2024-01-01"), date("2024-01-05"), 5, nil); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	// An external actor completed the task; the canonical value supersedes.
	canonical := scheduledItem()
	now := time.Now()
	task := canonical.Task.WithCompletion(true, now)
	canonical.Task = &task

	if !m.Resync(canonical) {
		t.Fatal("resync did not replace on fingerprint change")
	}

	got := m.Snapshot()
	if got.Task.Status != scheduling.StatusCompleted {
		t.Errorf("canonical completion not applied: %+v", got.Task)
	}
	if got.Task.DurationDays != 3 {
		t.Errorf("stale optimistic patch survived resync: %+v", got.Task)
	}
}

func TestResyncNoopOnEqualFingerprint(t *testing.T) {
	m := optimistic.NewMirror(scheduledItem(), nil)

	canonical := scheduledItem()
	canonical.Name = "renamed upstream" // not identity-relevant

	if m.Resync(canonical) {
		t.Error("resync replaced despite equal fingerprint")
	}
}
