package application_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/atelier/pkg/application"
	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

func newDurationFixture(items ...scheduling.ScheduledItem) (*fakeRepo, *recordingNotifier, *optimistic.Registry, *application.DurationService) {
	repo := newFakeRepo(items...)
	notifier := &recordingNotifier{}
	mirrors := optimistic.NewRegistry(nil)
	svc := application.NewDurationService(repo, events.NewDispatcher(), notifier, mirrors)
	return repo, notifier, mirrors, svc
}

func TestEditorPreviewAndChanged(t *testing.T) {
	_, _, _, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}

	if e.Changed() {
		t.Error("freshly seeded editor must not report a change")
	}
	if got := e.PreviewEnd(); !got.Equal(date("2024-01-03")) {
		t.Errorf("unchanged preview = %s, want canonical end", got.Format("2006-01-02"))
	}

	e.SetDuration(5)
	if !e.Changed() {
		t.Error("edited duration must report a change")
	}
	if got := e.PreviewEnd(); !got.Equal(date("2024-01-05")) {
		t.Errorf("preview = %s, want 2024-01-05", got.Format("2006-01-02"))
	}

	// Back to the canonical value clears the save affordance.
	e.SetDuration(3)
	if e.Changed() {
		t.Error("canonical duration must not report a change")
	}
}

func TestEditorClampsInput(t *testing.T) {
	_, _, _, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}

	e.SetDuration(0)
	if e.Duration() != 1 {
		t.Errorf("Duration() = %d, want 1", e.Duration())
	}
	e.SetDuration(9999)
	if e.Duration() != 365 {
		t.Errorf("Duration() = %d, want 365", e.Duration())
	}
}

func TestEditorSavePersistsConsistentRange(t *testing.T) {
	repo, _, _, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}
	e.SetDuration(5)
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	item, _ := repo.LoadItem("i1")
	task := item.Task
	if task.DurationDays != 5 || !task.EndDate.Equal(date("2024-01-05")) {
		t.Errorf("range not persisted: %+v", task)
	}
	// Duration/date consistency invariant after a successful save.
	if err := task.Validate(); err != nil {
		t.Errorf("invariant broken: %v", err)
	}
	// Unrelated fields preserved.
	if task.Name != "Setup" {
		t.Errorf("task name dropped: %q", task.Name)
	}

	// A saved editor no longer reports a change.
	if e.Changed() {
		t.Error("editor still reports a change after save")
	}
}

func TestEditorSaveRederivesFromFreshAnchor(t *testing.T) {
	repo, _, _, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}
	e.SetDuration(5)
	_ = e.PreviewEnd() // stale preview computed against the old anchor

	// The anchor moves upstream before the save.
	item, _ := repo.LoadItem("i1")
	item.Task.StartDate = date("2024-02-01")
	item.Task.EndDate = date("2024-02-03")
	if err := repo.SaveItem(*item); err != nil {
		t.Fatal(err)
	}

	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved, _ := repo.LoadItem("i1")
	if !saved.Task.EndDate.Equal(date("2024-02-05")) {
		t.Errorf("end = %s, want re-derived 2024-02-05", saved.Task.EndDate.Format("2006-01-02"))
	}
}

func TestEditorSaveRollbackOnRejection(t *testing.T) {
	repo, notifier, mirrors, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	item, _ := repo.LoadItem("i1")
	m := mirrors.Mirror(*item)
	before := m.Snapshot()

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}
	e.SetDuration(5)

	repo.saveErr = errors.New("store unavailable")
	if err := e.Save(context.Background()); err == nil {
		t.Fatal("expected save to fail")
	}

	// The post-failure local state equals the pre-edit snapshot exactly.
	after := m.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("rollback incomplete:\nbefore %+v\nafter  %+v", before, after)
	}
	if errs := notifier.byLevel(application.LevelError); len(errs) == 0 {
		t.Error("expected an error notification")
	}
}

func TestEditorSaveDetectsTaskGone(t *testing.T) {
	repo, _, _, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}
	e.SetDuration(5)

	// Another actor deletes the task before the save.
	item, _ := repo.LoadItem("i1")
	item.Task = nil
	if err := repo.SaveItem(*item); err != nil {
		t.Fatal(err)
	}

	if err := e.Save(context.Background()); err == nil {
		t.Error("expected save to fail for a detached task")
	}
}

func TestEditorReseedOnIdentityChange(t *testing.T) {
	_, _, _, svc := newDurationFixture(pendingItem("i1", "t1", ""))

	e, err := svc.Editor("i1")
	if err != nil {
		t.Fatalf("editor failed: %v", err)
	}
	e.SetDuration(7)

	// Same identity: the local edit survives a canonical observation.
	e.Reseed(scheduling.SchedulerTask{ID: "t1", StartDate: date("2024-01-01"), EndDate: date("2024-01-03"), DurationDays: 3})
	if e.Duration() != 7 {
		t.Errorf("edit lost on same-identity reseed: %d", e.Duration())
	}

	// New identity: the editor reseeds from the new canonical task.
	e.Reseed(scheduling.SchedulerTask{ID: "t2", StartDate: date("2024-05-01"), EndDate: date("2024-05-02"), DurationDays: 2})
	if e.Duration() != 2 || e.Changed() {
		t.Errorf("reseed incomplete: duration=%d changed=%v", e.Duration(), e.Changed())
	}

	if _, err := svc.Editor("missing"); err == nil {
		t.Error("expected error for unknown item")
	}
}
