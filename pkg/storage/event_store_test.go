package storage_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/storage"
)

func TestEventStoreAppendAndLoad(t *testing.T) {
	store := storage.NewFileEventStore(t.TempDir())

	ev := events.TaskCompleted{
		BaseEvent:   events.NewBase(events.TypeTaskCompleted, "i1"),
		TaskID:      "t1",
		MemberID:    "c1",
		SkipPayroll: true,
	}
	if err := store.Append(ev); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.Append(events.TaskReopened{BaseEvent: events.NewBase(events.TypeTaskReopened, "i1"), TaskID: "t1"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d events, want 2", len(loaded))
	}
	if loaded[0].Type != events.TypeTaskCompleted || loaded[0].AggregateID != "i1" {
		t.Errorf("first event = %+v", loaded[0])
	}
	if loaded[0].ID == "" {
		t.Error("event id not assigned")
	}
	if loaded[1].Type != events.TypeTaskReopened {
		t.Errorf("second event = %+v", loaded[1])
	}
}

func TestEventStoreLoadMissingFile(t *testing.T) {
	store := storage.NewFileEventStore(t.TempDir())

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty log, got %d", len(loaded))
	}
}

func TestEventStoreAsDispatcherHandler(t *testing.T) {
	store := storage.NewFileEventStore(t.TempDir())

	d := events.NewDispatcher()
	d.RegisterWildcard("event-log", store.Handler())

	if err := d.Dispatch(context.Background(), events.CrewAssigned{
		BaseEvent: events.NewBase(events.TypeCrewAssigned, "i1"),
		MemberID:  "c1",
	}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Type != events.TypeCrewAssigned {
		t.Errorf("loaded = %+v", loaded)
	}
}
