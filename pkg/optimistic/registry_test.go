package optimistic_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := optimistic.NewRegistry(nil)

	item := scheduledItem()
	m1 := r.Mirror(item)
	m2 := r.Mirror(item)
	if m1 != m2 {
		t.Error("registry created two mirrors for one identity")
	}

	if _, ok := r.Get("i1"); !ok {
		t.Error("Get missed an existing mirror")
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("Get found a mirror that should not exist")
	}
}

func TestRegistryResyncsExistingMirrorOnObservation(t *testing.T) {
	r := optimistic.NewRegistry(nil)

	m := r.Mirror(scheduledItem())
	if err := m.ApplyDateRangeEdit(context.Background(), date("2024-01-01"), date("2024-01-05"), 5, nil); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	// A fresh canonical observation with a different fingerprint replaces
	// the standing optimistic patch.
	canonical := scheduledItem()
	canonical.CrewMemberID = "c1"
	r.Mirror(canonical)

	got := m.Snapshot()
	if got.CrewMemberID != "c1" {
		t.Errorf("canonical assignment not applied: %+v", got)
	}
	if got.Task.DurationDays != 3 {
		t.Errorf("replace was not wholesale, stale patch survived: %+v", got.Task)
	}
}

func TestRegistryResyncAllDropsVanished(t *testing.T) {
	r := optimistic.NewRegistry(nil)

	a := scheduledItem()
	b := scheduledItem()
	b.ID = "i2"
	b.Task.ID = "t2"
	r.Mirror(a)
	r.Mirror(b)

	changed := r.ResyncAll([]scheduling.ScheduledItem{a})
	if !reflect.DeepEqual(changed, []string{"i2"}) {
		t.Errorf("changed = %v, want [i2]", changed)
	}
	if _, ok := r.Get("i2"); ok {
		t.Error("vanished item still mirrored")
	}

	snaps := r.Snapshots()
	if len(snaps) != 1 || snaps[0].ID != "i1" {
		t.Errorf("snapshots = %+v", snaps)
	}
}
