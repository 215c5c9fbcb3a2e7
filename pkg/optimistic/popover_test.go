package optimistic_test

import (
	"testing"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

func TestPopoverClosesOnTaskLoss(t *testing.T) {
	item := scheduledItem()
	p := optimistic.NewPopoverController(item)
	p.Open()

	// Same item, task deleted by another actor.
	gone := item.Clone()
	gone.Task = nil
	p.Observe(gone)

	if p.IsOpen() {
		t.Error("popover still open after task disappeared")
	}
}

func TestPopoverIgnoresOtherItems(t *testing.T) {
	item := scheduledItem()
	p := optimistic.NewPopoverController(item)
	p.Open()

	other := scheduling.ScheduledItem{ID: "i2"}
	p.Observe(other)

	if !p.IsOpen() {
		t.Error("popover closed by an unrelated item")
	}
}

func TestPopoverStaysOpenWhileTaskPresent(t *testing.T) {
	item := scheduledItem()
	p := optimistic.NewPopoverController(item)
	p.Open()

	p.Observe(item)
	if !p.IsOpen() {
		t.Error("popover closed despite the task being present")
	}
}

func TestPopoverNoReopenOnTaskReturn(t *testing.T) {
	item := scheduledItem()
	p := optimistic.NewPopoverController(item)
	p.Open()

	gone := item.Clone()
	gone.Task = nil
	p.Observe(gone)
	p.Observe(item) // task re-attached later

	if p.IsOpen() {
		t.Error("popover reopened on task return")
	}
}

func TestPopoverClosesWhenItemVanishes(t *testing.T) {
	item := scheduledItem()
	p := optimistic.NewPopoverController(item)
	p.Open()

	p.ObserveGone(item.ID)
	if p.IsOpen() {
		t.Error("popover still open after item vanished")
	}
}
