package application

import (
	"sync"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

// Totals are the aggregate counts derived from the item snapshots.
type Totals struct {
	Items     int
	Scheduled int
	Completed int
	Pending   int
	Assigned  int
}

// Stats is the parent aggregator: it receives every snapshot the sync
// engine announces and keeps derived counts current without a full reload.
type Stats struct {
	mu    sync.Mutex
	items map[string]scheduling.ScheduledItem
}

func NewStats() *Stats {
	return &Stats{items: make(map[string]scheduling.ScheduledItem)}
}

// Observe ingests a snapshot. It matches the optimistic.Aggregator signature.
func (s *Stats) Observe(item scheduling.ScheduledItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

// Forget drops an item that vanished upstream.
func (s *Stats) Forget(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, itemID)
}

// Totals recomputes the aggregate view from the latest snapshots.
func (s *Stats) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Totals{Items: len(s.items)}
	for _, item := range s.items {
		if item.HasCrew() {
			t.Assigned++
		}
		if !item.HasTask() {
			continue
		}
		t.Scheduled++
		if item.Task.Status == scheduling.StatusCompleted {
			t.Completed++
		} else {
			t.Pending++
		}
	}
	return t
}
