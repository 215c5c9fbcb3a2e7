package optimistic

import (
	"sort"
	"sync"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

// Registry owns one mirror per item identity. Every canonical observation
// flows through it, so existing mirrors are resynced whenever the upstream
// fingerprint changed.
type Registry struct {
	mu      sync.Mutex
	mirrors map[string]*Mirror
	notify  Aggregator
}

func NewRegistry(notify Aggregator) *Registry {
	return &Registry{
		mirrors: make(map[string]*Mirror),
		notify:  notify,
	}
}

// Mirror returns the mirror for the item, creating it on first observation.
// An existing mirror is resynced against the supplied canonical value.
func (r *Registry) Mirror(canonical scheduling.ScheduledItem) *Mirror {
	r.mu.Lock()
	m, ok := r.mirrors[canonical.ID]
	if !ok {
		m = NewMirror(canonical, r.notify)
		r.mirrors[canonical.ID] = m
	}
	r.mu.Unlock()

	if ok {
		m.Resync(canonical)
	}
	return m
}

// Get returns the mirror for an item id without creating or resyncing one.
func (r *Registry) Get(itemID string) (*Mirror, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mirrors[itemID]
	return m, ok
}

// ResyncAll reconciles every mirror against a full canonical snapshot and
// drops mirrors whose items vanished upstream. It returns the ids of items
// whose mirrors were replaced or removed.
func (r *Registry) ResyncAll(canonical []scheduling.ScheduledItem) []string {
	byID := make(map[string]scheduling.ScheduledItem, len(canonical))
	for _, item := range canonical {
		byID[item.ID] = item
	}

	var changed []string

	r.mu.Lock()
	mirrors := make(map[string]*Mirror, len(r.mirrors))
	for id, m := range r.mirrors {
		if _, ok := byID[id]; !ok {
			delete(r.mirrors, id)
			changed = append(changed, id)
			continue
		}
		mirrors[id] = m
	}
	r.mu.Unlock()

	for id, m := range mirrors {
		if item, ok := byID[id]; ok && m.Resync(item) {
			changed = append(changed, id)
		}
	}

	sort.Strings(changed)
	return changed
}

// Snapshots returns the current local view of every mirror, ordered by id.
func (r *Registry) Snapshots() []scheduling.ScheduledItem {
	r.mu.Lock()
	mirrors := make([]*Mirror, 0, len(r.mirrors))
	for _, m := range r.mirrors {
		mirrors = append(mirrors, m)
	}
	r.mu.Unlock()

	items := make([]scheduling.ScheduledItem, 0, len(mirrors))
	for _, m := range mirrors {
		items = append(items, m.Snapshot())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
