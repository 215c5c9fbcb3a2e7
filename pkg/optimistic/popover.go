package optimistic

import (
	"sync"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

// PopoverController auto-closes contextual UI when the task it refers to is
// deleted by another actor while the UI is open. It is a pure edge detector:
// it compares task presence between consecutive canonical observations of
// the same item identity and reacts only to a present -> absent transition.
type PopoverController struct {
	mu      sync.Mutex
	itemID  string
	open    bool
	hadTask bool
}

// NewPopoverController seeds the detector from the item's current render.
func NewPopoverController(item scheduling.ScheduledItem) *PopoverController {
	return &PopoverController{
		itemID:  item.ID,
		hadTask: item.HasTask(),
	}
}

func (p *PopoverController) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
}

func (p *PopoverController) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

func (p *PopoverController) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Observe feeds a canonical render of the item. Observations for other item
// identities are ignored.
func (p *PopoverController) Observe(item scheduling.ScheduledItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if item.ID != p.itemID {
		return
	}

	has := item.HasTask()
	if p.hadTask && !has {
		p.open = false
	}
	p.hadTask = has
}

// ObserveGone handles the item itself disappearing upstream, which implies
// its task is gone too.
func (p *PopoverController) ObserveGone(itemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if itemID != p.itemID {
		return
	}

	if p.hadTask {
		p.open = false
	}
	p.hadTask = false
}
