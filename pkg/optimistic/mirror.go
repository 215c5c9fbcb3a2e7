// Package optimistic keeps per-item local mirrors of canonical scheduled
// items. A mutation is applied to the mirror and announced to the aggregator
// before the authoritative server confirmation is dispatched, so the UI
// reflects it immediately; a rejected confirmation rolls the mirror back to
// the pre-patch snapshot.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

// ErrStaleMutation is returned when a rejected confirmation cannot be rolled
// back because a newer patch landed on the mirror while it was in flight.
// The mirror is left as-is; the next canonical resync reconciles it.
var ErrStaleMutation = errors.New("optimistic patch superseded by a newer mutation")

// Aggregator receives every locally applied snapshot so parent views
// (dashboard stats, sibling rows) stay in sync within the same tick.
type Aggregator func(item scheduling.ScheduledItem)

// ConfirmFunc performs the authoritative server mutation for a patch.
type ConfirmFunc func(ctx context.Context) error

// Mirror is the optimistic local view of one canonical item. The version
// counter increases on every replacement of the cell, which lets an
// in-flight confirmation detect that it has been overtaken.
type Mirror struct {
	mu      sync.Mutex
	item    scheduling.ScheduledItem
	version uint64
	notify  Aggregator
	now     func() time.Time
}

// NewMirror creates a mirror seeded from the canonical item.
func NewMirror(canonical scheduling.ScheduledItem, notify Aggregator) *Mirror {
	return &Mirror{
		item:   canonical.Clone(),
		notify: notify,
		now:    time.Now,
	}
}

// Snapshot returns a copy of the current local view.
func (m *Mirror) Snapshot() scheduling.ScheduledItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.item.Clone()
}

// Version returns the mirror's current version counter.
func (m *Mirror) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// ItemID returns the identity of the mirrored item.
func (m *Mirror) ItemID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.item.ID
}

// applyPatch is the single optimistic mutation path. It computes the next
// snapshot from the current one under the lock (never from a stale capture),
// announces it to the aggregator, then dispatches the confirmation. On
// rejection the pre-patch snapshot is restored and re-announced, unless a
// newer patch has landed in the meantime, in which case ErrStaleMutation is
// joined onto the rejection instead of clobbering that patch.
func (m *Mirror) applyPatch(ctx context.Context, compute func(scheduling.ScheduledItem) (scheduling.ScheduledItem, bool), confirm ConfirmFunc) error {
	m.mu.Lock()
	prev := m.item
	next, ok := compute(m.item.Clone())
	if !ok {
		m.mu.Unlock()
		return nil
	}
	m.item = next
	m.version++
	captured := m.version
	m.mu.Unlock()

	m.announce(next)

	if confirm == nil {
		return nil
	}

	if err := confirm(ctx); err != nil {
		m.mu.Lock()
		if m.version != captured {
			m.mu.Unlock()
			return errors.Join(ErrStaleMutation, err)
		}
		m.item = prev
		m.version++
		m.mu.Unlock()

		m.announce(prev)
		return fmt.Errorf("mutation rejected: %w", err)
	}

	return nil
}

func (m *Mirror) announce(item scheduling.ScheduledItem) {
	if m.notify != nil {
		m.notify(item.Clone())
	}
}

// ApplyCrewAssignment applies a crew assignment (or clears it with an empty
// id) locally, announces it, then awaits the confirmation.
func (m *Mirror) ApplyCrewAssignment(ctx context.Context, memberID string, summary *crew.Summary, confirm ConfirmFunc) error {
	return m.applyPatch(ctx, func(cur scheduling.ScheduledItem) (scheduling.ScheduledItem, bool) {
		return cur.WithCrew(memberID, summary), true
	}, confirm)
}

// ApplyCompletionToggle derives the new completion state for the attached
// task, preserving all unrelated task fields. No-op when the item has no
// attached task: nothing is announced and the confirmation is not dispatched.
func (m *Mirror) ApplyCompletionToggle(ctx context.Context, completed bool, confirm ConfirmFunc) error {
	return m.applyPatch(ctx, func(cur scheduling.ScheduledItem) (scheduling.ScheduledItem, bool) {
		if cur.Task == nil {
			return cur, false
		}
		task := cur.Task.WithCompletion(completed, m.now())
		cur.Task = &task
		return cur, true
	}, confirm)
}

// ApplyDateRangeEdit replaces the task's date range, preserving all other
// task fields. No-op when the item has no attached task.
func (m *Mirror) ApplyDateRangeEdit(ctx context.Context, start, end time.Time, durationDays int, confirm ConfirmFunc) error {
	return m.applyPatch(ctx, func(cur scheduling.ScheduledItem) (scheduling.ScheduledItem, bool) {
		if cur.Task == nil {
			return cur, false
		}
		task := cur.Task.WithDates(start, end, durationDays)
		cur.Task = &task
		return cur, true
	}, confirm)
}

// Resync replaces the local view wholesale with the canonical item when the
// identity-relevant fingerprints differ, discarding any stale optimistic
// patch that was not itself the cause of the new canonical value. It reports
// whether a replacement happened.
func (m *Mirror) Resync(canonical scheduling.ScheduledItem) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if scheduling.FingerprintOf(m.item) == scheduling.FingerprintOf(canonical) {
		return false
	}

	m.item = canonical.Clone()
	m.version++
	return true
}
