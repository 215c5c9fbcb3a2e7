// Package watch reconciles in-memory mirrors with external edits to the
// workspace store.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
)

const defaultSettle = 300 * time.Millisecond

// ResyncReport describes the outcome of one reconciliation pass.
type ResyncReport struct {
	Changed []string
	Items   []scheduling.ScheduledItem
}

// StoreWatcher watches the workspace items file and resyncs the mirror
// registry whenever another process rewrites it. Bursts of writes are
// coalesced so one save produces one resync.
type StoreWatcher struct {
	repo     scheduling.ItemRepository
	registry *optimistic.Registry
	settle   time.Duration
	onResync func(ResyncReport)
	onError  func(error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewStoreWatcher builds a watcher over the given repository and registry.
// onResync receives the ids whose mirrors changed; onError receives resync
// failures. Either callback may be nil.
func NewStoreWatcher(repo scheduling.ItemRepository, registry *optimistic.Registry, onResync func(ResyncReport), onError func(error)) *StoreWatcher {
	return &StoreWatcher{
		repo:     repo,
		registry: registry,
		settle:   defaultSettle,
		onResync: onResync,
		onError:  onError,
	}
}

// Run watches the directory containing itemsPath until the context is
// cancelled. The parent directory is watched rather than the file itself so
// atomic rename-into-place saves keep being observed.
func (w *StoreWatcher) Run(ctx context.Context, itemsPath string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()
	defer w.stopTimer()

	dir := filepath.Dir(itemsPath)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(itemsPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.scheduleResync()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *StoreWatcher) scheduleResync() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, w.Resync)
}

func (w *StoreWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

// Resync reloads the canonical store and reconciles every mirror against it.
// Mirrors whose items vanished are dropped; mirrors whose fingerprints differ
// are replaced wholesale.
func (w *StoreWatcher) Resync() {
	items, err := w.repo.LoadItems()
	if err != nil {
		if w.onError != nil {
			w.onError(fmt.Errorf("reloading items: %w", err))
		}
		return
	}

	changed := w.registry.ResyncAll(items)
	if len(changed) == 0 {
		return
	}
	if w.onResync != nil {
		w.onResync(ResyncReport{Changed: changed, Items: items})
	}
}
