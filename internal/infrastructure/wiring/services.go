// Package wiring assembles the application services from a workspace root.
package wiring

import (
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/atelier/internal/infrastructure/payroll"
	"github.com/felixgeelhaar/atelier/pkg/application"
	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/optimistic"
	"github.com/felixgeelhaar/atelier/pkg/storage"
)

// AppServices bundles everything a command needs to operate on a workspace.
type AppServices struct {
	Repo       *storage.FilesystemRepository
	Config     *storage.WorkspaceConfig
	Ledger     *payroll.SQLiteLedger
	Dispatcher *events.Dispatcher
	EventStore *storage.FileEventStore
	Stats      *application.Stats
	Mirrors    *optimistic.Registry

	Schedule   *application.ScheduleService
	Assignment *application.AssignmentService
	Duration   *application.DurationService

	closers []func() error
}

// Close releases held resources such as the ledger database.
func (s *AppServices) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BuildAppServices wires the full service graph for an initialized workspace:
// filesystem store, SQLite payroll ledger, event dispatcher with the JSONL
// event log attached, and the mirror registry feeding the stats aggregator.
func BuildAppServices(root string, notifier application.Notifier) (*AppServices, error) {
	repo := storage.NewFilesystemRepository(root)
	if !repo.IsInitialized() {
		return nil, fmt.Errorf("no workspace found at %s (run `atelier init` first)", root)
	}

	cfg, err := repo.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading workspace config: %w", err)
	}

	db, err := payroll.OpenDB(filepath.Join(root, storage.AtelierDir, storage.PayrollDBFile))
	if err != nil {
		return nil, fmt.Errorf("opening payroll ledger: %w", err)
	}
	ledger := payroll.NewSQLiteLedger(db)

	eventStore := storage.NewFileEventStore(root)
	dispatcher := events.NewDispatcher()
	dispatcher.ContinueOnError = true
	dispatcher.RegisterWildcard("event-log", eventStore.Handler())

	stats := application.NewStats()
	mirrors := optimistic.NewRegistry(stats.Observe)

	if notifier == nil {
		notifier = application.NopNotifier{}
	}

	svcs := &AppServices{
		Repo:       repo,
		Config:     cfg,
		Ledger:     ledger,
		Dispatcher: dispatcher,
		EventStore: eventStore,
		Stats:      stats,
		Mirrors:    mirrors,
		Schedule:   application.NewScheduleService(repo, repo, ledger, dispatcher, notifier, mirrors),
		Assignment: application.NewAssignmentService(repo, repo, dispatcher, notifier, mirrors),
		Duration:   application.NewDurationService(repo, dispatcher, notifier, mirrors),
		closers:    []func() error{db.Close},
	}

	// Seed mirrors so stats reflect the canonical store from the start.
	items, err := repo.LoadItems()
	if err != nil {
		svcs.Close()
		return nil, fmt.Errorf("loading items: %w", err)
	}
	for _, item := range items {
		mirrors.Mirror(item)
	}

	return svcs, nil
}
