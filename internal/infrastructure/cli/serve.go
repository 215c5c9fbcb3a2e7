package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/internal/infrastructure/realtime"
	"github.com/felixgeelhaar/atelier/internal/infrastructure/watch"
	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/felixgeelhaar/atelier/pkg/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live item snapshots over HTTP and websocket",
	Long: `Starts an HTTP server exposing the canonical items as JSON and a
websocket feed of live updates. The workspace store is watched so
edits made by other processes are broadcast to connected clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		addr := serveAddr
		if addr == "" {
			addr = services.Config.ListenAddr
		}

		hub := realtime.NewHub()
		defer hub.Close()

		// In-process mutations broadcast through the dispatcher; external
		// edits arrive via the store watcher below.
		services.Dispatcher.RegisterWildcard("realtime", func(ctx context.Context, event events.DomainEvent) error {
			if m, ok := services.Mirrors.Get(event.AggregateID()); ok {
				hub.BroadcastItem(m.Snapshot())
			}
			return nil
		})

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(services.Mirrors.Snapshots())
		})
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		watcher := watch.NewStoreWatcher(services.Repo, services.Mirrors,
			func(report watch.ResyncReport) {
				present := make(map[string]bool, len(report.Items))
				for _, item := range report.Items {
					present[item.ID] = true
				}
				for _, id := range report.Changed {
					if !present[id] {
						services.Stats.Forget(id)
						hub.BroadcastRemoval(id)
						continue
					}
					if m, ok := services.Mirrors.Get(id); ok {
						hub.BroadcastItem(m.Snapshot())
					}
				}
			},
			func(err error) {
				fmt.Fprintln(os.Stderr, warningStyle.Render("resync failed:"), err)
			})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		itemsPath := filepath.Join(services.Repo.Root(), storage.AtelierDir, storage.ItemsFile)
		go func() {
			if err := watcher.Run(ctx, itemsPath); err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintln(os.Stderr, warningStyle.Render("watcher stopped:"), err)
			}
		}()

		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Println(infoStyle.Render("Serving on " + addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to workspace config)")
	RootCmd.AddCommand(serveCmd)
}
