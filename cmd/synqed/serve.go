package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/downloader"
	"github.com/cesargomez89/synqed/internal/httpclient"
	httpapp "github.com/cesargomez89/synqed/internal/http"
	"github.com/cesargomez89/synqed/internal/storage"
	"github.com/cesargomez89/synqed/internal/toolchain"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the download queue and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return runServe(cmd.Context(), ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")
	return cmd
}

func runServe(parent context.Context, c *commandContext) error {
	cfg, log := c.cfg, c.log

	if err := storage.EnsureDir(cfg.DataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Only one process may drive the queue for a data directory.
	lock := flock.New(filepath.Join(cfg.DataDir, constants.LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another synqed instance is already running for %s", cfg.DataDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("Failed to release lock", "error", err)
		}
	}()

	db, err := c.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	settings := c.settings(db)
	client := httpclient.NewClient(nil, 0)
	tools := toolchain.NewManager(cfg.BinDir, cfg.ToolVersions(), client, log)

	for _, st := range tools.Check(settings.YtDlpVersion()) {
		if !st.Available {
			log.Warn("Tool unavailable", "tool", st.Name, "detail", st.Detail, "optional", st.Optional)
		}
	}

	hub := downloader.NewHub(constants.EventBufferSize)
	events := downloader.MultiSink{hub, downloader.SinkFunc(func(ev domain.Event) {
		if ev.Name != domain.EventProgress {
			log.Debug("Event published", "event", ev.Name)
		}
	})}

	queue := downloader.NewQueue(events)
	registry := downloader.NewRegistry()
	supervisor := downloader.NewSupervisor(queue, events, log)

	library := app.NewLibraryService(db, settings, app.NewArtworkFetcher(client), events, log)
	inputs := &app.RunInputs{Settings: settings, Tools: tools}

	worker := downloader.NewWorker(queue, registry, events, supervisor, inputs, library, log)
	worker.Start()
	defer worker.Stop()

	jobs := app.NewJobService(queue, registry, worker, log)
	metadata := app.NewMetadataService(db, settings, tools, log)
	exporter := app.NewPlaylistExporter(db, settings)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	playlists := app.NewPlaylistService(db, exporter, log)
	h := httpapp.NewHandler(jobs, library, metadata, exporter, playlists, settings, hub, tools, log)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr, "library", settings.LibraryPath())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}
