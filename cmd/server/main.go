package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confsched/companion/internal/api"
	"github.com/confsched/companion/internal/auth"
	"github.com/confsched/companion/internal/config"
	"github.com/confsched/companion/internal/favorites"
	httpserver "github.com/confsched/companion/internal/http"
	"github.com/confsched/companion/internal/schedule"
	"github.com/confsched/companion/internal/store"
)

func main() {
	log.Println("Starting schedule companion...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Favorites storage: Postgres when a DSN is configured, otherwise a
	// per-event JSON file under the state directory.
	var storage favorites.Storage
	var health httpserver.HealthChecker
	if cfg.DB.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("failed to create db pool: %v", err)
		}
		defer pool.Close()

		if err := store.ApplyMigrations(ctx, pool); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}

		stor := store.New(pool)
		storage = stor.Favorites
		health = stor
	} else {
		fileStorage, err := favorites.NewFileStorage(cfg.StateDir)
		if err != nil {
			log.Fatalf("failed to open favorites storage: %v", err)
		}
		storage = fileStorage
	}

	var remote favorites.Merger
	if cfg.Upstream.MergeURL != "" {
		remote = favorites.NewRemoteClient(cfg.Upstream.MergeURL, cfg.Upstream.Token)
	}

	favKey := favorites.StorageKey(cfg.Event.Slug, cfg.Event.BasePath)
	favService := favorites.NewService(storage, remote, favKey)
	if err := favService.Load(ctx); err != nil {
		log.Fatalf("failed to load favorites: %v", err)
	}
	if favService.Authenticated() {
		if err := favService.MergeWithRemote(ctx); err != nil {
			// Favorites keep working locally; reconciliation retries on demand.
			log.Printf("[WARN] initial favorites merge failed: %v", err)
		}
	}

	var verifier *auth.Verifier
	if cfg.OIDC.IssuerURL != "" {
		verifier, err = auth.NewVerifier(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID)
		if err != nil {
			log.Fatalf("failed to initialize oidc verifier: %v", err)
		}
	}

	fetcher := schedule.NewFetcher(cfg.Schedule.URL, cfg.Schedule.SnapshotFile)
	manager := schedule.NewManager(fetcher, cfg.Location())
	if err := manager.Refresh(ctx); err != nil {
		// First load may legitimately race the backend; the API exposes the
		// load-error flag until a refresh succeeds.
		log.Printf("[WARN] initial schedule fetch failed: %v", err)
	}
	if err := manager.StartPeriodicRefresh(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("failed to start periodic refresh: %v", err)
	}
	defer manager.StopPeriodicRefresh()

	handler := api.NewHandler(cfg, manager, favService)
	r := httpserver.NewRouter(cfg, handler, verifier, health)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
