package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	bboltstorage "github.com/gofiber/storage/bbolt/v2"

	"contentops/internal/config"
	"contentops/internal/diff"
	"contentops/internal/email"
	"contentops/internal/metrics"
	"contentops/internal/review"
	"contentops/internal/server"
	"contentops/internal/session"
	"contentops/internal/store"
	"contentops/internal/workflow"
)

func main() {
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	metrics.Register()

	// Local fallback store; always available.
	kv := bboltstorage.New(bboltstorage.Config{
		Database: cfg.FallbackDBPath,
		Bucket:   "contentops",
	})
	local := store.NewLocal(kv)

	// Remote store, when configured.
	var remote *store.Postgres
	if cfg.HasRemoteStore() {
		ctx := context.Background()
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to remote store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()

		if err := pg.RunMigrations(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations completed")
		remote = pg
	} else {
		slog.Info("no remote store configured, running on local store only")
	}

	// A typed-nil backend would defeat the façade's nil check, so only
	// assign when the remote store is actually configured.
	var remoteBackend store.Backend
	if remote != nil {
		remoteBackend = remote
	}
	dual := store.New(remoteBackend, local)

	machine := review.New(dual, review.Options{
		AllowReopen:           cfg.ReviewAllowReopen,
		AllowResolvedComments: cfg.ReviewAllowResolvedComments,
	})

	notifier := email.NewNotifier(cfg)

	engine := workflow.New(session.NewTracker(), diff.New(), dual, machine, local, notifier)

	srv := server.New(cfg)
	srv.RegisterRoutes(engine, remote)

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}
