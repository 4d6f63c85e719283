package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/cisspprep/internal/api"
	"github.com/vytor/cisspprep/internal/config"
	"github.com/vytor/cisspprep/internal/logger"
	"github.com/vytor/cisspprep/internal/progress"
	"github.com/vytor/cisspprep/internal/question"
	"github.com/vytor/cisspprep/internal/selector"
	"github.com/vytor/cisspprep/internal/storage"
	"github.com/vytor/cisspprep/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run holds the server lifecycle so deferred cleanup always executes; main
// translates its error into the exit code.
func run() error {
	cfg := config.Load()

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		return err
	}

	log.Info("===========================================")
	log.Info("CISSP Prep Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("storage_backend=%s", cfg.StorageBackend)
	log.Debug("storage_path=%s", cfg.StoragePath)
	log.Debug("log_level=%s", cfg.LogLevel)

	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to open storage: %v", err)
		return err
	}
	defer func() {
		log.Debug("closing storage")
		store.Close()
	}()

	questions := question.NewStore(question.NewFileSource(cfg.DataDir))
	seen := tracker.New(store)

	srv := &api.Server{
		Questions: questions,
		Selector:  selector.New(questions, seen),
		Tracker:   seen,
		Progress:  progress.New(store),
	}

	// Warm the corpus cache so the first quiz request does not pay for it.
	if n, err := questions.Count(context.Background()); err != nil {
		log.Warn("question corpus not loadable at startup: %v", err)
	} else {
		log.Info("question corpus ready: %d questions", n)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serverErr:
		log.Error("HTTP server error: %v", err)
		runErr = err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("CISSP Prep Server Stopped")
	log.Info("===========================================")
	return runErr
}

func openStorage(cfg config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "file":
		return storage.NewFileStore(cfg.StoragePath)
	default:
		return storage.OpenSQLite(cfg.StoragePath)
	}
}
