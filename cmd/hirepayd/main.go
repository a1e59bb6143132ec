package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hirepay/internal/config"
	"hirepay/internal/daemon"
	"hirepay/internal/docgen"
	"hirepay/internal/logging"
	"hirepay/internal/procedure"
	"hirepay/internal/scope"
	"hirepay/internal/storage"
	"hirepay/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := procedure.Open(cfg)
	if err != nil {
		logger.Error("open procedure store", "error", err)
		os.Exit(1)
	}

	blobs, err := storage.New(cfg.Paths.StorageDir)
	if err != nil {
		logger.Error("open document storage", "error", err)
		os.Exit(1)
	}

	svc := workflow.NewService(cfg, store, blobs, docgen.New(), logger)
	scopes := scope.NewStore(store.DB())

	d, err := daemon.New(cfg, store, svc, scopes, logger)
	if err != nil {
		logger.Error("create daemon", "error", err)
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("hirepayd shutting down")
}
