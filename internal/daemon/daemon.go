// Package daemon runs the hirepay background process: it enforces
// single-instance execution and serves the HTTP API over the workflow
// service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"hirepay/internal/config"
	"hirepay/internal/procedure"
	"hirepay/internal/scope"
	"hirepay/internal/workflow"
)

type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *procedure.Store
	service  *workflow.Service
	scopes   *scope.Store
	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running    bool
	PID        int
	APIBind    string
	Procedures int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *procedure.Store, svc *workflow.Service, scopes *scope.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || svc == nil || scopes == nil {
		return nil, errors.New("daemon requires config, store, workflow service, and scope store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	lockPath := cfg.LockFilePath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		service:  svc,
		scopes:   scopes,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving the API. It returns once
// the listener is up; ctx cancellation triggers shutdown.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another hirepay daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("hirepay daemon started", "lock", d.lockPath, "bind", d.api.addr())
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", "error", err)
	}
	d.running.Store(false)
	d.logger.Info("hirepay daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports runtime information for the status endpoint and CLI.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running: d.running.Load(),
		PID:     os.Getpid(),
		APIBind: d.cfg.Paths.APIBind,
	}
	if procs, err := d.store.ListProcedures(ctx); err == nil {
		status.Procedures = len(procs)
	}
	return status
}

// Addr returns the bound API address, valid after Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}
