package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/logging"
	"github.com/yisikawa/LyricSyncAI/internal/pipeline"
	"github.com/yisikawa/LyricSyncAI/internal/preflight"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/server"
)

// Daemon binds the pipeline manager and HTTP server into a single
// lifecycle with flock-based locking to prevent multiple instances
// sharing one asset root.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *runs.Store
	manager  *pipeline.Manager
	server   *server.Server
	logPath  string
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *runs.Store, logger *slog.Logger, manager *pipeline.Manager, srv *server.Server) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil || srv == nil {
		return nil, errors.New("daemon requires config, store, pipeline manager, and server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "lyricsyncd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		manager:  manager,
		server:   srv,
		logPath:  filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start verifies the environment, acquires the daemon lock, and brings
// up background processing and the HTTP listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	results := preflight.RunAll(ctx, d.cfg)
	for _, result := range results {
		if !result.Passed {
			return fmt.Errorf("preflight %s: %s", result.Name, result.Detail)
		}
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lyricsync daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.manager.Start(d.ctx); err != nil {
		d.releaseOnStartFailure()
		return fmt.Errorf("start pipeline: %w", err)
	}
	if err := d.server.Start(d.ctx); err != nil {
		d.manager.Stop()
		d.releaseOnStartFailure()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("lyricsync daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) releaseOnStartFailure() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.manager.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("lyricsync daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon lifecycle is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath returns the combined daemon log file location.
func (d *Daemon) LogPath() string {
	return d.logPath
}
