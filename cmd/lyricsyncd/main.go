package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/daemon"
	"github.com/yisikawa/LyricSyncAI/internal/logging"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
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

	logger, err := logging.NewForDirs(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := runs.Open(cfg.Paths.LogDir)
	if err != nil {
		logger.Error("open run store", logging.Error(err))
		return
	}

	d, registry, err := daemon.Bootstrap(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer registry.Close()
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("lyricsyncd shutting down")
}
