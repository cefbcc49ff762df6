package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/pipeline"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/server"
	"github.com/yisikawa/LyricSyncAI/internal/services/demucs"
)

type noopExtractor struct{}

func (noopExtractor) Extract(_ context.Context, _, destPath string) error {
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

type noopSeparator struct{}

func (noopSeparator) Separate(_ context.Context, _ string, separatedDir, stem string) (demucs.Result, error) {
	result := demucs.Result{
		VocalsPath:       filepath.Join(separatedDir, stem+"_vocals.wav"),
		InstrumentalPath: filepath.Join(separatedDir, stem+"_no_vocals.wav"),
	}
	return result, nil
}

type noopConverter struct{}

func (noopConverter) Configured() bool { return false }

func (noopConverter) Convert(context.Context, string, string) error { return nil }

func newTestDaemon(t *testing.T) (*Daemon, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.AssetRoot = root
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	store, err := runs.Open(cfg.Paths.LogDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	manager := pipeline.NewManager(&cfg, store, nil, noopExtractor{}, noopSeparator{}, noopConverter{})
	srv := server.New(&cfg, store, nil, manager, nil, noopSeparator{}, noopExtractor{}, nil, nil)

	d, err := New(&cfg, store, nil, manager, srv)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, &cfg
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("expected running daemon after Start")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start must fail while running")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected stopped daemon after Stop")
	}
}

func TestDaemonLockRejectsSecondInstance(t *testing.T) {
	first, cfg := newTestDaemon(t)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	store, err := runs.Open(filepath.Join(cfg.Paths.AssetRoot, "second"))
	if err != nil {
		t.Fatalf("open second store: %v", err)
	}
	defer store.Close()

	manager := pipeline.NewManager(cfg, store, nil, noopExtractor{}, noopSeparator{}, noopConverter{})
	srv := server.New(cfg, store, nil, manager, nil, noopSeparator{}, noopExtractor{}, nil, nil)
	second, err := New(cfg, store, nil, manager, srv)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = second.Start(ctx)
	if err == nil {
		second.Stop()
		t.Fatal("second instance must not acquire the lock")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
