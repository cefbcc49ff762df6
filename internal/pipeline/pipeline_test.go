package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services"
	"github.com/yisikawa/LyricSyncAI/internal/services/demucs"
)

type fakeExtractor struct {
	calls int
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, _, destPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

type fakeSeparator struct {
	calls int
	err   error
}

func (f *fakeSeparator) Separate(_ context.Context, _, separatedDir, stem string) (demucs.Result, error) {
	f.calls++
	if f.err != nil {
		return demucs.Result{}, f.err
	}
	result := demucs.Result{
		VocalsPath:       filepath.Join(separatedDir, stem+"_vocals.wav"),
		InstrumentalPath: filepath.Join(separatedDir, stem+"_no_vocals.wav"),
	}
	if err := os.WriteFile(result.VocalsPath, []byte("vocals"), 0o644); err != nil {
		return demucs.Result{}, err
	}
	if err := os.WriteFile(result.InstrumentalPath, []byte("inst"), 0o644); err != nil {
		return demucs.Result{}, err
	}
	return result, nil
}

type fakeConverter struct {
	configured bool
	calls      int
	err        error
}

func (f *fakeConverter) Configured() bool { return f.configured }

func (f *fakeConverter) Convert(_ context.Context, _, destPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("cover"), 0o644)
}

type testEnv struct {
	cfg       *config.Config
	store     *runs.Store
	extractor *fakeExtractor
	separator *fakeSeparator
	converter *fakeConverter
	manager   *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.AssetRoot = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	store, err := runs.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		cfg:       &cfg,
		store:     store,
		extractor: &fakeExtractor{},
		separator: &fakeSeparator{},
		converter: &fakeConverter{configured: true},
	}
	env.manager = NewManager(&cfg, store, nil, env.extractor, env.separator, env.converter)
	return env
}

func (e *testEnv) newRun(t *testing.T, assetName string) *runs.Run {
	t.Helper()
	source := filepath.Join(e.cfg.Paths.AssetRoot, assetName)
	if err := os.WriteFile(source, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	stem := assetName[:len(assetName)-len(filepath.Ext(assetName))]
	run, err := e.store.NewRun(context.Background(), assetName, stem)
	if err != nil {
		t.Fatal(err)
	}
	return run
}

func TestProcessCompletesAllStages(t *testing.T) {
	env := newTestEnv(t)
	run := env.newRun(t, "song.mp4")

	if err := env.manager.Process(context.Background(), run); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if run.Status != runs.StatusReady {
		t.Fatalf("expected ready, got %s", run.Status)
	}
	if run.ConversionOutcome != runs.ConversionApplied {
		t.Fatalf("expected conversion applied, got %q (%s)", run.ConversionOutcome, run.ConversionDetail)
	}
	if env.extractor.calls != 1 || env.separator.calls != 1 || env.converter.calls != 1 {
		t.Fatalf("unexpected call counts: %d/%d/%d", env.extractor.calls, env.separator.calls, env.converter.calls)
	}

	artifacts, err := env.store.ArtifactsForStem(context.Background(), "song")
	if err != nil {
		t.Fatal(err)
	}
	kinds := make(map[string]bool, len(artifacts))
	for _, artifact := range artifacts {
		kinds[artifact.Kind] = true
	}
	for _, kind := range []string{runs.ArtifactAudio, runs.ArtifactVocals, runs.ArtifactInstrumental, runs.ArtifactAICover} {
		if !kinds[kind] {
			t.Errorf("missing artifact %s", kind)
		}
	}
}

func TestProcessConversionFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(t)
	env.converter.err = errors.New("CUDA out of memory")
	run := env.newRun(t, "song.mp4")

	if err := env.manager.Process(context.Background(), run); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if run.Status != runs.StatusReady {
		t.Fatalf("expected ready despite conversion failure, got %s", run.Status)
	}
	if run.ConversionOutcome != runs.ConversionSkipped {
		t.Fatalf("expected skipped outcome, got %q", run.ConversionOutcome)
	}
	if run.ConversionDetail == "" {
		t.Fatal("expected conversion detail")
	}

	// Stems from earlier stages are still recorded.
	artifacts, err := env.store.ArtifactsForStem(context.Background(), "song")
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(artifacts))
	}
}

func TestProcessUnconfiguredConverterSkips(t *testing.T) {
	env := newTestEnv(t)
	env.converter.configured = false
	run := env.newRun(t, "song.mp4")

	if err := env.manager.Process(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if run.Status != runs.StatusReady || run.ConversionOutcome != runs.ConversionSkipped {
		t.Fatalf("unexpected run state: %s / %q", run.Status, run.ConversionOutcome)
	}
	if env.converter.calls != 0 {
		t.Fatal("converter should not run when unconfigured")
	}
}

func TestProcessSeparationFailureHaltsRun(t *testing.T) {
	env := newTestEnv(t)
	env.separator.err = services.Wrap(services.ErrInference, "separation", "demucs", "separate stems", errors.New("boom"))
	run := env.newRun(t, "song.mp4")

	err := env.manager.Process(context.Background(), run)
	if err == nil {
		t.Fatal("expected error")
	}
	if run.Status != runs.StatusFailed {
		t.Fatalf("expected failed, got %s", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Fatal("expected user-facing error message")
	}
	if env.converter.calls != 0 {
		t.Fatal("conversion should not run after failure")
	}

	// Extraction artifact survives the failure.
	artifacts, err := env.store.ArtifactsForStem(context.Background(), "song")
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 1 || artifacts[0].Kind != runs.ArtifactAudio {
		t.Fatalf("unexpected artifacts after failure: %+v", artifacts)
	}
}

func TestProcessResumesFromCurrentStatus(t *testing.T) {
	env := newTestEnv(t)
	run := env.newRun(t, "song.mp4")

	// Pretend extraction already happened.
	audioPath := filepath.Join(env.cfg.Paths.AssetRoot, "song.mp3")
	if err := os.WriteFile(audioPath, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	run.Status = runs.StatusAudioExtracted
	if err := env.store.Update(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	if err := env.manager.Process(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if env.extractor.calls != 0 {
		t.Fatal("extraction should be skipped for resumed run")
	}
	if run.Status != runs.StatusReady {
		t.Fatalf("expected ready, got %s", run.Status)
	}
}

func TestProcessMissingSourceFails(t *testing.T) {
	env := newTestEnv(t)
	run, err := env.store.NewRun(context.Background(), "ghost.mp4", "ghost")
	if err != nil {
		t.Fatal(err)
	}

	if err := env.manager.Process(context.Background(), run); err == nil {
		t.Fatal("expected error for missing source")
	}
	if run.Status != runs.StatusFailed {
		t.Fatalf("expected failed, got %s", run.Status)
	}
}

func TestEnqueueProcessesInBackground(t *testing.T) {
	env := newTestEnv(t)
	run := env.newRun(t, "song.mp4")

	if err := env.manager.Enqueue(run); err == nil {
		t.Fatal("expected enqueue before Start to fail")
	}

	if err := env.manager.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer env.manager.Stop()

	if err := env.manager.Enqueue(run); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		stored, err := env.store.GetByID(context.Background(), run.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored != nil && stored.Terminal() {
			if stored.Status != runs.StatusReady {
				t.Fatalf("expected ready, got %s (%s)", stored.Status, stored.ErrorMessage)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealthReportsAllStages(t *testing.T) {
	env := newTestEnv(t)
	health := env.manager.Health(context.Background())
	if len(health) != 3 {
		t.Fatalf("expected 3 stage health records, got %d", len(health))
	}
}
