package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/logging"
	"github.com/yisikawa/LyricSyncAI/internal/preflight"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services"
	"github.com/yisikawa/LyricSyncAI/internal/stage"
)

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      runs.Status
	processingStatus runs.Status
	doneStatus       runs.Status
}

// Manager advances runs through extraction, separation, and conversion.
// Each run executes on its own goroutine; a semaphore bounds how many
// process concurrently.
type Manager struct {
	cfg    *config.Config
	store  *runs.Store
	logger *slog.Logger
	stages []pipelineStage
	slots  chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	baseCtx context.Context
	wg      sync.WaitGroup
	running bool
}

// NewManager wires the stage handlers around the given services.
func NewManager(cfg *config.Config, store *runs.Store, logger *slog.Logger, extractor AudioExtractor, separator StemSeparator, converter VoiceConverter) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	maxRuns := cfg.Workflow.MaxConcurrentRuns
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		slots:  make(chan struct{}, maxRuns),
		stages: []pipelineStage{
			{
				name:             "extraction",
				handler:          &extractStage{extractor: extractor, store: store, assetRoot: cfg.Paths.AssetRoot, ffmpegBinary: cfg.FFmpeg.Binary},
				startStatus:      runs.StatusUploaded,
				processingStatus: runs.StatusExtracting,
				doneStatus:       runs.StatusAudioExtracted,
			},
			{
				name:             "separation",
				handler:          &separateStage{separator: separator, store: store, assetRoot: cfg.Paths.AssetRoot, separatedDir: cfg.SeparatedDir(), demucsBinary: cfg.Demucs.Binary},
				startStatus:      runs.StatusAudioExtracted,
				processingStatus: runs.StatusSeparating,
				doneStatus:       runs.StatusSeparated,
			},
			{
				name:             "conversion",
				handler:          &convertStage{converter: converter, store: store, assetRoot: cfg.Paths.AssetRoot, rvcBinary: cfg.RVC.Binary},
				startStatus:      runs.StatusSeparated,
				processingStatus: runs.StatusConverting,
				doneStatus:       runs.StatusConverted,
			},
		},
	}
}

// Start prepares the manager for background runs. Runs enqueued before
// Start are rejected.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("pipeline already running")
	}
	m.baseCtx, m.cancel = context.WithCancel(ctx)
	m.running = true
	return nil
}

// Stop cancels in-flight runs and waits for their goroutines to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Enqueue schedules the run on a background goroutine. It returns
// immediately; the run waits for a free slot before processing.
func (m *Manager) Enqueue(run *runs.Run) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return errors.New("pipeline not running")
	}
	ctx := m.baseCtx
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		select {
		case m.slots <- struct{}{}:
			defer func() { <-m.slots }()
		case <-ctx.Done():
			return
		}
		if err := m.Process(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
			logging.WithContext(ctx, m.logger).Error("run failed",
				logging.String(logging.FieldRunID, run.ID),
				logging.Error(err))
		}
	}()
	return nil
}

// Process advances the run through every remaining stage. The run's
// current status selects where processing resumes, so a run that
// already has extracted audio goes straight to separation.
func (m *Manager) Process(ctx context.Context, run *runs.Run) error {
	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithAsset(ctx, run.Asset)
	logger := logging.WithContext(ctx, m.logger)

	if results := preflight.RunAll(ctx, m.cfg); !preflight.Passed(results) {
		err := services.Wrap(services.ErrConfiguration, "preflight", "check", firstFailure(results), nil)
		m.failRun(ctx, run, err)
		return err
	}

	for _, stg := range m.stages {
		if run.Status != stg.startStatus {
			continue
		}
		if err := m.executeStage(ctx, logger, stg, run); err != nil {
			return err
		}
	}

	if run.Status == runs.StatusConverted || run.Status == runs.StatusSeparated {
		run.Status = runs.StatusReady
		if err := m.store.Update(ctx, run); err != nil {
			return fmt.Errorf("persist run completion: %w", err)
		}
		logger.Info("run ready",
			logging.String(logging.FieldRunID, run.ID),
			logging.String("conversion_outcome", run.ConversionOutcome))
	}
	return nil
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stg pipelineStage, run *runs.Run) error {
	ctx = services.WithStage(ctx, stg.name)
	stageStart := time.Now()

	run.Status = stg.processingStatus
	run.ErrorMessage = ""
	if err := m.store.Update(ctx, run); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	logger.Info("stage started",
		logging.String(logging.FieldStage, stg.name),
		logging.String(logging.FieldRunID, run.ID),
		logging.String(logging.FieldAsset, run.Asset))

	if err := stg.handler.Prepare(ctx, run); err != nil {
		m.failRun(ctx, run, err)
		return err
	}
	if err := stg.handler.Execute(ctx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("stage interrupted by shutdown", logging.String(logging.FieldStage, stg.name))
			return err
		}
		m.failRun(ctx, run, err)
		return err
	}

	run.Status = stg.doneStatus
	if err := m.store.Update(ctx, run); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	logger.Info("stage completed",
		logging.String(logging.FieldStage, stg.name),
		logging.String(logging.FieldRunID, run.ID),
		logging.Duration("stage_duration", time.Since(stageStart)))
	return nil
}

// failRun marks the run failed, keeping artifacts from earlier stages
// intact so clients can still reach whatever was produced.
func (m *Manager) failRun(ctx context.Context, run *runs.Run, stageErr error) {
	run.Status = runs.StatusFailed
	run.ErrorMessage = services.UserMessage(stageErr)

	logger := logging.WithContext(ctx, m.logger)
	logger.Error("stage failed",
		logging.String(logging.FieldRunID, run.ID),
		logging.String("error_message", run.ErrorMessage),
		logging.Error(stageErr))

	if err := m.store.Update(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("failed to persist run failure", logging.Error(err))
	}
}

// Health reports the readiness of every stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	health := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		health = append(health, stg.handler.HealthCheck(ctx))
	}
	return health
}

func firstFailure(results []preflight.Result) string {
	for _, result := range results {
		if !result.Passed {
			return fmt.Sprintf("%s: %s", result.Name, strings.TrimSpace(result.Detail))
		}
	}
	return "preflight failed"
}
