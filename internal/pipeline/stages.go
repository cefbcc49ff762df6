package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/yisikawa/LyricSyncAI/internal/assets"
	"github.com/yisikawa/LyricSyncAI/internal/extraction"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services"
	"github.com/yisikawa/LyricSyncAI/internal/services/demucs"
	"github.com/yisikawa/LyricSyncAI/internal/services/rvc"
	"github.com/yisikawa/LyricSyncAI/internal/stage"
)

// AudioExtractor is the slice of the extraction service the pipeline needs.
type AudioExtractor interface {
	Extract(ctx context.Context, sourcePath, destPath string) error
}

// StemSeparator is the slice of the separation service the pipeline needs.
type StemSeparator interface {
	Separate(ctx context.Context, audioPath, separatedDir, stem string) (demucs.Result, error)
}

// VoiceConverter is the slice of the conversion service the pipeline needs.
type VoiceConverter interface {
	Configured() bool
	Convert(ctx context.Context, vocalsPath, destPath string) error
}

type extractStage struct {
	extractor    AudioExtractor
	store        *runs.Store
	assetRoot    string
	ffmpegBinary string
}

func (s *extractStage) Prepare(ctx context.Context, run *runs.Run) error {
	asset := assets.New(s.assetRoot, run.Asset)
	if _, err := os.Stat(asset.SourcePath()); err != nil {
		return services.Wrap(services.ErrNoSource, "extraction", "prepare", "uploaded source missing", err)
	}
	return nil
}

func (s *extractStage) Execute(ctx context.Context, run *runs.Run) error {
	asset := assets.New(s.assetRoot, run.Asset)
	if err := s.extractor.Extract(ctx, asset.SourcePath(), asset.AudioPath()); err != nil {
		return err
	}
	if _, err := s.store.RecordArtifact(ctx, run.Stem, runs.ArtifactAudio, asset.AudioPath()); err != nil {
		return services.Wrap(services.ErrConfiguration, "extraction", "record", "record extracted audio", err)
	}
	return nil
}

func (s *extractStage) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(s.ffmpegBinary); err != nil {
		return stage.Unhealthy("extraction", fmt.Sprintf("ffmpeg not found: %v", err))
	}
	return stage.Healthy("extraction")
}

type separateStage struct {
	separator    StemSeparator
	store        *runs.Store
	assetRoot    string
	separatedDir string
	demucsBinary string
}

func (s *separateStage) Prepare(ctx context.Context, run *runs.Run) error {
	if err := os.MkdirAll(s.separatedDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "separation", "prepare", "create separated directory", err)
	}
	return nil
}

func (s *separateStage) Execute(ctx context.Context, run *runs.Run) error {
	asset := assets.New(s.assetRoot, run.Asset)
	result, err := s.separator.Separate(ctx, asset.AudioPath(), s.separatedDir, run.Stem)
	if err != nil {
		return err
	}
	if _, err := s.store.RecordArtifact(ctx, run.Stem, runs.ArtifactVocals, result.VocalsPath); err != nil {
		return services.Wrap(services.ErrConfiguration, "separation", "record", "record vocal stem", err)
	}
	if _, err := s.store.RecordArtifact(ctx, run.Stem, runs.ArtifactInstrumental, result.InstrumentalPath); err != nil {
		return services.Wrap(services.ErrConfiguration, "separation", "record", "record instrumental stem", err)
	}
	return nil
}

func (s *separateStage) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(s.demucsBinary); err != nil {
		return stage.Unhealthy("separation", fmt.Sprintf("demucs not found: %v", err))
	}
	return stage.Healthy("separation")
}

// convertStage applies the AI voice. It is the one stage that cannot
// fail a run: an unconfigured or broken converter tags the outcome and
// lets the original vocals ship.
type convertStage struct {
	converter VoiceConverter
	store     *runs.Store
	assetRoot string
	rvcBinary string
}

func (s *convertStage) Prepare(ctx context.Context, run *runs.Run) error {
	return nil
}

func (s *convertStage) Execute(ctx context.Context, run *runs.Run) error {
	if !s.converter.Configured() {
		run.ConversionOutcome = runs.ConversionSkipped
		run.ConversionDetail = "no voice model configured"
		return nil
	}

	asset := assets.New(s.assetRoot, run.Asset)
	if err := s.converter.Convert(ctx, asset.VocalsPath(), asset.AICoverPath()); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		run.ConversionOutcome = runs.ConversionSkipped
		run.ConversionDetail = services.UserMessage(err)
		return nil
	}

	if _, err := s.store.RecordArtifact(ctx, run.Stem, runs.ArtifactAICover, asset.AICoverPath()); err != nil {
		return services.Wrap(services.ErrConfiguration, "conversion", "record", "record converted vocals", err)
	}
	run.ConversionOutcome = runs.ConversionApplied
	run.ConversionDetail = ""
	return nil
}

func (s *convertStage) HealthCheck(ctx context.Context) stage.Health {
	if !s.converter.Configured() {
		return stage.Unhealthy("conversion", "no voice model configured")
	}
	if _, err := exec.LookPath(s.rvcBinary); err != nil {
		return stage.Unhealthy("conversion", fmt.Sprintf("rvc not found: %v", err))
	}
	return stage.Healthy("conversion")
}

var (
	_ stage.Handler  = (*extractStage)(nil)
	_ stage.Handler  = (*separateStage)(nil)
	_ stage.Handler  = (*convertStage)(nil)
	_ AudioExtractor = (*extraction.Extractor)(nil)
	_ StemSeparator  = (*demucs.Separator)(nil)
	_ VoiceConverter = (*rvc.Converter)(nil)
)
