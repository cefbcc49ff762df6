package demucs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/fileutil"
	"github.com/yisikawa/LyricSyncAI/internal/modelcache"
	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Result holds the stem paths a separation produced.
type Result struct {
	VocalsPath       string
	InstrumentalPath string
}

// Separator splits a mixed track into vocal and instrumental stems
// with the demucs CLI.
type Separator struct {
	cfg          config.Demucs
	ffmpegBinary string
	registry     *modelcache.Registry

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewSeparator creates a separator. ffmpegBinary is used for the decode
// fallback when demucs cannot read the container directly.
func NewSeparator(cfg config.Demucs, ffmpegBinary string, registry *modelcache.Registry) *Separator {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Separator{cfg: cfg, ffmpegBinary: ffmpegBinary, registry: registry}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Separator) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Separate splits audioPath into two stems and places them in
// separatedDir as <stem>_vocals.wav and <stem>_no_vocals.wav. When
// demucs rejects the input container, the audio is transcoded to WAV
// through ffmpeg and separation retried once.
func (s *Separator) Separate(ctx context.Context, audioPath, separatedDir, stem string) (Result, error) {
	var result Result
	if strings.TrimSpace(audioPath) == "" || strings.TrimSpace(stem) == "" {
		return result, services.Wrap(services.ErrValidation, "separation", "separate", "audio path and stem required", nil)
	}

	handle, err := s.acquireModel(ctx)
	if err != nil {
		return result, services.Wrap(services.ErrResourceMissing, "separation", "load_model", "prepare separation model", err)
	}

	workDir, err := os.MkdirTemp(separatedDir, "demucs-*")
	if err != nil {
		return result, services.Wrap(services.ErrEncode, "separation", "workdir", "create working directory", err)
	}
	defer os.RemoveAll(workDir)

	runInput := audioPath
	if err := s.runDemucs(ctx, runInput, workDir, handle.ResolvedDevice); err != nil {
		// Some uploads carry codecs demucs' loader cannot open.
		// A WAV transcode sidesteps the container entirely.
		decoded := filepath.Join(workDir, "decoded.wav")
		if ffErr := s.run(ctx, s.ffmpegBinary, "-y", "-i", audioPath, "-vn", decoded); ffErr != nil {
			return result, services.Wrap(services.ErrDecode, "separation", "demucs", "separate stems", err)
		}
		runInput = decoded
		if err := s.runDemucs(ctx, runInput, workDir, handle.ResolvedDevice); err != nil {
			return result, services.Wrap(services.ErrInference, "separation", "demucs", "separate stems", err)
		}
	}

	trackName := strings.TrimSuffix(filepath.Base(runInput), filepath.Ext(runInput))
	outDir := filepath.Join(workDir, s.cfg.Model, trackName)

	result.VocalsPath = filepath.Join(separatedDir, stem+"_vocals.wav")
	result.InstrumentalPath = filepath.Join(separatedDir, stem+"_no_vocals.wav")

	if err := moveStem(filepath.Join(outDir, "vocals.wav"), result.VocalsPath); err != nil {
		return Result{}, services.Wrap(services.ErrInference, "separation", "collect", "vocals stem missing from model output", err)
	}
	if err := moveStem(filepath.Join(outDir, "no_vocals.wav"), result.InstrumentalPath); err != nil {
		return Result{}, services.Wrap(services.ErrInference, "separation", "collect", "instrumental stem missing from model output", err)
	}
	return result, nil
}

func (s *Separator) runDemucs(ctx context.Context, input, outDir, device string) error {
	args := []string{
		"--two-stems", "vocals",
		"-n", s.cfg.Model,
		"--overlap", strconv.FormatFloat(s.cfg.Overlap, 'g', -1, 64),
		"--shifts", strconv.Itoa(s.cfg.Shifts),
		"-d", device,
		"-o", outDir,
		input,
	}
	return s.run(ctx, s.cfg.Binary, args...)
}

func (s *Separator) acquireModel(ctx context.Context) (*modelcache.Handle, error) {
	device := modelcache.DeviceCPU
	if s.cfg.CUDAEnabled {
		device = modelcache.DeviceCUDA
	}
	key := modelcache.Key{Kind: modelcache.KindSeparator, Identifier: s.cfg.Model, Device: device}
	return s.registry.Acquire(ctx, key, func(_ context.Context, _, dev string) (any, func() error, error) {
		if _, err := exec.LookPath(s.cfg.Binary); err != nil {
			return nil, nil, fmt.Errorf("demucs binary: %w", err)
		}
		if dev == modelcache.DeviceCUDA {
			if _, err := exec.LookPath("nvidia-smi"); err != nil {
				return nil, nil, fmt.Errorf("cuda unavailable: %w", err)
			}
		}
		return s.cfg.Binary, nil, nil
	})
}

// moveStem relocates the model output into the published stem path.
func moveStem(src, dest string) error {
	return fileutil.MoveFile(src, dest)
}

func (s *Separator) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
