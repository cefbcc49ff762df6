package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/media/ffprobe"
	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Extractor pulls the audio track out of an uploaded video with ffmpeg.
type Extractor struct {
	ffmpegBinary  string
	ffprobeBinary string

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// New creates an extractor.
func New(ffmpegBinary, ffprobeBinary string) *Extractor {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Extractor{ffmpegBinary: ffmpegBinary, ffprobeBinary: ffprobeBinary}
}

// WithCommandRunner sets a custom command runner (for testing). The
// probe step is skipped when a runner is injected.
func (e *Extractor) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// Extract writes the source's audio track to destPath as MP3. Sources
// without an audio stream fail before ffmpeg runs so the error names
// the real problem instead of a codec guess.
func (e *Extractor) Extract(ctx context.Context, sourcePath, destPath string) error {
	if strings.TrimSpace(sourcePath) == "" || strings.TrimSpace(destPath) == "" {
		return services.Wrap(services.ErrValidation, "extraction", "extract", "source and destination paths required", nil)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return services.Wrap(services.ErrNoSource, "extraction", "extract", "source file missing", err)
	}

	if e.commandRunner == nil {
		probe, err := ffprobe.Inspect(ctx, e.ffprobeBinary, sourcePath)
		if err != nil {
			return services.Wrap(services.ErrDecode, "extraction", "probe", "inspect source container", err)
		}
		if !probe.HasAudio() {
			return services.Wrap(services.ErrDecode, "extraction", "probe", "source has no audio stream", nil)
		}
	}

	args := []string{
		"-y",
		"-i", sourcePath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		destPath,
	}
	if err := e.run(ctx, e.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrDecode, "extraction", "ffmpeg", "extract audio track", err)
	}
	return nil
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
