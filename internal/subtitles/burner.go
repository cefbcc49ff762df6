package subtitles

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Burner renders subtitles into video frames with ffmpeg.
type Burner struct {
	ffmpegBinary  string
	videoCodec    string
	crf           int
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewBurner creates a burner. An empty codec defaults to libx264.
func NewBurner(ffmpegBinary, videoCodec string, crf int) *Burner {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	return &Burner{
		ffmpegBinary: ffmpegBinary,
		videoCodec:   videoCodec,
		crf:          crf,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (b *Burner) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	b.commandRunner = runner
}

// BurnRequest describes one burn-in job. ReplaceAudio, when set, swaps
// the video's audio track for the given file; otherwise the original
// audio passes through untouched.
type BurnRequest struct {
	Video        string
	Subtitle     string
	ReplaceAudio string
	Dest         string
}

// Burn re-encodes the video with subtitles drawn onto the frames. The
// audio track is copied, never re-encoded.
func (b *Burner) Burn(ctx context.Context, req BurnRequest) error {
	if req.Video == "" || req.Subtitle == "" || req.Dest == "" {
		return services.Wrap(services.ErrValidation, "export", "burn", "video, subtitle, and destination paths required", nil)
	}

	args := []string{"-y", "-i", req.Video}
	if req.ReplaceAudio != "" {
		args = append(args, "-i", req.ReplaceAudio)
	}
	args = append(args, "-vf", "subtitles="+escapeFilterPath(req.Subtitle))
	if req.ReplaceAudio != "" {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
	}
	args = append(args,
		"-c:v", b.videoCodec,
		"-crf", strconv.Itoa(b.crf),
		"-c:a", "copy",
		req.Dest,
	)

	if err := b.run(ctx, b.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrEncode, "export", "ffmpeg", "burn subtitles", err)
	}
	return nil
}

// escapeFilterPath prepares a path for use inside an ffmpeg filtergraph.
// Filtergraph syntax treats backslash, colon, quote, and bracket as
// structure, so each is escaped; Windows-style separators become
// forward slashes first, which ffmpeg accepts on every platform.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	replacer := strings.NewReplacer(
		":", "\\:",
		"'", "\\'",
		"[", "\\[",
		"]", "\\]",
		",", "\\,",
		";", "\\;",
	)
	return replacer.Replace(path)
}

func (b *Burner) run(ctx context.Context, name string, args ...string) error {
	if b.commandRunner != nil {
		return b.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
