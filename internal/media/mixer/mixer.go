package mixer

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/media/wavio"
	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Mixer blends a vocal stem with an instrumental stem at configurable
// gains. WAV inputs with matching sample layouts are summed in-process;
// everything else goes through ffmpeg's amix filter.
type Mixer struct {
	ffmpegBinary     string
	vocalGain        float64
	instrumentalGain float64
	commandRunner    func(ctx context.Context, name string, args ...string) error
}

// New creates a mixer. A gain of zero mutes that stem; callers wanting
// passthrough use unity gains.
func New(ffmpegBinary string, vocalGain, instrumentalGain float64) *Mixer {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Mixer{
		ffmpegBinary:     ffmpegBinary,
		vocalGain:        vocalGain,
		instrumentalGain: instrumentalGain,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (m *Mixer) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	m.commandRunner = runner
}

// Mix blends vocals and instrumental into dest. The dest extension
// selects the output codec through ffmpeg; a .wav destination with
// matching PCM inputs is mixed without leaving the process.
func (m *Mixer) Mix(ctx context.Context, vocals, instrumental, dest string) error {
	if vocals == "" || instrumental == "" || dest == "" {
		return services.Wrap(services.ErrValidation, "mix", "mix", "vocal, instrumental, and destination paths required", nil)
	}

	if isWAV(vocals) && isWAV(instrumental) && isWAV(dest) {
		if err := m.mixInProcess(vocals, instrumental, dest); err == nil {
			return nil
		}
		// Fall through to ffmpeg on layout mismatch or odd encodings.
	}

	args := []string{
		"-y",
		"-i", vocals,
		"-i", instrumental,
		"-filter_complex", m.filterGraph(),
		"-map", "[mix]",
		dest,
	}
	if err := m.run(ctx, m.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrEncode, "mix", "ffmpeg", "blend stems", err)
	}
	return nil
}

// filterGraph builds the amix graph. normalize=0 keeps the configured
// gains intact instead of rescaling both inputs to avoid clipping;
// duration=longest pads the shorter stem with silence.
func (m *Mixer) filterGraph() string {
	return fmt.Sprintf(
		"[0:a]volume=%s[v];[1:a]volume=%s[i];[v][i]amix=inputs=2:duration=longest:normalize=0[mix]",
		formatGain(m.vocalGain), formatGain(m.instrumentalGain),
	)
}

func (m *Mixer) mixInProcess(vocals, instrumental, dest string) error {
	vocalClip, err := wavio.ReadFile(vocals)
	if err != nil {
		return err
	}
	instrumentalClip, err := wavio.ReadFile(instrumental)
	if err != nil {
		return err
	}
	mixed, err := MixClips(vocalClip, m.vocalGain, instrumentalClip, m.instrumentalGain)
	if err != nil {
		return err
	}
	return wavio.WriteFile(dest, mixed)
}

// MixClips sums two PCM clips sample by sample with the given gains,
// clamping to the 16-bit range. The result spans the longer clip; the
// shorter one contributes silence past its end. Both clips must share
// a sample layout.
func MixClips(a *wavio.Clip, gainA float64, b *wavio.Clip, gainB float64) (*wavio.Clip, error) {
	if a.Format != b.Format {
		return nil, fmt.Errorf("mix: sample layout mismatch: %+v vs %+v", a.Format, b.Format)
	}
	length := len(a.Samples)
	if len(b.Samples) > length {
		length = len(b.Samples)
	}
	samples := make([]int16, length)
	for i := range samples {
		var sum float64
		if i < len(a.Samples) {
			sum += gainA * float64(a.Samples[i])
		}
		if i < len(b.Samples) {
			sum += gainB * float64(b.Samples[i])
		}
		samples[i] = clamp(sum)
	}
	return &wavio.Clip{Format: a.Format, Samples: samples}, nil
}

func clamp(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

func formatGain(gain float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", gain), "0"), ".")
}

func (m *Mixer) run(ctx context.Context, name string, args ...string) error {
	if m.commandRunner != nil {
		return m.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
