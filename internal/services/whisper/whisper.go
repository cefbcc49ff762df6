package whisper

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	langpkg "github.com/yisikawa/LyricSyncAI/internal/language"
	"github.com/yisikawa/LyricSyncAI/internal/modelcache"
	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Segment is one timed span of transcribed lyrics.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// StreamItem is one element of a live transcription stream. Err is set
// only on the terminal element; every earlier element carries a segment.
type StreamItem struct {
	Segment Segment
	Err     error
}

// Transcriber runs the whisper CLI against an audio file and parses
// segments from its progress output as they appear.
type Transcriber struct {
	cfg      config.Whisper
	registry *modelcache.Registry

	streamRunner func(ctx context.Context, name string, args []string, onLine func(string)) error
}

// NewTranscriber creates a transcriber backed by the given model registry.
func NewTranscriber(cfg config.Whisper, registry *modelcache.Registry) *Transcriber {
	return &Transcriber{cfg: cfg, registry: registry}
}

// WithStreamRunner sets a custom command runner (for testing).
func (t *Transcriber) WithStreamRunner(runner func(ctx context.Context, name string, args []string, onLine func(string)) error) {
	t.streamRunner = runner
}

// Model returns the configured model name for logging.
func (t *Transcriber) Model() string {
	return t.cfg.Model
}

// Transcribe runs a full transcription and returns the filtered
// segments in order.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, language string) ([]Segment, error) {
	var segments []Segment
	for item := range t.Stream(ctx, audioPath, language) {
		if item.Err != nil {
			return nil, item.Err
		}
		segments = append(segments, item.Segment)
	}
	return segments, nil
}

// Stream transcribes audioPath and emits segments as the engine
// produces them. The channel always closes; when transcription fails
// the final element carries the error so consumers that already
// forwarded earlier segments can report the failure in-band.
func (t *Transcriber) Stream(ctx context.Context, audioPath, language string) <-chan StreamItem {
	out := make(chan StreamItem)
	go func() {
		defer close(out)

		// Every send races against cancellation: a consumer that stops
		// reading must not strand this goroutine on the channel.
		emit := func(item StreamItem) {
			select {
			case out <- item:
			case <-ctx.Done():
			}
		}

		if strings.TrimSpace(audioPath) == "" {
			emit(StreamItem{Err: services.Wrap(services.ErrValidation, "transcription", "stream", "audio path required", nil)})
			return
		}

		handle, err := t.acquireModel(ctx)
		if err != nil {
			emit(StreamItem{Err: services.Wrap(services.ErrResourceMissing, "transcription", "load_model", "prepare transcription model", err)})
			return
		}

		args := t.buildArgs(audioPath, language, handle.ResolvedDevice)
		parser := newSegmentParser()

		runErr := t.run(ctx, t.cfg.Binary, args, func(line string) {
			if segment, ok := parser.parseLine(line); ok {
				emit(StreamItem{Segment: segment})
			}
		})
		if runErr != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
			}
			emit(StreamItem{Err: services.Wrap(services.ErrInference, "transcription", "whisper", "transcription engine failed", runErr)})
		}
	}()
	return out
}

// acquireModel resolves the execution device through the shared model
// registry so repeated requests skip the accelerator probe.
func (t *Transcriber) acquireModel(ctx context.Context) (*modelcache.Handle, error) {
	device := modelcache.DeviceCPU
	if t.cfg.CUDAEnabled {
		device = modelcache.DeviceCUDA
	}
	key := modelcache.Key{Kind: modelcache.KindTranscriber, Identifier: t.cfg.Model, Device: device}
	return t.registry.Acquire(ctx, key, func(_ context.Context, _, dev string) (any, func() error, error) {
		if _, err := exec.LookPath(t.cfg.Binary); err != nil {
			return nil, nil, fmt.Errorf("whisper binary: %w", err)
		}
		if dev == modelcache.DeviceCUDA {
			if _, err := exec.LookPath("nvidia-smi"); err != nil {
				return nil, nil, fmt.Errorf("cuda unavailable: %w", err)
			}
		}
		return t.cfg.Binary, nil, nil
	})
}

func (t *Transcriber) buildArgs(audioPath, language, device string) []string {
	args := []string{
		audioPath,
		"--model", t.cfg.Model,
		"--device", device,
		"--beam_size", strconv.Itoa(t.cfg.BeamSize),
		"--best_of", strconv.Itoa(t.cfg.BestOf),
		"--temperature", formatFloat(t.cfg.Temperature),
		"--temperature_increment_on_fallback", formatFloat(t.cfg.TemperatureIncrement),
		"--logprob_threshold", formatFloat(t.cfg.LogProbThreshold),
		"--no_speech_threshold", formatFloat(t.cfg.NoSpeechThreshold),
		"--condition_on_previous_text", pythonBool(t.cfg.ConditionOnPreviousText),
		"--output_format", "txt",
		"--verbose", "True",
	}
	if prompt := strings.TrimSpace(t.cfg.InitialPrompt); prompt != "" {
		args = append(args, "--initial_prompt", prompt)
	}
	if language == "" {
		language = t.cfg.Language
	}
	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

func (t *Transcriber) run(ctx context.Context, name string, args []string, onLine func(string)) error {
	if t.streamRunner != nil {
		return t.streamRunner(ctx, name, args, onLine)
	}
	return runStreaming(ctx, name, args, onLine)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// pythonBool renders booleans the way the whisper CLI parses them.
func pythonBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
