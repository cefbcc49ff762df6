package mixer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yisikawa/LyricSyncAI/internal/media/wavio"
)

func clip(samples ...int16) *wavio.Clip {
	return &wavio.Clip{
		Format:  wavio.Format{SampleRate: 44100, Channels: 1},
		Samples: samples,
	}
}

func TestMixClipsSelfHalvesRecoverOriginal(t *testing.T) {
	original := clip(0, 100, -100, 32767, -32768, 12345, -12345)

	mixed, err := MixClips(original, 0.5, original, 0.5)
	if err != nil {
		t.Fatalf("MixClips: %v", err)
	}
	for i := range original.Samples {
		if mixed.Samples[i] != original.Samples[i] {
			t.Fatalf("sample %d: %d != %d", i, mixed.Samples[i], original.Samples[i])
		}
	}
}

func TestMixClipsClampsOverflow(t *testing.T) {
	loud := clip(32767, -32768)
	mixed, err := MixClips(loud, 1.0, loud, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if mixed.Samples[0] != 32767 {
		t.Fatalf("expected positive clamp, got %d", mixed.Samples[0])
	}
	if mixed.Samples[1] != -32768 {
		t.Fatalf("expected negative clamp, got %d", mixed.Samples[1])
	}
}

func TestMixClipsPadsShorterInput(t *testing.T) {
	long := clip(10, 20, 30, 40)
	short := clip(1, 2)

	mixed, err := MixClips(long, 1.0, short, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{11, 22, 30, 40}
	for i, expected := range want {
		if mixed.Samples[i] != expected {
			t.Fatalf("sample %d: %d != %d", i, mixed.Samples[i], expected)
		}
	}
}

func TestMixClipsRejectsLayoutMismatch(t *testing.T) {
	stereo := &wavio.Clip{Format: wavio.Format{SampleRate: 44100, Channels: 2}, Samples: []int16{1, 2}}
	mono := clip(1)
	if _, err := MixClips(stereo, 1, mono, 1); err == nil {
		t.Fatal("expected layout mismatch error")
	}
}

func TestMixZeroGainMutesStem(t *testing.T) {
	vocals := clip(100, 200)
	instrumental := clip(10, 20)

	mixed, err := MixClips(vocals, 0, instrumental, 1)
	if err != nil {
		t.Fatal(err)
	}
	if mixed.Samples[0] != 10 || mixed.Samples[1] != 20 {
		t.Fatalf("expected muted vocals, got %v", mixed.Samples)
	}
}

func TestMixWAVFastPath(t *testing.T) {
	dir := t.TempDir()
	vocalsPath := filepath.Join(dir, "vocals.wav")
	instrumentalPath := filepath.Join(dir, "no_vocals.wav")
	destPath := filepath.Join(dir, "mixed.wav")

	if err := wavio.WriteFile(vocalsPath, clip(100, -100, 50)); err != nil {
		t.Fatal(err)
	}
	if err := wavio.WriteFile(instrumentalPath, clip(10, 10, 10)); err != nil {
		t.Fatal(err)
	}

	m := New("ffmpeg", 1.0, 1.0)
	m.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("ffmpeg should not run for matching wav inputs")
		return nil
	})

	if err := m.Mix(context.Background(), vocalsPath, instrumentalPath, destPath); err != nil {
		t.Fatalf("Mix: %v", err)
	}

	mixed, err := wavio.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{110, -90, 60}
	for i, expected := range want {
		if mixed.Samples[i] != expected {
			t.Fatalf("sample %d: %d != %d", i, mixed.Samples[i], expected)
		}
	}
}

func TestMixFallsBackToFFmpegForMP3(t *testing.T) {
	var captured []string
	m := New("ffmpeg", 0.8, 1.2)
	m.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		captured = append([]string{name}, args...)
		return nil
	})

	if err := m.Mix(context.Background(), "vocals.wav", "no_vocals.wav", "mixed.mp3"); err != nil {
		t.Fatalf("Mix: %v", err)
	}

	joined := strings.Join(captured, " ")
	if !strings.Contains(joined, "amix=inputs=2:duration=longest:normalize=0") {
		t.Fatalf("missing amix filter: %s", joined)
	}
	if !strings.Contains(joined, "volume=0.8") || !strings.Contains(joined, "volume=1.2") {
		t.Fatalf("missing gain filters: %s", joined)
	}
	if captured[len(captured)-1] != "mixed.mp3" {
		t.Fatalf("expected destination last, got %s", joined)
	}
}

func TestMixRequiresPaths(t *testing.T) {
	m := New("", 1, 1)
	if err := m.Mix(context.Background(), "", "b.wav", "c.wav"); err == nil {
		t.Fatal("expected error for missing vocal path")
	}
}
