package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yisikawa/LyricSyncAI/internal/services"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePriorityChain(t *testing.T) {
	root := t.TempDir()
	asset := New(root, "song.mp4")
	resolver := NewResolver(root)

	touch(t, asset.SourcePath())
	touch(t, asset.AudioPath())
	touch(t, asset.VocalsPath())

	got, err := resolver.Resolve("song.mp4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != asset.VocalsPath() {
		t.Fatalf("expected vocals first, got %q", got)
	}

	if err := os.Remove(asset.VocalsPath()); err != nil {
		t.Fatal(err)
	}
	got, err = resolver.Resolve("song.mp4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != asset.AudioPath() {
		t.Fatalf("expected extracted audio next, got %q", got)
	}

	if err := os.Remove(asset.AudioPath()); err != nil {
		t.Fatal(err)
	}
	got, err = resolver.Resolve("song.mp4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != asset.SourcePath() {
		t.Fatalf("expected raw source last, got %q", got)
	}
}

func TestResolveNothingAvailable(t *testing.T) {
	resolver := NewResolver(t.TempDir())
	_, err := resolver.Resolve("missing.mp4")
	if !errors.Is(err, services.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestResolveExplicitAudioFileWins(t *testing.T) {
	root := t.TempDir()
	resolver := NewResolver(root)

	// A caller naming an audio file directly bypasses stem derivation even
	// when a richer artifact exists for the same stem.
	touch(t, filepath.Join(root, "take.wav"))
	touch(t, filepath.Join(root, "separated", "take_vocals.wav"))

	got, err := resolver.Resolve("take.wav")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != filepath.Join(root, "take.wav") {
		t.Fatalf("explicit file should win, got %q", got)
	}
}

func TestResolveSeparatedAreaDirect(t *testing.T) {
	root := t.TempDir()
	resolver := NewResolver(root)
	vocals := filepath.Join(root, "separated", "song_vocals.wav")
	touch(t, vocals)

	for _, input := range []string{
		"separated/song_vocals.wav",
		"http://localhost:8001/uploads/separated/song_vocals.wav",
		vocals,
	} {
		got, err := resolver.Resolve(input)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", input, err)
		}
		if got != vocals {
			t.Fatalf("Resolve(%q) = %q, want %q", input, got, vocals)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	root := t.TempDir()
	asset := New(root, "clip.mp4")
	touch(t, asset.SourcePath())
	resolver := NewResolver(root)

	first, err := resolver.Resolve("clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	second, err := resolver.Resolve("clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("resolution not stable: %q vs %q", first, second)
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	resolver := NewResolver(t.TempDir())
	for _, input := range []string{"", "../etc/passwd", "separated/../../x.wav"} {
		if _, err := resolver.Resolve(input); !errors.Is(err, services.ErrValidation) {
			t.Errorf("Resolve(%q): expected validation error, got %v", input, err)
		}
	}
}

func TestArtifactNames(t *testing.T) {
	asset := New("/data", "my song.mp4")
	if asset.Stem() != "my song" {
		t.Fatalf("stem: %q", asset.Stem())
	}
	if asset.AudioPath() != "/data/my song.mp3" {
		t.Fatalf("audio: %q", asset.AudioPath())
	}
	if asset.VocalsPath() != "/data/separated/my song_vocals.wav" {
		t.Fatalf("vocals: %q", asset.VocalsPath())
	}
	if asset.InstrumentalPath() != "/data/separated/my song_no_vocals.wav" {
		t.Fatalf("instrumental: %q", asset.InstrumentalPath())
	}
	if asset.AICoverPath() != "/data/ai_cover_my song.wav" {
		t.Fatalf("ai cover: %q", asset.AICoverPath())
	}
	if asset.MixedExportPath() != "/data/mixed_export_my song.mp3" {
		t.Fatalf("mixed export: %q", asset.MixedExportPath())
	}
	if asset.ExportedName() != "exported_my song.mp4" {
		t.Fatalf("exported: %q", asset.ExportedName())
	}
	if asset.DisplayTitle() != "My Song" {
		t.Fatalf("title: %q", asset.DisplayTitle())
	}
}
