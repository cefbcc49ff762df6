package wavio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
)

func testClip() *Clip {
	return &Clip{
		Format:  Format{SampleRate: 44100, Channels: 2},
		Samples: []int16{0, 100, -100, 32767, -32768, 1, 2, 3},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := testClip()

	var buf bytes.Buffer
	if err := Encode(&buf, original); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Format != original.Format {
		t.Fatalf("format mismatch: %+v vs %+v", decoded.Format, original.Format)
	}
	if len(decoded.Samples) != len(original.Samples) {
		t.Fatalf("sample count mismatch: %d vs %d", len(decoded.Samples), len(original.Samples))
	}
	for i := range original.Samples {
		if decoded.Samples[i] != original.Samples[i] {
			t.Fatalf("sample %d: %d != %d", i, decoded.Samples[i], original.Samples[i])
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	original := testClip()

	if err := WriteFile(path, original); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	decoded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if decoded.Duration() != original.Duration() {
		t.Fatalf("duration mismatch: %v vs %v", decoded.Duration(), original.Duration())
	}
}

func TestDecodeSkipsMetadataChunks(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testClip()); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	// Splice a LIST chunk between fmt and data.
	list := make([]byte, 8+4)
	copy(list[0:4], "LIST")
	binary.LittleEndian.PutUint32(list[4:8], 4)
	copy(list[8:12], "INFO")

	spliced := append(append(append([]byte(nil), raw[:36]...), list...), raw[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	decoded, err := Decode(bytes.NewReader(spliced))
	if err != nil {
		t.Fatalf("Decode with LIST chunk: %v", err)
	}
	if len(decoded.Samples) != len(testClip().Samples) {
		t.Fatalf("unexpected sample count: %d", len(decoded.Samples))
	}
}

func TestDecodeRejectsNonPCM(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testClip()); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	// Rewrite format tag to IEEE float.
	binary.LittleEndian.PutUint16(raw[20:22], 3)

	_, err := Decode(bytes.NewReader(raw))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not a wav file at all"))); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestDuration(t *testing.T) {
	clip := &Clip{
		Format:  Format{SampleRate: 8000, Channels: 2},
		Samples: make([]int16, 16000),
	}
	if got := clip.Duration(); got != 1.0 {
		t.Fatalf("expected 1s, got %v", got)
	}
}
