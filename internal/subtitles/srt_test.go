package subtitles

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{59.999, "00:00:59,999"},
		{61.25, "00:01:01,250"},
		{3725.999, "01:02:05,999"},
		{-5, "00:00:00,000"},
		// Sub-millisecond fractions truncate.
		{1.2345, "00:00:01,234"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.expected {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 2.5, Text: "最初の行"},
		{Start: 2.5, End: 4, Text: "  "},
		{Start: 4, End: 6.75, Text: "second line"},
	}

	var buf bytes.Buffer
	if err := WriteSRT(&buf, cues); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\n最初の行\n\n" +
		"2\n00:00:04,000 --> 00:00:06,750\nsecond line\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected srt output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteSRTIndicesStayContiguous(t *testing.T) {
	cues := []Cue{
		{Index: 7, Start: 0, End: 1, Text: "a"},
		{Index: 99, Start: 1, End: 2, Text: "b"},
	}
	var buf bytes.Buffer
	if err := WriteSRT(&buf, cues); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "1\n") || !strings.Contains(buf.String(), "\n\n2\n") {
		t.Fatalf("indices not renumbered:\n%s", buf.String())
	}
}

func TestWriteAndParseFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{
		{Start: 0.25, End: 2.5, Text: "hello"},
		{Start: 3, End: 5.125, Text: "two\nlines"},
	}
	if err := WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(parsed))
	}
	if parsed[0].Start != 0.25 || parsed[0].End != 2.5 || parsed[0].Text != "hello" {
		t.Fatalf("unexpected first cue: %+v", parsed[0])
	}
	if parsed[1].Text != "two\nlines" {
		t.Fatalf("multi-line text lost: %+v", parsed[1])
	}
}

func TestParseFileSkipsMalformedBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.srt")
	content := "1\n00:00:00,000 --> 00:00:01,000\nok\n\n" +
		"not a number\n00:00:01,000 --> 00:00:02,000\nbad\n\n" +
		"3\nmissing arrow\nbad\n\n" +
		"4\n00:00:03,000 --> 00:00:04,000\nalso ok\n"
	if err := writeTestFile(path, content); err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 valid cues, got %d", len(parsed))
	}
	if parsed[1].Text != "also ok" {
		t.Fatalf("unexpected second cue: %+v", parsed[1])
	}
}

func TestParseFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.srt")
	if err := writeTestFile(path, "\n\n"); err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != nil {
		t.Fatalf("expected nil cues, got %+v", parsed)
	}
}
