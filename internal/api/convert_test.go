package api

import (
	"testing"
	"time"

	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services/whisper"
)

func TestFromRun(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	run := &runs.Run{
		ID:                "run-1",
		Asset:             "song.mp4",
		Stem:              "song",
		Status:            runs.StatusReady,
		ConversionOutcome: runs.ConversionSkipped,
		ConversionDetail:  "voice model not configured",
		CreatedAt:         created,
		UpdatedAt:         created,
	}

	view := FromRun(run)
	if view.ID != "run-1" || view.Status != "ready" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.ConversionOutcome != "skipped" {
		t.Fatalf("expected skipped conversion outcome, got %q", view.ConversionOutcome)
	}
	if view.CreatedAt != "2025-03-14T09:26:53.000Z" {
		t.Fatalf("unexpected timestamp %q", view.CreatedAt)
	}
}

func TestFromRunNil(t *testing.T) {
	view := FromRun(nil)
	if view.ID != "" || view.Status != "" {
		t.Fatalf("expected zero view for nil run, got %+v", view)
	}
}

func TestFormatTimeZero(t *testing.T) {
	if got := FormatTime(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}

func TestToCuesPreservesTiming(t *testing.T) {
	segs := FromSegments([]whisper.Segment{
		{ID: 1, Start: 0.5, End: 2.25, Text: "hello"},
		{ID: 2, Start: 2.25, End: 4.0, Text: "world"},
	})
	cues := ToCues(segs)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 0.5 || cues[1].End != 4.0 {
		t.Fatalf("timing not preserved: %+v", cues)
	}
	if cues[1].Text != "world" {
		t.Fatalf("text not preserved: %+v", cues[1])
	}
}
