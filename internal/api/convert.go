package api

import (
	"time"

	"github.com/yisikawa/LyricSyncAI/internal/deps"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services/whisper"
	"github.com/yisikawa/LyricSyncAI/internal/stage"
	"github.com/yisikawa/LyricSyncAI/internal/subtitles"
)

// FromRun converts a stored run into its transport form.
func FromRun(run *runs.Run) Run {
	if run == nil {
		return Run{}
	}
	return Run{
		ID:                run.ID,
		Asset:             run.Asset,
		Stem:              run.Stem,
		Status:            string(run.Status),
		ErrorMessage:      run.ErrorMessage,
		ConversionOutcome: run.ConversionOutcome,
		ConversionDetail:  run.ConversionDetail,
		CreatedAt:         FormatTime(run.CreatedAt),
		UpdatedAt:         FormatTime(run.UpdatedAt),
	}
}

// FromRuns converts a run slice, preserving order.
func FromRuns(list []*runs.Run) []Run {
	out := make([]Run, 0, len(list))
	for _, run := range list {
		out = append(out, FromRun(run))
	}
	return out
}

// FromArtifacts converts manifest entries into their transport form.
func FromArtifacts(list []runs.Artifact) []Artifact {
	out := make([]Artifact, 0, len(list))
	for _, artifact := range list {
		out = append(out, Artifact{
			Kind:      artifact.Kind,
			Path:      artifact.Path,
			SHA256:    artifact.SHA256,
			SizeBytes: artifact.SizeBytes,
			CreatedAt: FormatTime(artifact.CreatedAt),
		})
	}
	return out
}

// FromSegment converts a transcription segment into its transport form.
func FromSegment(seg whisper.Segment) Segment {
	return Segment{ID: seg.ID, Start: seg.Start, End: seg.End, Text: seg.Text}
}

// FromSegments converts a segment slice, preserving order.
func FromSegments(segs []whisper.Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		out = append(out, FromSegment(seg))
	}
	return out
}

// ToCues converts transport segments into subtitle cues for SRT output.
func ToCues(segs []Segment) []subtitles.Cue {
	out := make([]subtitles.Cue, 0, len(segs))
	for _, seg := range segs {
		out = append(out, subtitles.Cue{Index: seg.ID, Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return out
}

// StageHealthSlice converts stage health records, preserving order.
func StageHealthSlice(health []stage.Health) []StageHealth {
	out := make([]StageHealth, 0, len(health))
	for _, h := range health {
		out = append(out, StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// DependencySlice converts dependency check results, preserving order.
func DependencySlice(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Detail:      s.Detail,
		})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
