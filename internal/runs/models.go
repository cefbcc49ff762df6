package runs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusUploaded       Status = "uploaded"
	StatusExtracting     Status = "extracting"
	StatusAudioExtracted Status = "audio_extracted"
	StatusSeparating     Status = "separating"
	StatusSeparated      Status = "separated"
	StatusConverting     Status = "converting"
	StatusConverted      Status = "converted"
	StatusReady          Status = "ready"
	StatusFailed         Status = "failed"
)

var allStatuses = []Status{
	StatusUploaded,
	StatusExtracting,
	StatusAudioExtracted,
	StatusSeparating,
	StatusSeparated,
	StatusConverting,
	StatusConverted,
	StatusReady,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting: {},
	StatusSeparating: {},
	StatusConverting: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Conversion outcome values persisted on a run. Conversion is best-effort:
// a skipped conversion still yields a ready run.
const (
	ConversionApplied = "converted"
	ConversionSkipped = "skipped"
)

// Run represents one background pipeline invocation over an uploaded asset.
// Runs are observability records; the artifacts on disk remain the
// authoritative stage-completion signal.
type Run struct {
	ID                string
	Asset             string
	Stem              string
	Status            Status
	ErrorMessage      string
	ConversionOutcome string
	ConversionDetail  string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (r Run) IsProcessing() bool {
	_, ok := processingStatuses[r.Status]
	return ok
}

// Terminal returns true once the run can make no further progress.
func (r Run) Terminal() bool {
	return r.Status == StatusReady || r.Status == StatusFailed
}

// Artifact kinds recorded in the manifest.
const (
	ArtifactAudio        = "audio"
	ArtifactVocals       = "vocals"
	ArtifactInstrumental = "instrumental"
	ArtifactAICover      = "ai_cover"
	ArtifactMixedExport  = "mixed_export"
	ArtifactSubtitles    = "subtitles"
	ArtifactExported     = "exported"
)

// Artifact is a manifest entry for one derived file. The manifest exists so
// operators can audit what was produced and when; stages consult the
// filesystem, not the manifest, when resolving inputs.
type Artifact struct {
	ID        int64
	Stem      string
	Kind      string
	Path      string
	SHA256    string
	SizeBytes int64
	CreatedAt time.Time
}
