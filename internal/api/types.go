package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Run describes a pipeline run in a transport-friendly format.
type Run struct {
	ID                string `json:"id"`
	Asset             string `json:"asset"`
	Stem              string `json:"stem"`
	Status            string `json:"status"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
	ConversionOutcome string `json:"conversionOutcome,omitempty"`
	ConversionDetail  string `json:"conversionDetail,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
}

// Artifact describes a manifest entry for one derived file.
type Artifact struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"sizeBytes"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Segment is one timed span of transcribed lyrics.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// UploadResponse is returned after a video upload is accepted.
type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	RunID    string `json:"run_id"`
}

// TranscribeRequest asks for lyrics of an uploaded or derived audio file.
type TranscribeRequest struct {
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
}

// TranscribeResponse carries the transcript and full segment list for
// a file. Text is the segment texts joined in order.
type TranscribeResponse struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// StreamElement is one NDJSON line of a live transcription stream.
// Segment fields sit flat on the element; the terminal element of a
// failed stream carries only error. Servers encode a Segment or an
// error object directly, clients decode either into this union.
type StreamElement struct {
	Segment
	Error string `json:"error,omitempty"`
}

// SeparateRequest asks for vocal/instrumental stems of an upload.
type SeparateRequest struct {
	FilePath string `json:"file_path"`
}

// SeparateResponse reports where the separated stems were published.
type SeparateResponse struct {
	VocalsURL       string `json:"vocals_url"`
	InstrumentalURL string `json:"instrumental_url"`
}

// ExportRequest asks for a subtitle burn of an uploaded video. Segments
// carry the (possibly edited) lyric timings; UseMixedAudio swaps the
// video's audio for a fresh vocal/instrumental mix.
type ExportRequest struct {
	FileName      string    `json:"file_name"`
	Segments      []Segment `json:"segments"`
	UseMixedAudio bool      `json:"use_mixed_audio"`
}

// ExportResponse reports where the burned video was published.
type ExportResponse struct {
	URL string `json:"url"`
}

// StatusResponse summarizes daemon readiness for the status endpoint.
type StatusResponse struct {
	Running      bool               `json:"running"`
	Dependencies []DependencyStatus `json:"dependencies"`
	StageHealth  []StageHealth      `json:"stageHealth"`
}

// RunListResponse wraps the run listing endpoint payload.
type RunListResponse struct {
	Runs []Run `json:"runs"`
}

// RunDetailResponse pairs a run with its recorded artifacts.
type RunDetailResponse struct {
	Run       Run        `json:"run"`
	Artifacts []Artifact `json:"artifacts"`
}
