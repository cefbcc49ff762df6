package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/api"
	"github.com/yisikawa/LyricSyncAI/internal/assets"
	"github.com/yisikawa/LyricSyncAI/internal/deps"
	"github.com/yisikawa/LyricSyncAI/internal/logging"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services"
	"github.com/yisikawa/LyricSyncAI/internal/subtitles"
	"github.com/yisikawa/LyricSyncAI/internal/textutil"
)

const maxUploadBytes = 2 << 30

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".mov": {}, ".avi": {}, ".webm": {}, ".m4v": {},
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart field \"file\" required")
		return
	}
	defer file.Close()

	name := textutil.SanitizeFileName(filepath.Base(strings.TrimSpace(header.Filename)))
	if name == "" || name == "." || name == string(filepath.Separator) {
		s.writeError(w, http.StatusBadRequest, "upload has no usable file name")
		return
	}
	if !isVideoUpload(header.Header.Get("Content-Type"), name) {
		s.writeError(w, http.StatusBadRequest, "only video uploads are accepted")
		return
	}

	destPath := filepath.Join(s.cfg.Paths.AssetRoot, name)
	if err := saveUpload(file, destPath); err != nil {
		s.logger.Error("upload save failed", logging.String("asset", name), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	asset := assets.New(s.cfg.Paths.AssetRoot, name)
	run, err := s.store.NewRun(r.Context(), asset.Name(), asset.Stem())
	if err != nil {
		s.logger.Error("run creation failed", logging.String("asset", name), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to record upload")
		return
	}
	if err := s.scheduler.Enqueue(run); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, services.UserMessage(err))
		return
	}

	s.logger.Info("upload accepted",
		logging.String("asset", name),
		logging.String("run_id", run.ID))
	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Filename: name,
		URL:      s.publicURL("/uploads/" + name),
		RunID:    run.ID,
	})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	source, err := s.resolver.Resolve(req.FilePath)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	language := req.Language
	if language == "" {
		language = s.cfg.Whisper.Language
	}

	segments, err := s.transcriber.Transcribe(r.Context(), source, language)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	converted := api.FromSegments(segments)
	s.writeJSON(w, http.StatusOK, api.TranscribeResponse{
		Text:     joinSegmentTexts(converted),
		Language: language,
		Segments: converted,
	})
}

func (s *Server) handleTranscribeLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	source, err := s.resolver.Resolve(req.FilePath)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	language := req.Language
	if language == "" {
		language = s.cfg.Whisper.Language
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for item := range s.transcriber.Stream(r.Context(), source, language) {
		if item.Err != nil {
			// Terminal element: the error alone, ending the stream.
			_ = enc.Encode(map[string]string{"error": services.UserMessage(item.Err)})
			if flusher != nil {
				flusher.Flush()
			}
			return
		}
		if err := enc.Encode(api.FromSegment(item.Segment)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// joinSegmentTexts builds the whole-file transcript from the ordered
// segment texts.
func joinSegmentTexts(segments []api.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, segment.Text)
	}
	return strings.Join(parts, "\n")
}

func (s *Server) handleSeparate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SeparateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.FilePath) == "" {
		s.writeError(w, http.StatusBadRequest, "file_path required")
		return
	}

	asset := assets.New(s.cfg.Paths.AssetRoot, req.FilePath)
	ctx := r.Context()

	if fileExists(asset.VocalsPath()) && fileExists(asset.InstrumentalPath()) {
		s.writeJSON(w, http.StatusOK, api.SeparateResponse{
			VocalsURL:       s.publicURL("/uploads/separated/" + filepath.Base(asset.VocalsPath())),
			InstrumentalURL: s.publicURL("/uploads/separated/" + filepath.Base(asset.InstrumentalPath())),
		})
		return
	}

	audioPath := asset.AudioPath()
	if !fileExists(audioPath) {
		if !fileExists(asset.SourcePath()) {
			s.writeError(w, http.StatusNotFound, "no uploaded file named "+asset.Name())
			return
		}
		if err := s.extractor.Extract(ctx, asset.SourcePath(), audioPath); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.recordArtifact(ctx, asset.Stem(), runs.ArtifactAudio, audioPath)
	}

	result, err := s.separator.Separate(ctx, audioPath, s.cfg.SeparatedDir(), asset.Stem())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.recordArtifact(ctx, asset.Stem(), runs.ArtifactVocals, result.VocalsPath)
	s.recordArtifact(ctx, asset.Stem(), runs.ArtifactInstrumental, result.InstrumentalPath)

	s.writeJSON(w, http.StatusOK, api.SeparateResponse{
		VocalsURL:       s.publicURL("/uploads/separated/" + filepath.Base(result.VocalsPath)),
		InstrumentalURL: s.publicURL("/uploads/separated/" + filepath.Base(result.InstrumentalPath)),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		s.writeError(w, http.StatusBadRequest, "file_name required")
		return
	}

	asset := assets.New(s.cfg.Paths.AssetRoot, req.FileName)
	if !fileExists(asset.SourcePath()) {
		s.writeError(w, http.StatusNotFound, "no uploaded file named "+asset.Name())
		return
	}
	ctx := r.Context()

	if err := subtitles.WriteFile(asset.SubtitlePath(), api.ToCues(req.Segments)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.recordArtifact(ctx, asset.Stem(), runs.ArtifactSubtitles, asset.SubtitlePath())

	replaceAudio := ""
	if req.UseMixedAudio {
		mixed, err := s.mixStems(ctx, asset)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.recordArtifact(ctx, asset.Stem(), runs.ArtifactMixedExport, mixed)
		replaceAudio = mixed
	}

	burnReq := subtitles.BurnRequest{
		Video:        asset.SourcePath(),
		Subtitle:     asset.SubtitlePath(),
		ReplaceAudio: replaceAudio,
		Dest:         asset.ExportedPath(),
	}
	if err := s.burner.Burn(ctx, burnReq); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.recordArtifact(ctx, asset.Stem(), runs.ArtifactExported, asset.ExportedPath())

	s.logger.Info("export complete",
		logging.String("asset", asset.Name()),
		logging.Int("segments", len(req.Segments)))
	s.writeJSON(w, http.StatusOK, api.ExportResponse{
		URL: s.publicURL("/uploads/" + asset.ExportedName()),
	})
}

// mixStems blends the best available vocal with the instrumental stem
// into the asset's mixed export file. The converted vocal wins over the
// raw separated one when both exist.
func (s *Server) mixStems(ctx context.Context, asset assets.Asset) (string, error) {
	vocals := asset.VocalsPath()
	if fileExists(asset.AICoverPath()) {
		vocals = asset.AICoverPath()
	}
	if !fileExists(vocals) || !fileExists(asset.InstrumentalPath()) {
		return "", services.Wrap(services.ErrNoSource, "export", "mix",
			"separated stems not found for "+asset.Stem()+"; run separation first", nil)
	}
	dest := asset.MixedExportPath()
	if err := s.mixer.Mix(ctx, vocals, asset.InstrumentalPath(), dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	statuses := deps.CheckBinaries(deps.Requirements(s.cfg))
	statuses = append(statuses, deps.CheckVoiceModel(s.cfg)...)

	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:      true,
		Dependencies: api.DependencySlice(statuses),
		StageHealth:  api.StageHealthSlice(s.scheduler.Health(r.Context())),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var filters []runs.Status
	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, ok := runs.ParseStatus(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status "+raw)
			return
		}
		filters = append(filters, status)
	}

	list, err := s.store.List(r.Context(), filters...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: api.FromRuns(list)})
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	run, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	artifacts, err := s.store.ArtifactsForStem(r.Context(), run.Stem)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunDetailResponse{
		Run:       api.FromRun(run),
		Artifacts: api.FromArtifacts(artifacts),
	})
}

// writeServiceError maps wrapped service errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNoSource), errors.Is(err, services.ErrResourceMissing):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConfiguration):
		status = http.StatusServiceUnavailable
	}
	s.writeError(w, status, services.UserMessage(err))
}

// recordArtifact is best effort: a manifest write failure never fails
// the request that produced the file.
func (s *Server) recordArtifact(ctx context.Context, stem, kind, path string) {
	if _, err := s.store.RecordArtifact(ctx, stem, kind, path); err != nil {
		s.logger.Warn("artifact record failed",
			logging.String("stem", stem),
			logging.String("kind", kind),
			logging.Error(err))
	}
}

func (s *Server) publicURL(path string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.Paths.BaseURL), "/")
	return base + path
}

func isVideoUpload(contentType, name string) bool {
	if strings.HasPrefix(contentType, "video/") {
		return true
	}
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func saveUpload(src io.Reader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return err
	}
	return dest.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
