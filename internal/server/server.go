package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yisikawa/LyricSyncAI/internal/assets"
	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/logging"
	"github.com/yisikawa/LyricSyncAI/internal/media/mixer"
	"github.com/yisikawa/LyricSyncAI/internal/pipeline"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/services/demucs"
	"github.com/yisikawa/LyricSyncAI/internal/services/whisper"
	"github.com/yisikawa/LyricSyncAI/internal/stage"
	"github.com/yisikawa/LyricSyncAI/internal/subtitles"
)

// RunScheduler is the slice of the pipeline manager the server needs.
type RunScheduler interface {
	Enqueue(run *runs.Run) error
	Health(ctx context.Context) []stage.Health
}

// Transcriber streams or collects lyric segments for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]whisper.Segment, error)
	Stream(ctx context.Context, audioPath, language string) <-chan whisper.StreamItem
}

// StemSeparator matches the separation service for the synchronous
// /separate endpoint.
type StemSeparator = pipeline.StemSeparator

// AudioExtractor matches the extraction service.
type AudioExtractor = pipeline.AudioExtractor

// StemMixer blends stems for export.
type StemMixer interface {
	Mix(ctx context.Context, vocals, instrumental, dest string) error
}

// SubtitleBurner renders subtitles into video frames.
type SubtitleBurner interface {
	Burn(ctx context.Context, req subtitles.BurnRequest) error
}

// Server exposes the pipeline over HTTP.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *runs.Store
	resolver assets.Resolver

	scheduler   RunScheduler
	transcriber Transcriber
	separator   StemSeparator
	extractor   AudioExtractor
	mixer       StemMixer
	burner      SubtitleBurner

	listener net.Listener
	server   *http.Server
}

// New assembles the HTTP server around the given services.
func New(cfg *config.Config, store *runs.Store, logger *slog.Logger, scheduler RunScheduler, transcriber Transcriber, separator StemSeparator, extractor AudioExtractor, stemMixer StemMixer, burner SubtitleBurner) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "api-server"),
		store:       store,
		resolver:    assets.NewResolver(cfg.Paths.AssetRoot),
		scheduler:   scheduler,
		transcriber: transcriber,
		separator:   separator,
		extractor:   extractor,
		mixer:       stemMixer,
		burner:      burner,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/transcribe", s.handleTranscribe)
	mux.HandleFunc("/transcribe-live", s.handleTranscribeLive)
	mux.HandleFunc("/separate", s.handleSeparate)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRunDetail)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.Paths.AssetRoot))))
	return mux
}

// Start begins serving on the configured bind address. It returns once
// the listener is up; ctx cancellation triggers a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

var (
	_ StemMixer      = (*mixer.Mixer)(nil)
	_ SubtitleBurner = (*subtitles.Burner)(nil)
	_ Transcriber    = (*whisper.Transcriber)(nil)
	_ StemSeparator  = (*demucs.Separator)(nil)
)
