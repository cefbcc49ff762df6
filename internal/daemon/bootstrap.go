package daemon

import (
	"log/slog"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/extraction"
	"github.com/yisikawa/LyricSyncAI/internal/media/mixer"
	"github.com/yisikawa/LyricSyncAI/internal/modelcache"
	"github.com/yisikawa/LyricSyncAI/internal/pipeline"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
	"github.com/yisikawa/LyricSyncAI/internal/server"
	"github.com/yisikawa/LyricSyncAI/internal/services/demucs"
	"github.com/yisikawa/LyricSyncAI/internal/services/rvc"
	"github.com/yisikawa/LyricSyncAI/internal/services/whisper"
	"github.com/yisikawa/LyricSyncAI/internal/subtitles"
)

// Bootstrap wires the full service graph around one shared model registry
// and returns a ready-to-start daemon. Both the lyricsyncd binary and the
// CLI serve command use it. The caller owns the registry and must Close it
// after the daemon stops.
func Bootstrap(cfg *config.Config, store *runs.Store, logger *slog.Logger) (*Daemon, *modelcache.Registry, error) {
	registry := modelcache.NewRegistry(logger)

	extractor := extraction.New(cfg.FFmpeg.Binary, cfg.FFmpeg.ProbeBinary)
	separator := demucs.NewSeparator(cfg.Demucs, cfg.FFmpeg.Binary, registry)
	converter := rvc.NewConverter(cfg.RVC, registry)
	transcriber := whisper.NewTranscriber(cfg.Whisper, registry)
	stemMixer := mixer.New(cfg.FFmpeg.Binary, cfg.Mixer.VocalGain, cfg.Mixer.InstrumentalGain)
	burner := subtitles.NewBurner(cfg.FFmpeg.Binary, cfg.Export.VideoCodec, cfg.Export.CRF)

	manager := pipeline.NewManager(cfg, store, logger, extractor, separator, converter)
	srv := server.New(cfg, store, logger, manager, transcriber, separator, extractor, stemMixer, burner)

	d, err := New(cfg, store, logger, manager, srv)
	if err != nil {
		registry.Close()
		return nil, nil, err
	}
	return d, registry, nil
}
