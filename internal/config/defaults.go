package config

const (
	defaultAssetRoot = "~/.local/share/lyricsync/uploads"
	defaultLogDir    = "~/.local/share/lyricsync/logs"
	defaultAPIBind   = "127.0.0.1:8001"

	defaultWhisperBinary     = "whisper"
	defaultWhisperModel      = "medium"
	defaultWhisperLanguage   = "ja"
	defaultBeamSize          = 5
	defaultBestOf            = 5
	defaultTemperatureStep   = 0.2
	defaultLogProbThreshold  = -1.0
	defaultNoSpeechThreshold = 0.6
	defaultInitialPrompt     = "歌詞"

	defaultDemucsBinary  = "demucs"
	defaultDemucsModel   = "htdemucs"
	defaultDemucsOverlap = 0.25
	defaultDemucsShifts  = 1

	defaultRVCBinary    = "rvc"
	defaultF0Method     = "rmvpe"
	defaultIndexRate    = 0.75
	defaultPitchShift   = 0
	defaultMixGain      = 1.0
	defaultVideoCodec   = "libx264"
	defaultExportCRF    = 23
	defaultFFmpegBinary = "ffmpeg"
	defaultProbeBinary  = "ffprobe"

	defaultMaxConcurrentRuns = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a configuration populated with defaults. Paths remain in
// unexpanded form until normalize runs.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetRoot: defaultAssetRoot,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Whisper: Whisper{
			Binary:                  defaultWhisperBinary,
			Model:                   defaultWhisperModel,
			Language:                defaultWhisperLanguage,
			BeamSize:                defaultBeamSize,
			BestOf:                  defaultBestOf,
			Temperature:             0.0,
			TemperatureIncrement:    defaultTemperatureStep,
			LogProbThreshold:        defaultLogProbThreshold,
			NoSpeechThreshold:       defaultNoSpeechThreshold,
			InitialPrompt:           defaultInitialPrompt,
			ConditionOnPreviousText: false,
		},
		Demucs: Demucs{
			Binary:  defaultDemucsBinary,
			Model:   defaultDemucsModel,
			Overlap: defaultDemucsOverlap,
			Shifts:  defaultDemucsShifts,
		},
		RVC: RVC{
			Binary:     defaultRVCBinary,
			F0Method:   defaultF0Method,
			IndexRate:  defaultIndexRate,
			PitchShift: defaultPitchShift,
		},
		Mixer: Mixer{
			VocalGain:        defaultMixGain,
			InstrumentalGain: defaultMixGain,
		},
		Export: Export{
			VideoCodec: defaultVideoCodec,
			CRF:        defaultExportCRF,
		},
		FFmpeg: FFmpeg{
			Binary:      defaultFFmpegBinary,
			ProbeBinary: defaultProbeBinary,
		},
		Workflow: Workflow{
			MaxConcurrentRuns: defaultMaxConcurrentRuns,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
