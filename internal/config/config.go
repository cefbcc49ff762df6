package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	AssetRoot string `toml:"asset_root"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
	BaseURL   string `toml:"base_url"`
}

// Whisper contains the speech recognition decoding configuration. The values
// map directly onto whisper CLI flags and are held fixed per transcription.
type Whisper struct {
	Binary                  string  `toml:"binary"`
	Model                   string  `toml:"model"`
	Language                string  `toml:"language"`
	BeamSize                int     `toml:"beam_size"`
	BestOf                  int     `toml:"best_of"`
	Temperature             float64 `toml:"temperature"`
	TemperatureIncrement    float64 `toml:"temperature_increment_on_fallback"`
	LogProbThreshold        float64 `toml:"logprob_threshold"`
	NoSpeechThreshold       float64 `toml:"no_speech_threshold"`
	InitialPrompt           string  `toml:"initial_prompt"`
	ConditionOnPreviousText bool    `toml:"condition_on_previous_text"`
	CUDAEnabled             bool    `toml:"cuda_enabled"`
}

// Demucs contains source separation settings.
type Demucs struct {
	Binary      string  `toml:"binary"`
	Model       string  `toml:"model"`
	Overlap     float64 `toml:"overlap"`
	Shifts      int     `toml:"shifts"`
	CUDAEnabled bool    `toml:"cuda_enabled"`
}

// RVC contains voice conversion settings. Conversion is skipped entirely when
// no model path is configured.
type RVC struct {
	Binary      string  `toml:"binary"`
	ModelPath   string  `toml:"model_path"`
	IndexPath   string  `toml:"index_path"`
	PitchShift  int     `toml:"pitch_shift"`
	F0Method    string  `toml:"f0_method"`
	IndexRate   float64 `toml:"index_rate"`
	CUDAEnabled bool    `toml:"cuda_enabled"`
}

// Mixer contains gain settings for the AI-cover mix.
type Mixer struct {
	VocalGain        float64 `toml:"vocal_gain"`
	InstrumentalGain float64 `toml:"instrumental_gain"`
}

// Export contains subtitle burn-in encoder settings.
type Export struct {
	VideoCodec string `toml:"video_codec"`
	CRF        int    `toml:"crf"`
}

// FFmpeg contains transcoder binary locations.
type FFmpeg struct {
	Binary      string `toml:"binary"`
	ProbeBinary string `toml:"probe_binary"`
}

// Workflow contains pipeline scheduling settings.
type Workflow struct {
	MaxConcurrentRuns int `toml:"max_concurrent_runs"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the LyricSyncAI backend.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Whisper  Whisper  `toml:"whisper"`
	Demucs   Demucs   `toml:"demucs"`
	RVC      RVC      `toml:"rvc"`
	Mixer    Mixer    `toml:"mixer"`
	Export   Export   `toml:"export"`
	FFmpeg   FFmpeg   `toml:"ffmpeg"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lyricsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lyricsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// SeparatedDirName is the sub-area of the asset root where stem outputs live.
const SeparatedDirName = "separated"

// SeparatedDir returns the directory for separated stem outputs.
func (c *Config) SeparatedDir() string {
	return filepath.Join(c.Paths.AssetRoot, SeparatedDirName)
}

// EnsureDirectories creates the asset root, separated sub-area, and log
// directory when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AssetRoot, c.SeparatedDir(), c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	return abs, nil
}
