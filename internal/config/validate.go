package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.AssetRoot) == "" {
		return fmt.Errorf("paths.asset_root must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: invalid address %q: %w", c.Paths.APIBind, err)
	}

	if c.Whisper.BeamSize < 1 {
		return fmt.Errorf("whisper.beam_size must be at least 1")
	}
	if c.Whisper.BestOf < 1 {
		return fmt.Errorf("whisper.best_of must be at least 1")
	}
	if c.Whisper.Temperature < 0 {
		return fmt.Errorf("whisper.temperature must not be negative")
	}
	if c.Whisper.NoSpeechThreshold < 0 || c.Whisper.NoSpeechThreshold > 1 {
		return fmt.Errorf("whisper.no_speech_threshold must be between 0 and 1")
	}

	if c.Demucs.Overlap < 0 || c.Demucs.Overlap >= 1 {
		return fmt.Errorf("demucs.overlap must be in [0, 1)")
	}
	if c.Demucs.Shifts < 0 {
		return fmt.Errorf("demucs.shifts must not be negative")
	}

	if c.RVC.IndexRate < 0 || c.RVC.IndexRate > 1 {
		return fmt.Errorf("rvc.index_rate must be between 0 and 1")
	}
	switch c.RVC.F0Method {
	case "rmvpe", "crepe", "harvest", "pm", "dio":
	default:
		return fmt.Errorf("rvc.f0_method: unknown method %q", c.RVC.F0Method)
	}

	if c.Mixer.VocalGain < 0 || c.Mixer.InstrumentalGain < 0 {
		return fmt.Errorf("mixer gains must not be negative")
	}

	if c.Export.CRF < 0 || c.Export.CRF > 51 {
		return fmt.Errorf("export.crf must be between 0 and 51")
	}

	if c.Workflow.MaxConcurrentRuns < 1 {
		return fmt.Errorf("workflow.max_concurrent_runs must be at least 1")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
