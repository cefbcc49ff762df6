package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRVC(); err != nil {
		return err
	}
	c.normalizeBinaries()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AssetRoot, err = expandPath(c.Paths.AssetRoot); err != nil {
		return fmt.Errorf("paths.asset_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.BaseURL = strings.TrimRight(strings.TrimSpace(c.Paths.BaseURL), "/")
	if c.Paths.BaseURL == "" {
		c.Paths.BaseURL = "http://" + c.Paths.APIBind
	}
	return nil
}

func (c *Config) normalizeRVC() error {
	var err error
	if c.RVC.ModelPath, err = expandPath(c.RVC.ModelPath); err != nil {
		return fmt.Errorf("rvc.model_path: %w", err)
	}
	if c.RVC.IndexPath, err = expandPath(c.RVC.IndexPath); err != nil {
		return fmt.Errorf("rvc.index_path: %w", err)
	}
	if strings.TrimSpace(c.RVC.F0Method) == "" {
		c.RVC.F0Method = defaultF0Method
	}
	return nil
}

func (c *Config) normalizeBinaries() {
	trim := func(value, fallback string) string {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
		return fallback
	}
	c.Whisper.Binary = trim(c.Whisper.Binary, defaultWhisperBinary)
	c.Demucs.Binary = trim(c.Demucs.Binary, defaultDemucsBinary)
	c.RVC.Binary = trim(c.RVC.Binary, defaultRVCBinary)
	c.FFmpeg.Binary = trim(c.FFmpeg.Binary, defaultFFmpegBinary)
	c.FFmpeg.ProbeBinary = trim(c.FFmpeg.ProbeBinary, defaultProbeBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
