package rvc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/config"
	"github.com/yisikawa/LyricSyncAI/internal/modelcache"
	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Converter reshapes a vocal stem into the configured AI voice.
type Converter struct {
	cfg      config.RVC
	registry *modelcache.Registry

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewConverter creates a converter backed by the shared model registry.
func NewConverter(cfg config.RVC, registry *modelcache.Registry) *Converter {
	return &Converter{cfg: cfg, registry: registry}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Converter) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	c.commandRunner = runner
}

// Configured reports whether a voice model is set up. Unconfigured
// conversion is not an error; runs simply skip the stage.
func (c *Converter) Configured() bool {
	return strings.TrimSpace(c.cfg.ModelPath) != ""
}

// Convert renders vocalsPath through the voice model into destPath.
// The engine occasionally exits zero without writing output, so the
// destination is verified before reporting success.
func (c *Converter) Convert(ctx context.Context, vocalsPath, destPath string) error {
	if strings.TrimSpace(vocalsPath) == "" || strings.TrimSpace(destPath) == "" {
		return services.Wrap(services.ErrValidation, "conversion", "convert", "vocal and destination paths required", nil)
	}
	if !c.Configured() {
		return services.Wrap(services.ErrConfiguration, "conversion", "convert", "no voice model configured", nil)
	}

	handle, err := c.acquireModel(ctx)
	if err != nil {
		return services.Wrap(services.ErrResourceMissing, "conversion", "load_model", "prepare voice model", err)
	}

	args := c.buildArgs(vocalsPath, destPath, handle.ResolvedDevice)
	if err := c.run(ctx, c.cfg.Binary, args...); err != nil {
		return services.Wrap(services.ErrInference, "conversion", "rvc", "voice conversion failed", err)
	}

	info, err := os.Stat(destPath)
	if err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrInference, "conversion", "rvc", "engine produced no output", err)
	}
	return nil
}

func (c *Converter) buildArgs(vocalsPath, destPath, device string) []string {
	args := []string{
		"cli",
		"-i", vocalsPath,
		"-o", destPath,
		"-mp", c.cfg.ModelPath,
		"-pi", strconv.Itoa(c.cfg.PitchShift),
		"-me", c.cfg.F0Method,
		"-ir", strconv.FormatFloat(c.cfg.IndexRate, 'g', -1, 64),
		"-de", device,
	}
	if index := strings.TrimSpace(c.cfg.IndexPath); index != "" {
		args = append(args, "-ip", index)
	}
	return args
}

func (c *Converter) acquireModel(ctx context.Context) (*modelcache.Handle, error) {
	device := modelcache.DeviceCPU
	if c.cfg.CUDAEnabled {
		device = modelcache.DeviceCUDA
	}
	key := modelcache.Key{Kind: modelcache.KindConverter, Identifier: c.cfg.ModelPath, Device: device}
	return c.registry.Acquire(ctx, key, func(_ context.Context, _, dev string) (any, func() error, error) {
		if _, err := exec.LookPath(c.cfg.Binary); err != nil {
			return nil, nil, fmt.Errorf("rvc binary: %w", err)
		}
		if _, err := os.Stat(c.cfg.ModelPath); err != nil {
			return nil, nil, fmt.Errorf("voice model: %w", err)
		}
		if dev == modelcache.DeviceCUDA {
			if _, err := exec.LookPath("nvidia-smi"); err != nil {
				return nil, nil, fmt.Errorf("cuda unavailable: %w", err)
			}
		}
		return c.cfg.ModelPath, nil, nil
	})
}

func (c *Converter) run(ctx context.Context, name string, args ...string) error {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
