package modelcache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yisikawa/LyricSyncAI/internal/logging"
)

// Kind names a family of models that share one cache slot. Only one
// handle per kind is resident at a time; acquiring a different key for
// the same kind evicts the previous handle.
type Kind string

const (
	KindTranscriber Kind = "transcriber"
	KindSeparator   Kind = "separator"
	KindConverter   Kind = "converter"
)

// Device selects where inference runs.
const (
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

// Key identifies a loaded model: which family, which model within it,
// and the device it was requested on.
type Key struct {
	Kind       Kind
	Identifier string
	Device     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%s", k.Kind, k.Identifier, k.Device)
}

// Handle is a resident model. ResolvedDevice reports where the model
// actually loaded, which may differ from the requested device when the
// accelerator was unavailable.
type Handle struct {
	Key            Key
	ResolvedDevice string
	Value          any

	closer func() error
}

// Close releases the model's resources. Safe to call on a nil handle.
func (h *Handle) Close() error {
	if h == nil || h.closer == nil {
		return nil
	}
	return h.closer()
}

// Loader constructs a model for the given identifier on the given
// device. Returning an error on an accelerator device triggers a CPU
// retry; the handle's closer may be nil when nothing needs releasing.
type Loader func(ctx context.Context, identifier, device string) (value any, closer func() error, err error)

type slot struct {
	mu     sync.Mutex
	handle *Handle
}

// Registry caches one model handle per kind and serializes loads so
// concurrent requests never construct the same model twice.
type Registry struct {
	logger *slog.Logger

	mu    sync.Mutex
	slots map[Kind]*slot
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		logger: logging.NewComponentLogger(logger, "modelcache"),
		slots:  make(map[Kind]*slot),
	}
}

func (r *Registry) slotFor(kind Kind) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[kind]
	if !ok {
		s = &slot{}
		r.slots[kind] = s
	}
	return s
}

// Acquire returns the cached handle for key, loading it if the slot is
// empty or holds a handle for a different key. A load requested on
// DeviceCUDA falls back to DeviceCPU when the accelerator load fails,
// and the fallback is cached so later acquisitions skip the failed
// attempt.
func (r *Registry) Acquire(ctx context.Context, key Key, load Loader) (*Handle, error) {
	key.Identifier = strings.TrimSpace(key.Identifier)
	if key.Identifier == "" {
		return nil, fmt.Errorf("model identifier cannot be empty")
	}
	if key.Device == "" {
		key.Device = DeviceCPU
	}

	s := r.slotFor(key.Kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil && s.handle.Key == key {
		return s.handle, nil
	}

	if s.handle != nil {
		r.logger.Debug("evicting cached model",
			logging.String("previous", s.handle.Key.String()),
			logging.String("requested", key.String()))
		if err := s.handle.Close(); err != nil {
			r.logger.Warn("failed to release evicted model",
				logging.String("model", s.handle.Key.String()),
				logging.Error(err))
		}
		s.handle = nil
	}

	handle, err := r.loadLocked(ctx, key, load)
	if err != nil {
		return nil, err
	}
	s.handle = handle
	return handle, nil
}

func (r *Registry) loadLocked(ctx context.Context, key Key, load Loader) (*Handle, error) {
	value, closer, err := load(ctx, key.Identifier, key.Device)
	if err == nil {
		r.logger.Info("loaded model",
			logging.String("model", key.String()),
			logging.String("device", key.Device))
		return &Handle{Key: key, ResolvedDevice: key.Device, Value: value, closer: closer}, nil
	}

	if key.Device != DeviceCUDA {
		return nil, fmt.Errorf("load model %s: %w", key.String(), err)
	}

	r.logger.Warn("accelerator load failed, retrying on cpu",
		logging.String("model", key.String()),
		logging.Error(err))

	value, closer, cpuErr := load(ctx, key.Identifier, DeviceCPU)
	if cpuErr != nil {
		return nil, fmt.Errorf("load model %s: cuda failed (%v), cpu failed: %w", key.String(), err, cpuErr)
	}

	r.logger.Info("loaded model",
		logging.String("model", key.String()),
		logging.String("device", DeviceCPU))
	return &Handle{Key: key, ResolvedDevice: DeviceCPU, Value: value, closer: closer}, nil
}

// Evict drops the cached handle for kind, if any, releasing it.
func (r *Registry) Evict(kind Kind) error {
	s := r.slotFor(kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	return err
}

// Close releases every cached handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	kinds := make([]Kind, 0, len(r.slots))
	for kind := range r.slots {
		kinds = append(kinds, kind)
	}
	r.mu.Unlock()

	var firstErr error
	for _, kind := range kinds {
		if err := r.Evict(kind); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
