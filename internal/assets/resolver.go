package assets

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/services"
)

// Resolver decides which derived file is the best current input for an
// operation on an asset. Resolution is a pure lookup: it never creates files
// and the same filesystem state always yields the same answer.
type Resolver struct {
	root string
}

// NewResolver builds a resolver over the given asset root.
func NewResolver(root string) Resolver {
	return Resolver{root: root}
}

// Resolve normalizes input (bare filename, path under the asset root, or an
// /uploads/ URL) and returns the preferred audio source for it.
//
// Priority, first match wins:
//  1. The input itself, when it names an existing file that lives in the
//     separated sub-area or carries an audio extension. Explicit caller
//     intent wins over derivation.
//  2. The separated vocal stem for the input's stem.
//  3. The extracted audio for the stem.
//  4. The original source file.
//
// Returns ErrNoSource when nothing exists.
func (r Resolver) Resolve(input string) (string, error) {
	rel, err := r.normalize(input)
	if err != nil {
		return "", err
	}

	direct := filepath.Join(r.root, rel)
	if fileExists(direct) && (r.inSeparatedArea(rel) || hasAudioExt(rel)) {
		return direct, nil
	}

	asset := New(r.root, rel)
	for _, candidate := range []string{asset.VocalsPath(), asset.AudioPath(), filepath.Join(r.root, rel)} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", services.Wrap(services.ErrNoSource, "resolver", "resolve", "no audio source for "+rel, nil)
}

// normalize reduces any accepted input form to a path relative to the asset
// root. URLs referencing the upload mount keep their sub-path (so separated
// stem URLs stay inside the separated area).
func (r Resolver) normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "resolver", "normalize", "empty input", nil)
	}

	if strings.Contains(trimmed, "://") {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, "resolver", "normalize", "unparseable url "+trimmed, err)
		}
		trimmed = parsed.Path
	}

	if idx := strings.Index(trimmed, "/uploads/"); idx >= 0 {
		trimmed = trimmed[idx+len("/uploads/"):]
	}

	if filepath.IsAbs(trimmed) {
		if rel, err := filepath.Rel(r.root, trimmed); err == nil && !strings.HasPrefix(rel, "..") {
			trimmed = rel
		} else {
			trimmed = filepath.Base(trimmed)
		}
	}

	cleaned := filepath.Clean(trimmed)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", services.Wrap(services.ErrValidation, "resolver", "normalize", "input escapes asset root: "+input, nil)
	}
	return cleaned, nil
}

func (r Resolver) inSeparatedArea(rel string) bool {
	return strings.HasPrefix(rel, separatedDirName+string(filepath.Separator))
}

func hasAudioExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	default:
		return false
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
