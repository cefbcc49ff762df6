package deps

import (
	"fmt"
	"os"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/config"
)

// CheckVoiceModel reports whether the configured RVC voice model files
// are usable. The model weights are required for conversion; the
// feature index is optional and only improves timbre retrieval.
func CheckVoiceModel(cfg *config.Config) []Status {
	results := []Status{checkModelFile("RVC model", cfg.RVC.ModelPath, false)}
	if strings.TrimSpace(cfg.RVC.IndexPath) != "" {
		results = append(results, checkModelFile("RVC index", cfg.RVC.IndexPath, true))
	}
	return results
}

func checkModelFile(name, path string, optional bool) Status {
	status := Status{
		Name:        name,
		Command:     strings.TrimSpace(path),
		Description: "Voice conversion model file",
		Optional:    optional,
	}
	if status.Command == "" {
		status.Detail = "path not configured"
		return status
	}
	info, err := os.Stat(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("model file %q not found", status.Command)
		return status
	}
	if info.IsDir() {
		status.Detail = fmt.Sprintf("%q is a directory, expected a file", status.Command)
		return status
	}
	status.Available = true
	return status
}
