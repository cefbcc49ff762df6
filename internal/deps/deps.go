package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yisikawa/LyricSyncAI/internal/config"
)

// Requirement defines an external tool the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external tools for the given configuration.
// Voice conversion is optional: runs proceed without it.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpeg.Binary, Description: "Audio extraction, mixing, and subtitle burn-in"},
		{Name: "FFprobe", Command: cfg.FFmpeg.ProbeBinary, Description: "Media inspection"},
		{Name: "Whisper", Command: cfg.Whisper.Binary, Description: "Speech transcription"},
		{Name: "Demucs", Command: cfg.Demucs.Binary, Description: "Vocal separation"},
		{Name: "RVC", Command: cfg.RVC.Binary, Description: "AI voice conversion", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
