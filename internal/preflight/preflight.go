package preflight

import (
	"context"

	"github.com/yisikawa/LyricSyncAI/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all filesystem preflight checks for the given config.
// Binary availability is reported separately through deps.CheckBinaries
// so the status command can render the two groups apart.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckDirectoryAccess("Asset root", cfg.Paths.AssetRoot),
		CheckDirectoryAccess("Separated directory", cfg.SeparatedDir()),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDiskSpace("Asset root free space", cfg.Paths.AssetRoot),
	}
}

// Passed reports whether every result in the slice succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
