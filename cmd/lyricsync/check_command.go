package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yisikawa/LyricSyncAI/internal/deps"
	"github.com/yisikawa/LyricSyncAI/internal/preflight"
)

// newCheckCommand inspects the local environment directly, without a
// running daemon.
func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check local directories and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			statuses = append(statuses, deps.CheckVoiceModel(cfg)...)

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"preflight":    results,
					"dependencies": statuses,
				})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				state := "ok"
				if !result.Passed {
					state = "failed"
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "State", "Detail"}, rows))

			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				depRows = append(depRows, []string{status.Name, status.Command, state, status.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "State", "Detail"}, depRows))

			if !preflight.Passed(results) {
				return fmt.Errorf("environment checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
