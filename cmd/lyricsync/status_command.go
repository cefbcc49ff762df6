package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon readiness and external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			state := "running"
			if !resp.Running {
				state = "stopped"
			}
			fmt.Fprintf(out, "Daemon: %s\n\n", state)

			depRows := make([][]string, 0, len(resp.Dependencies))
			for _, dep := range resp.Dependencies {
				availability := "ok"
				if !dep.Available {
					availability = "missing"
					if dep.Optional {
						availability = "missing (optional)"
					}
				}
				detail := dep.Detail
				if detail == "" {
					detail = dep.Description
				}
				depRows = append(depRows, []string{dep.Name, dep.Command, availability, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "State", "Detail"}, depRows))

			healthRows := make([][]string, 0, len(resp.StageHealth))
			for _, h := range resp.StageHealth {
				state := "ready"
				if !h.Ready {
					state = "not ready"
				}
				healthRows = append(healthRows, []string{h.Name, state, h.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Stage", "State", "Detail"}, healthRows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
