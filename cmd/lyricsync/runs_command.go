package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List pipeline runs or show one run with its artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showRunDetail(cmd, ctx, args[0], jsonOutput)
			}

			resp, err := ctx.client().Runs(cmd.Context(), statusFilter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			rows := make([][]string, 0, len(resp.Runs))
			for _, run := range resp.Runs {
				detail := run.ErrorMessage
				if detail == "" && run.ConversionOutcome != "" {
					detail = "conversion " + run.ConversionOutcome
				}
				rows = append(rows, []string{run.ID, run.Asset, run.Status, run.UpdatedAt, detail})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Run", "Asset", "Status", "Updated", "Detail"}, rows))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statusFilter, "status", nil, "Filter by run status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func showRunDetail(cmd *cobra.Command, ctx *commandContext, id string, jsonOutput bool) error {
	resp, err := ctx.client().RunDetail(cmd.Context(), strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, resp)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", resp.Run.ID)
	fmt.Fprintf(out, "  Asset:   %s\n", resp.Run.Asset)
	fmt.Fprintf(out, "  Status:  %s\n", resp.Run.Status)
	if resp.Run.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:   %s\n", resp.Run.ErrorMessage)
	}
	if resp.Run.ConversionOutcome != "" {
		fmt.Fprintf(out, "  Voice conversion: %s", resp.Run.ConversionOutcome)
		if resp.Run.ConversionDetail != "" {
			fmt.Fprintf(out, " (%s)", resp.Run.ConversionDetail)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  Updated: %s\n", resp.Run.UpdatedAt)

	if len(resp.Artifacts) == 0 {
		fmt.Fprintln(out, "\nNo artifacts recorded")
		return nil
	}
	rows := make([][]string, 0, len(resp.Artifacts))
	for _, artifact := range resp.Artifacts {
		rows = append(rows, []string{
			artifact.Kind,
			artifact.Path,
			fmt.Sprintf("%d", artifact.SizeBytes),
			artifact.CreatedAt,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Artifact", "Path", "Bytes", "Created"}, rows))
	return nil
}
