package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yisikawa/LyricSyncAI/internal/api"
)

func newSeparateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "separate <file>",
		Short: "Split an upload into vocal and instrumental stems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Separate(cmd.Context(), api.SeparateRequest{FilePath: args[0]})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vocals:       %s\n", resp.VocalsURL)
			fmt.Fprintf(out, "Instrumental: %s\n", resp.InstrumentalURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
