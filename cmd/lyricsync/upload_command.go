package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "upload <video-file>",
		Short: "Upload a video and start background processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if path == "" {
				return errors.New("video file path is required")
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if _, err := os.Stat(abs); err != nil {
				return fmt.Errorf("video file: %w", err)
			}

			resp, err := ctx.client().Upload(cmd.Context(), abs)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %s\n", resp.Filename)
			fmt.Fprintf(out, "Run: %s\n", resp.RunID)
			fmt.Fprintf(out, "URL: %s\n", resp.URL)
			fmt.Fprintln(out, "Processing continues in the background; check progress with `lyricsync runs`.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
