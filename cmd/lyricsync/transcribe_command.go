package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yisikawa/LyricSyncAI/internal/api"
	"github.com/yisikawa/LyricSyncAI/internal/subtitles"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var language string
	var live bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe lyrics from an uploaded file",
		Long: "Transcribe lyrics for an uploaded video or audio file. The daemon picks the best\n" +
			"available source: separated vocals win over extracted audio, which wins over the\n" +
			"original upload.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.TranscribeRequest{FilePath: args[0], Language: language}
			out := cmd.OutOrStdout()

			if live {
				return ctx.client().TranscribeLive(cmd.Context(), req, func(seg api.Segment) {
					fmt.Fprintf(out, "[%s --> %s] %s\n",
						subtitles.FormatTimestamp(seg.Start),
						subtitles.FormatTimestamp(seg.End),
						seg.Text)
				})
			}

			resp, err := ctx.client().Transcribe(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			for _, seg := range resp.Segments {
				fmt.Fprintf(out, "[%s --> %s] %s\n",
					subtitles.FormatTimestamp(seg.Start),
					subtitles.FormatTimestamp(seg.End),
					seg.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Override the transcription language")
	cmd.Flags().BoolVar(&live, "live", false, "Print segments as they are recognized")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
