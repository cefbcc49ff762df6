package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yisikawa/LyricSyncAI/internal/api"
	"github.com/yisikawa/LyricSyncAI/internal/subtitles"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var srtPath string
	var mixedAudio bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "export <uploaded-file-name>",
		Short: "Burn subtitles into an uploaded video",
		Long: "Burn subtitles into an uploaded video. Cue timings come from a local SRT file,\n" +
			"typically produced by `lyricsync transcribe` and edited by hand. With\n" +
			"--mixed-audio the video's audio track is replaced by a fresh mix of the\n" +
			"separated (or AI-converted) vocal and instrumental stems.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(srtPath) == "" {
				return errors.New("--srt is required")
			}
			cues, err := subtitles.ParseFile(srtPath)
			if err != nil {
				return fmt.Errorf("read subtitles: %w", err)
			}
			segments := make([]api.Segment, 0, len(cues))
			for _, cue := range cues {
				segments = append(segments, api.Segment{
					ID:    cue.Index,
					Start: cue.Start,
					End:   cue.End,
					Text:  cue.Text,
				})
			}

			resp, err := ctx.client().Export(cmd.Context(), api.ExportRequest{
				FileName:      args[0],
				Segments:      segments,
				UseMixedAudio: mixedAudio,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported: %s\n", resp.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&srtPath, "srt", "", "SRT file with the cue timings to burn")
	cmd.Flags().BoolVar(&mixedAudio, "mixed-audio", false, "Replace the audio track with a stem mix")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
