package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yisikawa/LyricSyncAI/internal/daemon"
	"github.com/yisikawa/LyricSyncAI/internal/logging"
	"github.com/yisikawa/LyricSyncAI/internal/runs"
)

// newServeCommand runs the daemon in the foreground until interrupted.
// It is the CLI equivalent of the lyricsyncd binary.
func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the lyricsync daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewForDirs(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := runs.Open(cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}

			d, registry, err := daemon.Bootstrap(cfg, store, logger)
			if err != nil {
				return err
			}
			defer registry.Close()
			defer d.Close()

			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl-C to stop)\n", cfg.Paths.APIBind)

			<-cmd.Context().Done()
			return nil
		},
	}
}
