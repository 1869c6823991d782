package main

import (
	"fmt"

	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/server"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
	"github.com/spf13/cobra"
)

func serveCmd(loader transcriber.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transcription API",
		Long: `Serve POST /api/transcribe (multipart field "file") and GET /api/health.
Listen address, upload limit, CORS origin and concurrency come from the
[server] config section; PORT and FRONTEND_ORIGIN override them.
Transcription settings are reloaded when the config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			if err := mgr.StartWatching(ctx); err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
			defer mgr.Stop()

			return server.New(mgr, loader).Run(ctx)
		},
	}
}
