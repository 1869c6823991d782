package main

import (
	"context"
	"fmt"
	"io"

	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/deps"
	"github.com/leonardotrapani/hyprscribe/internal/models/whisper"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/tui"
	"github.com/spf13/cobra"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage transcription models",
	}

	cmd.AddCommand(modelListCmd())
	cmd.AddCommand(modelDownloadCmd())
	cmd.AddCommand(modelRemoveCmd())

	return cmd
}

func modelListCmd() *cobra.Command {
	var providerFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcription models (* marks the model each provider uses)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelList(cmd.OutOrStdout(), providerFilter)
		},
	}

	cmd.Flags().StringVar(&providerFilter, "provider", "", "filter by provider name")

	return cmd
}

func runModelList(out io.Writer, providerFilter string) error {
	names := provider.ListProviders()
	if providerFilter != "" {
		if provider.GetProvider(providerFilter) == nil {
			return fmt.Errorf("unknown provider: %s", providerFilter)
		}
		names = []string{providerFilter}
	}

	providers := make([]provider.Provider, 0, len(names))
	for _, name := range names {
		providers = append(providers, provider.GetProvider(name))
	}

	tui.UseOutput(out)
	fmt.Fprintln(out, tui.ModelList(providers, whisper.IsInstalled))

	if providerFilter == "" || providerFilter == provider.ProviderWhisperCpp {
		bin := config.DefaultConfig().Transcription.WhisperCLI
		if cfg, err := config.Load(); err == nil {
			bin = cfg.Transcription.WhisperCLI
		}
		fmt.Fprintf(out, "%s %s\n", tui.StyleMuted.Render("whisper-cli:"), deps.CheckWhisperCLI(bin))
	}
	return nil
}

func modelDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <model-name>",
		Short: "Download a local whisper.cpp model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelDownload(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runModelDownload(ctx context.Context, out io.Writer, modelName string) error {
	model, _, err := provider.FindModelByID(modelName)
	if err != nil {
		return fmt.Errorf("unknown model: %s", modelName)
	}

	if !model.NeedsDownload() {
		fmt.Fprintf(out, "model '%s' is a cloud model and does not require download\n", modelName)
		return nil
	}

	if whisper.IsInstalled(modelName) {
		fmt.Fprintf(out, "model '%s' is already installed at %s\n", modelName, whisper.GetModelPath(modelName))
		return nil
	}

	fmt.Fprintf(out, "downloading %s", modelName)
	if model.LocalInfo.Size != "" {
		fmt.Fprintf(out, " (%s)", model.LocalInfo.Size)
	}
	fmt.Fprintln(out, "...")

	var lastPercent int
	err = whisper.Download(ctx, modelName, func(downloaded, total int64) {
		if total > 0 {
			percent := int(downloaded * 100 / total)
			if percent >= lastPercent+10 {
				fmt.Fprintf(out, "%d%% ", percent)
				lastPercent = percent
			}
		}
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Fprintf(out, "\ndownload complete: %s\n", whisper.GetModelPath(modelName))
	return nil
}

func modelRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model-name>",
		Short: "Remove a downloaded local model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelRemove(cmd.OutOrStdout(), args[0])
		},
	}
}

func runModelRemove(out io.Writer, modelName string) error {
	model, _, err := provider.FindModelByID(modelName)
	if err != nil {
		return fmt.Errorf("unknown model: %s", modelName)
	}

	if !model.NeedsDownload() {
		fmt.Fprintf(out, "model '%s' is a cloud model, nothing to remove\n", modelName)
		return nil
	}

	if !whisper.IsInstalled(modelName) {
		return fmt.Errorf("model '%s' is not installed", modelName)
	}

	if err := whisper.Remove(modelName); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}

	fmt.Fprintf(out, "model '%s' removed successfully\n", modelName)
	return nil
}
