package main

import (
	"fmt"
	"os"

	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/deps"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/tui"
	"github.com/spf13/cobra"
)

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration for hyprscribe.
Choose the transcription provider, its API key, the spoken language
and the number of CPU threads for local transcription.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tui.UseOutput(os.Stdout)
	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration form error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Println(tui.StyleError.Render("Configuration validation failed: " + err.Error()))
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if result.Config.Transcription.Provider == provider.ProviderWhisperCpp {
		if status := deps.CheckWhisperCLI(result.Config.Transcription.WhisperCLI); !status.Installed {
			fmt.Println(tui.StyleWarning.Render("whisper-cli was not found; install whisper.cpp before transcribing locally."))
		}
	}

	configPath, _ := config.GetConfigPath()
	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved successfully!"))
	fmt.Printf("Config file location: %s\n", configPath)
	fmt.Println()
	fmt.Println("Try it: hyprscribe path/to/audio.wav")
	return nil
}
