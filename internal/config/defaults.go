package config

import "github.com/leonardotrapani/hyprscribe/internal/provider"

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Transcription: TranscriptionConfig{
			Provider:     provider.ProviderWhisperCpp,
			Language:     "",
			Threads:      0,
			WhisperCLI:   "whisper-cli",
			AutoDownload: true,
		},
		Providers: make(map[string]ProviderConfig),
		Server: ServerConfig{
			Addr:          ":5000",
			UploadLimitMB: 200,
			AllowedOrigin: "*",
			MaxConcurrent: 1,
		},
	}
}
