package config

// Config is the on-disk hyprscribe configuration
type Config struct {
	Transcription TranscriptionConfig       `toml:"transcription"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Server        ServerConfig              `toml:"server"`
}

// TranscriptionConfig selects the backend. The model variant is fixed per
// provider and is not configurable.
type TranscriptionConfig struct {
	Provider     string `toml:"provider"`
	Language     string `toml:"language"`      // empty for auto-detect
	Threads      int    `toml:"threads"`       // CPU threads for whisper-cpp (0 = auto: NumCPU-1)
	WhisperCLI   string `toml:"whisper_cli"`   // whisper.cpp binary name or path
	AutoDownload bool   `toml:"auto_download"` // fetch the whisper model on first use
}

// ProviderConfig holds credentials and endpoint overrides for a provider
type ProviderConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url,omitempty"`
}

// ServerConfig configures `hyprscribe serve`
type ServerConfig struct {
	Addr          string `toml:"addr"`
	UploadLimitMB int    `toml:"upload_limit_mb"`
	AllowedOrigin string `toml:"allowed_origin"`
	MaxConcurrent int    `toml:"max_concurrent"`
}
