package config

import (
	"fmt"

	"github.com/leonardotrapani/hyprscribe/internal/language"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
)

// Validate checks the whole file, as needed by serve and before saving.
func (c *Config) Validate() error {
	if err := c.ValidateTranscription(); err != nil {
		return err
	}
	return c.ValidateServer()
}

// ValidateTranscription checks only what loading a model depends on: the
// [transcription] and [providers.*] sections.
func (c *Config) ValidateTranscription() error {
	if c.Transcription.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}

	p := provider.GetProvider(c.Transcription.Provider)
	if p == nil {
		return fmt.Errorf("unsupported transcription.provider: %s (must be one of %v)", c.Transcription.Provider, provider.ListProviders())
	}

	if p.RequiresAPIKey() && c.ResolveAPIKey(p.Name()) == "" {
		return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
			p.DisplayName(), p.Name(), provider.EnvVarForProvider(p.Name()))
	}

	if !language.IsValidCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", c.Transcription.Language)
	}

	if c.Transcription.Threads < 0 {
		return fmt.Errorf("invalid transcription.threads: %d", c.Transcription.Threads)
	}
	if p.IsLocal() && c.Transcription.WhisperCLI == "" {
		return fmt.Errorf("invalid transcription.whisper_cli: empty")
	}

	for name := range c.Providers {
		if provider.GetProvider(name) == nil {
			return fmt.Errorf("unknown provider in [providers.%s]", name)
		}
	}

	return nil
}

// ValidateServer checks the [server] section
func (c *Config) ValidateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("invalid server.addr: empty")
	}
	if c.Server.UploadLimitMB <= 0 {
		return fmt.Errorf("invalid server.upload_limit_mb: %d", c.Server.UploadLimitMB)
	}
	if c.Server.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid server.max_concurrent: %d", c.Server.MaxConcurrent)
	}
	if c.Server.AllowedOrigin == "" {
		return fmt.Errorf("invalid server.allowed_origin: empty (use \"*\" to allow any origin)")
	}

	return nil
}
