package config

import (
	"os"

	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
)

func (c *Config) ToTranscriberConfig() transcriber.Config {
	name := c.Transcription.Provider
	config := transcriber.Config{
		Provider:     name,
		APIKey:       c.ResolveAPIKey(name),
		Language:     c.Transcription.Language,
		Threads:      c.Transcription.Threads,
		WhisperCLI:   c.Transcription.WhisperCLI,
		AutoDownload: c.Transcription.AutoDownload,
	}
	if pc, ok := c.Providers[name]; ok {
		config.BaseURL = pc.BaseURL
	}
	return config
}

// ResolveAPIKey returns the API key for a provider: the config file first,
// then the provider's environment variable.
func (c *Config) ResolveAPIKey(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}

	if envVar := provider.EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}

	return ""
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	clone := *c
	clone.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for k, v := range c.Providers {
		clone.Providers[k] = v
	}
	return &clone
}
