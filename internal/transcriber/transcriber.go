// Package transcriber turns an audio file into a transcript.Result using one
// of several speech-to-text backends.
package transcriber

import (
	"context"
	"fmt"
	"log"

	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
)

// Model is a loaded speech model ready to transcribe files.
type Model interface {
	// Name identifies the backend and variant, e.g. "whisper-cpp/base".
	Name() string
	Transcribe(ctx context.Context, audioPath string, opts Options) (*transcript.Result, error)
}

// Options are per-call transcription options
type Options struct {
	// WordTimestamps requests per-word timing alignment.
	WordTimestamps bool
}

// Loader loads a model. Each transcription uses a freshly loaded model.
type Loader func(ctx context.Context, cfg Config) (Model, error)

// Configuration for loading a model
type Config struct {
	Provider string
	Model    string // fixed variant for the provider; empty means the provider default
	APIKey   string
	BaseURL  string // overrides the provider's endpoint base URL
	Language string // empty for auto-detect

	// whisper-cpp only
	Threads      int    // CPU threads (0 lets whisper-cli decide)
	WhisperCLI   string // binary name or path, defaults to "whisper-cli"
	ModelPath    string // explicit ggml file, bypasses the model registry
	AutoDownload bool   // download the model on first use
}

func DefaultConfig() Config {
	return Config{
		Provider:     provider.ProviderWhisperCpp,
		WhisperCLI:   "whisper-cli",
		AutoDownload: true,
	}
}

// Load creates the backend named by cfg.Provider with its fixed model variant.
func Load(ctx context.Context, cfg Config) (Model, error) {
	p := provider.GetProvider(cfg.Provider)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}

	m := p.Model()
	if cfg.Model == "" {
		cfg.Model = m.ID
	}
	if p.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set providers.%s.api_key or %s", ErrMissingAPIKey, p.Name(), provider.EnvVarForProvider(p.Name()))
	}

	endpoint := m.Endpoint
	if endpoint != nil && cfg.BaseURL != "" {
		endpoint = &provider.EndpointConfig{BaseURL: cfg.BaseURL, Path: endpoint.Path}
	}

	log.Printf("Transcriber: loading %s/%s", p.Name(), cfg.Model)

	switch m.AdapterType {
	case provider.AdapterWhisperCpp:
		return loadWhisperCpp(ctx, cfg)
	case provider.AdapterOpenAI:
		return NewOpenAIAdapter(p.Name(), endpoint, cfg.APIKey, cfg.Model, cfg.Language), nil
	case provider.AdapterDeepgram:
		return NewDeepgramAdapter(endpoint, cfg.APIKey, cfg.Model, cfg.Language), nil
	case provider.AdapterElevenLabs:
		return NewElevenLabsAdapter(endpoint, cfg.APIKey, cfg.Model, cfg.Language), nil
	default:
		return nil, fmt.Errorf("%w: adapter %s", ErrUnsupportedProvider, m.AdapterType)
	}
}
