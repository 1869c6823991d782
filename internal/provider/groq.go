package provider

import "strings"

// GroqProvider implements Provider for Groq's OpenAI-compatible audio API
type GroqProvider struct{}

func (p *GroqProvider) Name() string {
	return ProviderGroq
}

func (p *GroqProvider) DisplayName() string {
	return "Groq"
}

func (p *GroqProvider) RequiresAPIKey() bool {
	return true
}

func (p *GroqProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "gsk_")
}

func (p *GroqProvider) IsLocal() bool {
	return false
}

func (p *GroqProvider) Model() Model {
	return Model{
		ID:          "whisper-large-v3",
		Name:        "Whisper Large V3",
		Description: "large-v3 on Groq LPUs, verbose_json with word timestamps",
		AdapterType: AdapterOpenAI,
		Endpoint:    &EndpointConfig{BaseURL: "https://api.groq.com/openai/v1", Path: "/audio/transcriptions"},
	}
}

func (p *GroqProvider) Models() []Model {
	return []Model{p.Model()}
}
