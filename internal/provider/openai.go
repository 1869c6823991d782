package provider

import "strings"

// OpenAIProvider implements Provider for the OpenAI audio API
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) DisplayName() string {
	return "OpenAI"
}

func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) IsLocal() bool {
	return false
}

func (p *OpenAIProvider) Model() Model {
	return Model{
		ID:          "whisper-1",
		Name:        "Whisper 1",
		Description: "OpenAI's hosted whisper with word timestamps",
		AdapterType: AdapterOpenAI,
		Endpoint:    &EndpointConfig{BaseURL: "https://api.openai.com/v1", Path: "/audio/transcriptions"},
	}
}

func (p *OpenAIProvider) Models() []Model {
	return []Model{p.Model()}
}
