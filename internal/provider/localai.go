package provider

// LocalAIProvider implements Provider for a self-hosted LocalAI instance.
// LocalAI serves the OpenAI audio API, so it shares the openai adapter.
type LocalAIProvider struct{}

func (p *LocalAIProvider) Name() string {
	return ProviderLocalAI
}

func (p *LocalAIProvider) DisplayName() string {
	return "LocalAI (self-hosted)"
}

// RequiresAPIKey is false: LocalAI runs without auth unless API_KEY is set.
func (p *LocalAIProvider) RequiresAPIKey() bool {
	return false
}

func (p *LocalAIProvider) ValidateAPIKey(key string) bool {
	return true
}

func (p *LocalAIProvider) IsLocal() bool {
	return false
}

func (p *LocalAIProvider) Model() Model {
	return Model{
		ID:          "whisper-1",
		Name:        "Whisper (LocalAI)",
		Description: "whisper backend behind LocalAI's OpenAI-compatible API",
		AdapterType: AdapterOpenAI,
		Endpoint:    &EndpointConfig{BaseURL: "http://localhost:8080/v1", Path: "/audio/transcriptions"},
	}
}

func (p *LocalAIProvider) Models() []Model {
	return []Model{p.Model()}
}
