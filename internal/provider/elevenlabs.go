package provider

// ElevenLabsProvider implements Provider for ElevenLabs Scribe
type ElevenLabsProvider struct{}

func (p *ElevenLabsProvider) Name() string {
	return ProviderElevenLabs
}

func (p *ElevenLabsProvider) DisplayName() string {
	return "ElevenLabs"
}

func (p *ElevenLabsProvider) RequiresAPIKey() bool {
	return true
}

func (p *ElevenLabsProvider) ValidateAPIKey(key string) bool {
	return len(key) > 0
}

func (p *ElevenLabsProvider) IsLocal() bool {
	return false
}

func (p *ElevenLabsProvider) Model() Model {
	return Model{
		ID:          "scribe_v1",
		Name:        "Scribe v1",
		Description: "ElevenLabs speech-to-text with word timestamps",
		AdapterType: AdapterElevenLabs,
		Endpoint:    &EndpointConfig{BaseURL: "https://api.elevenlabs.io", Path: "/v1/speech-to-text"},
	}
}

func (p *ElevenLabsProvider) Models() []Model {
	return []Model{p.Model()}
}
