package provider

// DeepgramProvider implements Provider for Deepgram pre-recorded transcription
type DeepgramProvider struct{}

func (p *DeepgramProvider) Name() string {
	return ProviderDeepgram
}

func (p *DeepgramProvider) DisplayName() string {
	return "Deepgram"
}

func (p *DeepgramProvider) RequiresAPIKey() bool {
	return true
}

func (p *DeepgramProvider) ValidateAPIKey(key string) bool {
	// Deepgram API keys are alphanumeric, just check non-empty
	return len(key) > 0
}

func (p *DeepgramProvider) IsLocal() bool {
	return false
}

func (p *DeepgramProvider) Model() Model {
	return Model{
		ID:          "nova-3",
		Name:        "Nova-3",
		Description: "best Deepgram accuracy, utterances with word timings",
		AdapterType: AdapterDeepgram,
		Endpoint:    &EndpointConfig{BaseURL: "https://api.deepgram.com", Path: "/v1/listen"},
	}
}

func (p *DeepgramProvider) Models() []Model {
	return []Model{p.Model()}
}
