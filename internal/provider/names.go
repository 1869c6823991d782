package provider

// Provider name constants for config and registry
const (
	ProviderWhisperCpp = "whisper-cpp"
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderLocalAI    = "localai"
	ProviderDeepgram   = "deepgram"
	ProviderElevenLabs = "elevenlabs"
)

// Environment variable names for API keys
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGroqKey       = "GROQ_API_KEY"
	EnvLocalAIKey    = "LOCALAI_API_KEY"
	EnvDeepgramKey   = "DEEPGRAM_API_KEY"
	EnvElevenLabsKey = "ELEVENLABS_API_KEY"
)

// Adapter type constants for transcription backends
const (
	AdapterWhisperCpp = "whisper-cpp"
	AdapterOpenAI     = "openai"
	AdapterDeepgram   = "deepgram"
	AdapterElevenLabs = "elevenlabs"
)

// EnvVarForProvider returns the environment variable name for a provider's API key
func EnvVarForProvider(name string) string {
	switch name {
	case ProviderOpenAI:
		return EnvOpenAIKey
	case ProviderGroq:
		return EnvGroqKey
	case ProviderLocalAI:
		return EnvLocalAIKey
	case ProviderDeepgram:
		return EnvDeepgramKey
	case ProviderElevenLabs:
		return EnvElevenLabsKey
	default:
		return ""
	}
}
