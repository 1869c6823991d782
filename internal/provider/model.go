package provider

// Model describes the fixed model variant a provider transcribes with
type Model struct {
	ID          string          // e.g. "base", "whisper-1", "nova-3"
	Name        string          // display name
	Description string          // short description
	Local       bool            // runs locally (no API call)
	AdapterType string          // which adapter to use (e.g. "openai", "whisper-cpp")
	Endpoint    *EndpointConfig // nil for local models
	LocalInfo   *LocalModelInfo // nil for cloud models
}

// EndpointConfig holds HTTP endpoint configuration
type EndpointConfig struct {
	BaseURL string // e.g. "https://api.openai.com/v1"
	Path    string // e.g. "/audio/transcriptions"
}

// URL joins base and path
func (e *EndpointConfig) URL() string {
	if e == nil {
		return ""
	}
	return e.BaseURL + e.Path
}

// LocalModelInfo holds metadata for downloadable local models
type LocalModelInfo struct {
	Filename    string // e.g. "ggml-base.bin"
	Size        string // human readable size (e.g. "142MB")
	DownloadURL string
}

// NeedsDownload returns true if this is a local model that requires downloading
func (m *Model) NeedsDownload() bool {
	return m.LocalInfo != nil
}
