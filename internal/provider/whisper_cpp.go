package provider

import "github.com/leonardotrapani/hyprscribe/internal/models/whisper"

// WhisperCppProvider implements Provider for local whisper.cpp transcription
type WhisperCppProvider struct{}

func (p *WhisperCppProvider) Name() string {
	return ProviderWhisperCpp
}

func (p *WhisperCppProvider) DisplayName() string {
	return "whisper.cpp (local)"
}

func (p *WhisperCppProvider) RequiresAPIKey() bool {
	return false
}

func (p *WhisperCppProvider) ValidateAPIKey(key string) bool {
	return true // no API key needed
}

func (p *WhisperCppProvider) IsLocal() bool {
	return true
}

// Model returns the base multilingual model, the speed/accuracy tradeoff
// hyprscribe is built around.
func (p *WhisperCppProvider) Model() Model {
	m, _ := p.modelFor(whisper.DefaultModelID)
	return m
}

func (p *WhisperCppProvider) Models() []Model {
	whisperModels := whisper.ListModels()
	result := make([]Model, 0, len(whisperModels))
	for _, wm := range whisperModels {
		result = append(result, localModel(wm))
	}
	return result
}

func (p *WhisperCppProvider) modelFor(id string) (Model, bool) {
	info := whisper.GetModel(id)
	if info == nil {
		return Model{}, false
	}
	return localModel(*info), true
}

func localModel(wm whisper.ModelInfo) Model {
	return Model{
		ID:          wm.ID,
		Name:        wm.Name,
		Description: modelDescription(wm),
		Local:       true,
		AdapterType: AdapterWhisperCpp,
		LocalInfo: &LocalModelInfo{
			Filename:    wm.Filename,
			Size:        wm.Size,
			DownloadURL: whisper.GetDownloadURL(wm.ID),
		},
	}
}

func modelDescription(m whisper.ModelInfo) string {
	switch m.ID {
	case "tiny", "tiny.en":
		return "fastest, lowest accuracy"
	case "base", "base.en":
		return "balanced speed and accuracy"
	case "small", "small.en":
		return "better accuracy, needs decent CPU"
	case "medium", "medium.en":
		return "great accuracy, needs good CPU/RAM"
	case "large-v3":
		return "best accuracy, needs strong hardware"
	}
	return "whisper.cpp model"
}
