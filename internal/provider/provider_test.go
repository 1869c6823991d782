package provider

import (
	"slices"
	"testing"
)

func TestProviderInterface(t *testing.T) {
	providers := []struct {
		name         string
		isLocal      bool
		requiresKey  bool
		model        string
		adapter      string
		wantEndpoint bool
	}{
		{ProviderWhisperCpp, true, false, "base", AdapterWhisperCpp, false},
		{ProviderOpenAI, false, true, "whisper-1", AdapterOpenAI, true},
		{ProviderGroq, false, true, "whisper-large-v3", AdapterOpenAI, true},
		{ProviderLocalAI, false, false, "whisper-1", AdapterOpenAI, true},
		{ProviderDeepgram, false, true, "nova-3", AdapterDeepgram, true},
		{ProviderElevenLabs, false, true, "scribe_v1", AdapterElevenLabs, true},
	}

	for _, tc := range providers {
		t.Run(tc.name, func(t *testing.T) {
			p := GetProvider(tc.name)
			if p == nil {
				t.Fatalf("GetProvider(%q) returned nil", tc.name)
			}

			if p.Name() != tc.name {
				t.Errorf("Name() = %q, want %q", p.Name(), tc.name)
			}
			if p.IsLocal() != tc.isLocal {
				t.Errorf("IsLocal() = %v, want %v", p.IsLocal(), tc.isLocal)
			}
			if p.RequiresAPIKey() != tc.requiresKey {
				t.Errorf("RequiresAPIKey() = %v, want %v", p.RequiresAPIKey(), tc.requiresKey)
			}

			m := p.Model()
			if m.ID != tc.model {
				t.Errorf("Model().ID = %q, want %q", m.ID, tc.model)
			}
			if m.AdapterType != tc.adapter {
				t.Errorf("Model().AdapterType = %q, want %q", m.AdapterType, tc.adapter)
			}
			if (m.Endpoint != nil) != tc.wantEndpoint {
				t.Errorf("Model().Endpoint = %v, want present=%v", m.Endpoint, tc.wantEndpoint)
			}
			if p.DisplayName() == "" {
				t.Error("DisplayName() should not be empty")
			}
		})
	}
}

func TestGetProviderNotFound(t *testing.T) {
	if p := GetProvider("nonexistent"); p != nil {
		t.Errorf("GetProvider(nonexistent) should return nil, got %v", p)
	}
}

func TestListProviders(t *testing.T) {
	got := ListProviders()
	want := []string{"deepgram", "elevenlabs", "groq", "localai", "openai", "whisper-cpp"}
	if !slices.Equal(got, want) {
		t.Errorf("ListProviders() = %v, want %v", got, want)
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		provider string
		key      string
		want     bool
	}{
		{ProviderOpenAI, "sk-abc", true},
		{ProviderOpenAI, "gsk_abc", false},
		{ProviderGroq, "gsk_abc", true},
		{ProviderGroq, "sk-abc", false},
		{ProviderDeepgram, "abc123", true},
		{ProviderDeepgram, "", false},
		{ProviderWhisperCpp, "", true},
	}
	for _, tt := range tests {
		if got := GetProvider(tt.provider).ValidateAPIKey(tt.key); got != tt.want {
			t.Errorf("%s.ValidateAPIKey(%q) = %v, want %v", tt.provider, tt.key, got, tt.want)
		}
	}
}

func TestEnvVarForProvider(t *testing.T) {
	tests := map[string]string{
		ProviderOpenAI:     EnvOpenAIKey,
		ProviderGroq:       EnvGroqKey,
		ProviderLocalAI:    EnvLocalAIKey,
		ProviderDeepgram:   EnvDeepgramKey,
		ProviderElevenLabs: EnvElevenLabsKey,
		ProviderWhisperCpp: "",
	}
	for name, want := range tests {
		if got := EnvVarForProvider(name); got != want {
			t.Errorf("EnvVarForProvider(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestWhisperCppModels(t *testing.T) {
	p := GetProvider(ProviderWhisperCpp)
	models := p.Models()
	if len(models) == 0 {
		t.Fatal("whisper-cpp should list local models")
	}
	for _, m := range models {
		if !m.Local {
			t.Errorf("model %s should be local", m.ID)
		}
		if !m.NeedsDownload() {
			t.Errorf("model %s should need download", m.ID)
		}
		if m.LocalInfo.DownloadURL == "" {
			t.Errorf("model %s has no download URL", m.ID)
		}
	}
}

func TestFindModelByID(t *testing.T) {
	m, p, err := FindModelByID("small.en")
	if err != nil {
		t.Fatalf("FindModelByID(small.en) error = %v", err)
	}
	if p.Name() != ProviderWhisperCpp {
		t.Errorf("provider = %s, want whisper-cpp", p.Name())
	}
	if m.LocalInfo == nil || m.LocalInfo.Filename != "ggml-small.en.bin" {
		t.Errorf("unexpected local info: %+v", m.LocalInfo)
	}

	if _, _, err := FindModelByID("nope"); err == nil {
		t.Error("expected error for unknown model")
	}

	m, _, err = FindModelByID("nova-3")
	if err != nil {
		t.Fatalf("FindModelByID(nova-3) error = %v", err)
	}
	if m.NeedsDownload() {
		t.Error("cloud model should not need download")
	}
}

func TestEndpointURL(t *testing.T) {
	e := &EndpointConfig{BaseURL: "https://api.deepgram.com", Path: "/v1/listen"}
	if got := e.URL(); got != "https://api.deepgram.com/v1/listen" {
		t.Errorf("URL() = %s", got)
	}
	var nilEndpoint *EndpointConfig
	if got := nilEndpoint.URL(); got != "" {
		t.Errorf("nil URL() = %q, want empty", got)
	}
}
