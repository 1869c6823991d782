package provider

import (
	"fmt"
	"sort"
)

// Provider describes a transcription backend and the single model variant
// hyprscribe uses with it.
type Provider interface {
	Name() string
	DisplayName() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	IsLocal() bool
	// Model is the fixed variant used for transcription.
	Model() Model
	// Models lists every variant the provider knows about.
	Models() []Model
}

var registry = make(map[string]Provider)

func init() {
	Register(&WhisperCppProvider{})
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
	Register(&LocalAIProvider{})
	Register(&DeepgramProvider{})
	Register(&ElevenLabsProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names, sorted
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindModelByID searches all providers for a model with the given ID
func FindModelByID(id string) (*Model, Provider, error) {
	for _, name := range ListProviders() {
		p := registry[name]
		for _, m := range p.Models() {
			if m.ID == id {
				model := m
				return &model, p, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("model not found: %s", id)
}
