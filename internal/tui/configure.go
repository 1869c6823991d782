// Package tui implements the interactive `hyprscribe configure` form and
// styled terminal output.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/language"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
)

// ConfigureResult holds the configuration result from the form
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// answers are the raw form values before they are applied to a config
type answers struct {
	Provider string
	APIKey   string
	Language string
	Threads  string
	Confirm  bool
}

// Run shows the configuration form prefilled from existing and returns the
// edited copy. existing is never modified.
func Run(existing *config.Config) (*ConfigureResult, error) {
	if existing == nil {
		existing = config.DefaultConfig()
	}
	cfg := existing.Clone()

	a := answers{
		Provider: cfg.Transcription.Provider,
		Language: cfg.Transcription.Language,
		Threads:  strconv.Itoa(cfg.Transcription.Threads),
	}

	fmt.Println(Logo())

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription provider").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(providerOptions()...).
				Value(&a.Provider),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string {
					return fmt.Sprintf("%s API key", displayName(a.Provider))
				}, &a.Provider).
				DescriptionFunc(func() string {
					return apiKeyHint(cfg, a.Provider)
				}, &a.Provider).
				EchoMode(huh.EchoModePassword).
				Validate(func(key string) error {
					return validateAPIKey(a.Provider, key)
				}).
				Value(&a.APIKey),
		).WithHideFunc(func() bool {
			p := provider.GetProvider(a.Provider)
			return p == nil || !p.RequiresAPIKey()
		}),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Spoken language").
				Options(languageOptions()...).
				Height(12).
				Value(&a.Language),
			huh.NewInput().
				Title("CPU threads").
				Description("Used by the local whisper.cpp backend").
				Validate(validateThreads).
				Value(&a.Threads),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Save").
				Negative("Discard").
				Value(&a.Confirm),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return &ConfigureResult{Cancelled: true}, nil
		}
		return nil, err
	}
	if !a.Confirm {
		return &ConfigureResult{Cancelled: true}, nil
	}

	if err := applyAnswers(cfg, a); err != nil {
		return nil, err
	}
	return &ConfigureResult{Config: cfg}, nil
}

// applyAnswers writes form values into cfg. A blank API key keeps the
// stored one.
func applyAnswers(cfg *config.Config, a answers) error {
	if provider.GetProvider(a.Provider) == nil {
		return fmt.Errorf("unknown provider: %s", a.Provider)
	}
	cfg.Transcription.Provider = a.Provider
	cfg.Transcription.Language = a.Language

	threads, err := parseThreads(a.Threads)
	if err != nil {
		return err
	}
	cfg.Transcription.Threads = threads

	if key := strings.TrimSpace(a.APIKey); key != "" {
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]config.ProviderConfig)
		}
		pc := cfg.Providers[a.Provider]
		pc.APIKey = key
		cfg.Providers[a.Provider] = pc
	}
	return nil
}

func providerOptions() []huh.Option[string] {
	names := provider.ListProviders()
	options := make([]huh.Option[string], 0, len(names))
	for _, name := range names {
		p := provider.GetProvider(name)
		label := fmt.Sprintf("%s (%s)", p.DisplayName(), p.Model().ID)
		if p.IsLocal() {
			label += " - local"
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

func languageOptions() []huh.Option[string] {
	langs := language.List()
	options := make([]huh.Option[string], 0, len(langs)+1)
	options = append(options, huh.NewOption(language.Auto.Label(), language.Auto.Code))
	for _, l := range langs {
		options = append(options, huh.NewOption(l.Label(), l.Code))
	}
	return options
}

func displayName(name string) string {
	if p := provider.GetProvider(name); p != nil {
		return p.DisplayName()
	}
	return name
}

func apiKeyHint(cfg *config.Config, providerName string) string {
	if key := cfg.ResolveAPIKey(providerName); key != "" {
		return fmt.Sprintf("Current: %s (leave blank to keep)", maskAPIKey(key))
	}
	return fmt.Sprintf("Or set %s in the environment", provider.EnvVarForProvider(providerName))
}

func validateAPIKey(providerName, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	p := provider.GetProvider(providerName)
	if p != nil && !p.ValidateAPIKey(key) {
		return fmt.Errorf("that does not look like a %s API key", p.DisplayName())
	}
	return nil
}

func validateThreads(s string) error {
	_, err := parseThreads(s)
	return err
}

func parseThreads(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("threads must be a number >= 0")
	}
	return n, nil
}

// maskAPIKey keeps the key prefix and last four characters
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", 4) + key[len(key)-4:]
}
