package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/testutil"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Transcription.Threads = 4
	return cfg
}

func useConfigPath(t *testing.T, path string) {
	t.Helper()
	t.Setenv(EnvConfigPath, path)
}

func TestGetConfigPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		useConfigPath(t, "/tmp/custom/hyprscribe.toml")
		path, err := GetConfigPath()
		if err != nil {
			t.Fatalf("GetConfigPath() error = %v", err)
		}
		if path != "/tmp/custom/hyprscribe.toml" {
			t.Errorf("GetConfigPath() = %s", path)
		}
	})

	t.Run("user config dir", func(t *testing.T) {
		if runtime.GOOS != "linux" {
			t.Skip("XDG_CONFIG_HOME only applies on linux")
		}
		tempDir := t.TempDir()
		t.Setenv(EnvConfigPath, "")
		t.Setenv("XDG_CONFIG_HOME", tempDir)

		path, err := GetConfigPath()
		if err != nil {
			t.Fatalf("GetConfigPath() error = %v", err)
		}
		expectedPath := filepath.Join(tempDir, "hyprscribe", "config.toml")
		if path != expectedPath {
			t.Errorf("GetConfigPath() = %s, want %s", path, expectedPath)
		}
		// nothing is created until Save
		if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
			t.Errorf("GetConfigPath() should not create the config directory")
		}
	})
}

func TestConfig_Load_MissingFileUsesDefaults(t *testing.T) {
	useConfigPath(t, filepath.Join(t.TempDir(), "missing.toml"))

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Transcription.Provider != provider.ProviderWhisperCpp {
		t.Errorf("Provider = %q, want whisper-cpp", config.Transcription.Provider)
	}
	if config.Transcription.Threads < 1 {
		t.Errorf("Threads = %d, want >= 1", config.Transcription.Threads)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestConfig_Load_PartialFileKeepsDefaults(t *testing.T) {
	path := testutil.CreateTempConfigFile(t, `[transcription]
provider = "deepgram"
language = "de"

[providers.deepgram]
api_key = "dg-key"
base_url = "http://localhost:9000"
`)
	useConfigPath(t, path)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Transcription.Provider != "deepgram" || config.Transcription.Language != "de" {
		t.Errorf("transcription = %+v", config.Transcription)
	}
	if !config.Transcription.AutoDownload {
		t.Error("AutoDownload default lost")
	}
	if config.Transcription.WhisperCLI != "whisper-cli" {
		t.Errorf("WhisperCLI = %q", config.Transcription.WhisperCLI)
	}
	if config.Server.Addr != ":5000" || config.Server.UploadLimitMB != 200 {
		t.Errorf("server = %+v", config.Server)
	}
	if config.Providers["deepgram"].APIKey != "dg-key" {
		t.Errorf("providers = %+v", config.Providers)
	}
}

func TestConfig_Load_InvalidTOML(t *testing.T) {
	useConfigPath(t, testutil.CreateTempConfigFile(t, "[transcription\nprovider = "))

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on invalid TOML")
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	useConfigPath(t, path)

	config := createTestConfig()
	config.Transcription.Provider = "openai"
	config.Providers["openai"] = ProviderConfig{APIKey: "sk-saved"}
	config.Server.MaxConcurrent = 3

	if err := Save(config); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Transcription.Provider != "openai" || loaded.Providers["openai"].APIKey != "sk-saved" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Server.MaxConcurrent != 3 || loaded.Transcription.Threads != 4 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"empty provider", func(c *Config) { c.Transcription.Provider = "" }, "transcription.provider"},
		{"unknown provider", func(c *Config) { c.Transcription.Provider = "azure" }, "unsupported"},
		{"missing api key", func(c *Config) { c.Transcription.Provider = "openai" }, "OPENAI_API_KEY"},
		{"api key in config", func(c *Config) {
			c.Transcription.Provider = "groq"
			c.Providers["groq"] = ProviderConfig{APIKey: "gsk_x"}
		}, ""},
		{"localai needs no key", func(c *Config) { c.Transcription.Provider = "localai" }, ""},
		{"bad language", func(c *Config) { c.Transcription.Language = "klingon" }, "transcription.language"},
		{"negative threads", func(c *Config) { c.Transcription.Threads = -1 }, "threads"},
		{"empty whisper_cli", func(c *Config) { c.Transcription.WhisperCLI = "" }, "whisper_cli"},
		{"unknown provider section", func(c *Config) { c.Providers["mistral"] = ProviderConfig{} }, "providers.mistral"},
		{"zero upload limit", func(c *Config) { c.Server.UploadLimitMB = 0 }, "upload_limit_mb"},
		{"zero concurrency", func(c *Config) { c.Server.MaxConcurrent = 0 }, "max_concurrent"},
		{"empty origin", func(c *Config) { c.Server.AllowedOrigin = "" }, "allowed_origin"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
	}

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateTranscription_IgnoresServer(t *testing.T) {
	config := createTestConfig()
	config.Server.Addr = ""
	config.Server.UploadLimitMB = -5

	if err := config.ValidateTranscription(); err != nil {
		t.Errorf("ValidateTranscription() error = %v, server section should not matter", err)
	}
	if err := config.ValidateServer(); err == nil {
		t.Error("ValidateServer() expected error")
	}
	if err := config.Validate(); err == nil {
		t.Error("Validate() expected error")
	}

	config.Transcription.Language = "klingon"
	if err := config.ValidateTranscription(); err == nil {
		t.Error("ValidateTranscription() expected error for bad language")
	}
}

func TestConfig_Validate_EnvVarAPIKey(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-env")
	config := createTestConfig()
	config.Transcription.Provider = "deepgram"
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_ResolveAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	config := createTestConfig()
	if got := config.ResolveAPIKey("openai"); got != "sk-env" {
		t.Errorf("ResolveAPIKey() = %q, want env key", got)
	}

	config.Providers["openai"] = ProviderConfig{APIKey: "sk-config"}
	if got := config.ResolveAPIKey("openai"); got != "sk-config" {
		t.Errorf("ResolveAPIKey() = %q, config key should win", got)
	}

	if got := config.ResolveAPIKey("whisper-cpp"); got != "" {
		t.Errorf("ResolveAPIKey(whisper-cpp) = %q, want empty", got)
	}
}

func TestConfig_ToTranscriberConfig(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")

	config := createTestConfig()
	config.Transcription.Provider = "elevenlabs"
	config.Transcription.Language = "it"
	config.Transcription.AutoDownload = false
	config.Providers["elevenlabs"] = ProviderConfig{APIKey: "el", BaseURL: "http://proxy"}

	tc := config.ToTranscriberConfig()
	if tc.Provider != "elevenlabs" || tc.APIKey != "el" || tc.BaseURL != "http://proxy" {
		t.Errorf("ToTranscriberConfig() = %+v", tc)
	}
	if tc.Language != "it" || tc.Threads != 4 || tc.WhisperCLI != "whisper-cli" || tc.AutoDownload {
		t.Errorf("ToTranscriberConfig() = %+v", tc)
	}
	if tc.Model != "" {
		t.Errorf("Model = %q, the provider default should be used", tc.Model)
	}
}

func TestConfig_ThreadsDefault(t *testing.T) {
	config := DefaultConfig()
	config.applyThreadsDefault()

	expected := runtime.NumCPU() - 1
	if expected < 1 {
		expected = 1
	}
	if config.Transcription.Threads != expected {
		t.Errorf("Threads = %d, want %d", config.Transcription.Threads, expected)
	}

	config.Transcription.Threads = 2
	config.applyThreadsDefault()
	if config.Transcription.Threads != 2 {
		t.Errorf("explicit threads overwritten: %d", config.Transcription.Threads)
	}
}

func TestConfig_Clone(t *testing.T) {
	config := createTestConfig()
	config.Providers["openai"] = ProviderConfig{APIKey: "a"}

	clone := config.Clone()
	clone.Providers["openai"] = ProviderConfig{APIKey: "b"}
	clone.Server.Addr = ":1"

	if config.Providers["openai"].APIKey != "a" || config.Server.Addr != ":5000" {
		t.Error("Clone() shares state with the original")
	}
}

func TestManager_Reload(t *testing.T) {
	path := testutil.CreateTempConfigFile(t, "[transcription]\nprovider = \"whisper-cpp\"\n")

	m, err := NewManagerForFile(path)
	if err != nil {
		t.Fatalf("NewManagerForFile() error = %v", err)
	}

	reloaded := make(chan *Config, 10)
	m.OnReload(func(c *Config) { reloaded <- c })

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	if err := os.WriteFile(path, []byte("[transcription]\nprovider = \"localai\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-reloaded:
			if m.GetConfig().Transcription.Provider == "localai" {
				return
			}
		case <-deadline:
			t.Fatalf("config not reloaded, provider = %q", m.GetConfig().Transcription.Provider)
		}
	}
}

func TestManager_InvalidReloadKeepsConfig(t *testing.T) {
	path := testutil.CreateTempConfigFile(t, "[server]\nmax_concurrent = 2\n")

	m, err := NewManagerForFile(path)
	if err != nil {
		t.Fatalf("NewManagerForFile() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[server]\nmax_concurrent = 0\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	m.reloadConfig()

	if got := m.GetConfig().Server.MaxConcurrent; got != 2 {
		t.Errorf("MaxConcurrent = %d, want previous value 2", got)
	}
}

func TestNewManager_InvalidConfig(t *testing.T) {
	useConfigPath(t, testutil.CreateTempConfigFile(t, "[transcription]\nprovider = \"nope\"\n"))

	if _, err := NewManager(); err == nil {
		t.Error("NewManager() should reject an invalid config")
	}
}
