// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TestContext returns a context with a reasonable timeout for tests
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// WriteWAV writes a mono 16-bit WAV file of the given length filled with a
// low square wave, and returns its path.
func WriteWAV(t *testing.T, dir, name string, sampleRate int, duration time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	n := int(duration.Seconds() * float64(sampleRate))
	data := make([]int, n)
	for i := range data {
		if (i/40)%2 == 0 {
			data[i] = 800
		} else {
			data[i] = -800
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
	return path
}

// FakeWhisperCLI installs a shell script that behaves like whisper-cli with
// -ojf: it writes output to "<-of>.json" and exits with exitCode. The
// arguments it received are written one per line to the returned args file.
func FakeWhisperCLI(t *testing.T, jsonOutput string, exitCode int) (binPath, argsFile string) {
	t.Helper()

	dir := t.TempDir()
	binPath = filepath.Join(dir, "whisper-cli")
	argsFile = filepath.Join(dir, "args.txt")

	var script strings.Builder
	script.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&script, "printf '%%s\\n' \"$@\" > '%s'\n", argsFile)
	script.WriteString("out=\"\"\n")
	script.WriteString("while [ $# -gt 0 ]; do\n")
	script.WriteString("  if [ \"$1\" = \"-of\" ]; then out=\"$2\"; fi\n")
	script.WriteString("  shift\n")
	script.WriteString("done\n")
	if exitCode != 0 {
		fmt.Fprintf(&script, "echo 'error: failed to read audio' >&2\nexit %d\n", exitCode)
	} else {
		script.WriteString("cat > \"$out.json\" <<'HYPRSCRIBE_EOF'\n")
		script.WriteString(jsonOutput)
		script.WriteString("\nHYPRSCRIBE_EOF\n")
	}

	if err := os.WriteFile(binPath, []byte(script.String()), 0755); err != nil {
		t.Fatalf("write fake whisper-cli: %v", err)
	}
	return binPath, argsFile
}

// ReadArgs returns the arguments recorded by FakeWhisperCLI
func ReadArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args file: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}
