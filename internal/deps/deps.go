// Package deps checks for the external programs hyprscribe shells out to.
package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

const versionTimeout = 3 * time.Second

// CheckWhisperCLI checks if the whisper.cpp CLI is installed. bin is a name
// looked up on PATH or a path; empty means "whisper-cli".
func CheckWhisperCLI(bin string) Status {
	if bin == "" {
		bin = "whisper-cli"
	}
	return check(bin, "--version")
}

func check(bin string, versionFlag string) Status {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	// first non-empty output line is the version
	output, err := exec.CommandContext(ctx, path, versionFlag).CombinedOutput()
	if err == nil {
		for _, line := range strings.Split(string(output), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				status.Version = line
				break
			}
		}
	}

	return status
}

// String describes the status for CLI output
func (s Status) String() string {
	if !s.Installed {
		return "not installed"
	}
	if s.Version != "" {
		return s.Path + " (" + s.Version + ")"
	}
	return s.Path
}
