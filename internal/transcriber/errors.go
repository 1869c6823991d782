package transcriber

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrMissingAPIKey       = errors.New("API key required")
	ErrModelNotInstalled   = errors.New("model not installed")
	ErrWhisperCLINotFound  = errors.New("whisper-cli not found: install whisper.cpp first")
)

// APIError is a non-2xx response from a remote transcription API.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}
