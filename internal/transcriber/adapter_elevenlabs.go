package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/audio"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
)

// ElevenLabsAdapter implements Model for the ElevenLabs Scribe API
type ElevenLabsAdapter struct {
	client   *http.Client
	endpoint *provider.EndpointConfig
	apiKey   string
	model    string
	language string
}

// ElevenLabsResponse represents the API response
type ElevenLabsResponse struct {
	LanguageCode string           `json:"language_code"`
	Text         string           `json:"text"`
	Words        []ElevenLabsWord `json:"words"`
}

// ElevenLabsWord is one entry of the words list. Type is "word", "spacing"
// or "audio_event".
type ElevenLabsWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

// NewElevenLabsAdapter creates an adapter for ElevenLabs Scribe API
// endpoint: the endpoint config (BaseURL + Path)
// apiKey: ElevenLabs API key
// model: model ID (e.g., "scribe_v1")
// lang: ISO language code, empty for auto-detect
func NewElevenLabsAdapter(endpoint *provider.EndpointConfig, apiKey, model, lang string) *ElevenLabsAdapter {
	return &ElevenLabsAdapter{
		client:   &http.Client{Timeout: 10 * time.Minute},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		language: lang,
	}
}

func (a *ElevenLabsAdapter) Name() string {
	return provider.ProviderElevenLabs + "/" + a.model
}

// Transcribe uploads the file as multipart form data
func (a *ElevenLabsAdapter) Transcribe(ctx context.Context, audioPath string, opts Options) (*transcript.Result, error) {
	info, err := audio.Probe(audioPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	// stream the multipart body instead of buffering the whole file
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(a.writeForm(writer, f, info, opts))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint.URL(), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", a.apiKey)

	start := time.Now()
	resp, err := a.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("elevenlabs-adapter: API call failed after %v: %v", duration, err)
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("elevenlabs-adapter: API returned status %d: %s", resp.StatusCode, string(bodyBytes))
		return nil, &APIError{Provider: provider.ProviderElevenLabs, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var parsed ElevenLabsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := elevenLabsToResult(&parsed, opts.WordTimestamps)
	log.Printf("elevenlabs-adapter: transcribed %s in %v: %d segments", info, duration, len(result.Segments))
	return result, nil
}

func (a *ElevenLabsAdapter) writeForm(writer *multipart.Writer, f io.Reader, info audio.Info, opts Options) error {
	part, err := writer.CreateFormFile("file", info.Filename())
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy audio data: %w", err)
	}

	if err := writer.WriteField("model_id", a.model); err != nil {
		return fmt.Errorf("write model_id: %w", err)
	}

	granularity := "none"
	if opts.WordTimestamps {
		granularity = "word"
	}
	if err := writer.WriteField("timestamps_granularity", granularity); err != nil {
		return fmt.Errorf("write timestamps_granularity: %w", err)
	}

	if a.language != "" {
		if err := writer.WriteField("language_code", a.language); err != nil {
			return fmt.Errorf("write language_code: %w", err)
		}
	}

	return writer.Close()
}

// elevenLabsToResult groups the flat word list into sentence segments
func elevenLabsToResult(resp *ElevenLabsResponse, wordTimestamps bool) *transcript.Result {
	result := &transcript.Result{Text: resp.Text, Language: resp.LanguageCode}
	if resp.Words == nil {
		return result
	}

	b := newSegmentBuilder()
	for _, w := range resp.Words {
		switch w.Type {
		case "spacing":
			b.addSpacing(w.Text)
		case "word", "":
			b.addWord(transcript.Word{Word: w.Text, Start: w.Start, End: w.End})
		}
	}
	result.Segments = b.result()

	if !wordTimestamps {
		for i := range result.Segments {
			result.Segments[i].Words = nil
		}
	}
	return result
}
