package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/audio"
	"github.com/leonardotrapani/hyprscribe/internal/language"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
)

// DeepgramAdapter implements Model for Deepgram pre-recorded transcription
type DeepgramAdapter struct {
	client   *http.Client
	endpoint *provider.EndpointConfig
	apiKey   string
	model    string
	language string
}

type deepgramResponse struct {
	Results *deepgramResults `json:"results,omitempty"`
	ErrCode string           `json:"err_code,omitempty"`
	ErrMsg  string           `json:"err_msg,omitempty"`
}

type deepgramResults struct {
	Channels   []deepgramChannel   `json:"channels,omitempty"`
	Utterances []deepgramUtterance `json:"utterances,omitempty"`
}

type deepgramChannel struct {
	Alternatives     []deepgramAlternative `json:"alternatives,omitempty"`
	DetectedLanguage string                `json:"detected_language,omitempty"`
}

type deepgramAlternative struct {
	Transcript string         `json:"transcript"`
	Confidence float64        `json:"confidence"`
	Words      []deepgramWord `json:"words"`
}

type deepgramUtterance struct {
	Start      float64        `json:"start"`
	End        float64        `json:"end"`
	Transcript string         `json:"transcript"`
	Words      []deepgramWord `json:"words"`
}

type deepgramWord struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word,omitempty"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
}

// NewDeepgramAdapter creates an adapter for Deepgram's /v1/listen endpoint
func NewDeepgramAdapter(endpoint *provider.EndpointConfig, apiKey, model, lang string) *DeepgramAdapter {
	return &DeepgramAdapter{
		client:   &http.Client{Timeout: 10 * time.Minute},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		language: lang,
	}
}

func (a *DeepgramAdapter) Name() string {
	return provider.ProviderDeepgram + "/" + a.model
}

// Transcribe streams the file to Deepgram's pre-recorded API
func (a *DeepgramAdapter) Transcribe(ctx context.Context, audioPath string, opts Options) (*transcript.Result, error) {
	info, err := audio.Probe(audioPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	apiURL, err := a.buildURL()
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, f)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = info.Size
	req.Header.Set("Authorization", "Token "+a.apiKey)
	req.Header.Set("Content-Type", info.ContentType)

	start := time.Now()
	resp, err := a.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("deepgram-adapter: API call failed after %v: %v", duration, err)
		return nil, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: provider.ProviderDeepgram, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.ErrMsg != "" {
		return nil, fmt.Errorf("deepgram error %s: %s", parsed.ErrCode, parsed.ErrMsg)
	}

	result := deepgramToResult(parsed.Results, opts.WordTimestamps)
	log.Printf("deepgram-adapter: transcribed %s in %v: %d segments", info, duration, len(result.Segments))
	return result, nil
}

// buildURL constructs the API URL with query parameters
func (a *DeepgramAdapter) buildURL() (string, error) {
	u, err := url.Parse(a.endpoint.URL())
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("model", a.model)
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	q.Set("utterances", "true")
	if a.language != "" {
		q.Set("language", language.ToProviderFormat(a.language, provider.ProviderDeepgram))
	} else {
		q.Set("detect_language", "true")
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// deepgramToResult uses utterances as segments. Without utterances the
// first alternative becomes a single segment spanning its words.
func deepgramToResult(res *deepgramResults, wordTimestamps bool) *transcript.Result {
	result := &transcript.Result{}
	if res == nil || len(res.Channels) == 0 || len(res.Channels[0].Alternatives) == 0 {
		return result
	}

	ch := res.Channels[0]
	alt := ch.Alternatives[0]
	result.Text = alt.Transcript
	result.Language = ch.DetectedLanguage

	if res.Utterances != nil {
		result.Segments = make([]transcript.Segment, 0, len(res.Utterances))
		for _, u := range res.Utterances {
			seg := transcript.Segment{Start: u.Start, End: u.End, Text: u.Transcript}
			if wordTimestamps && u.Words != nil {
				seg.Words = deepgramWords(u.Words)
			}
			result.Segments = append(result.Segments, seg)
		}
		return result
	}

	if len(alt.Words) > 0 {
		seg := transcript.Segment{
			Start: alt.Words[0].Start,
			End:   alt.Words[len(alt.Words)-1].End,
			Text:  alt.Transcript,
		}
		if wordTimestamps {
			seg.Words = deepgramWords(alt.Words)
		}
		result.Segments = []transcript.Segment{seg}
	}
	return result
}

func deepgramWords(in []deepgramWord) []transcript.Word {
	words := make([]transcript.Word, 0, len(in))
	for _, w := range in {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		words = append(words, transcript.Word{Word: text, Start: w.Start, End: w.End})
	}
	return words
}
