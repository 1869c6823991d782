package transcriber

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/audio"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Model for OpenAI-compatible audio APIs
// (OpenAI, Groq, LocalAI) using verbose_json with word granularity.
type OpenAIAdapter struct {
	client   *openai.Client
	provider string
	model    string
	language string
}

// NewOpenAIAdapter creates an adapter for an OpenAI-compatible endpoint.
// endpoint.BaseURL must include the API version prefix (e.g. ".../v1").
func NewOpenAIAdapter(providerName string, endpoint *provider.EndpointConfig, apiKey, model, lang string) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(apiKey)
	if endpoint != nil && endpoint.BaseURL != "" {
		clientConfig.BaseURL = endpoint.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: 10 * time.Minute}

	return &OpenAIAdapter{
		client:   openai.NewClientWithConfig(clientConfig),
		provider: providerName,
		model:    model,
		language: lang,
	}
}

func (a *OpenAIAdapter) Name() string {
	return a.provider + "/" + a.model
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, audioPath string, opts Options) (*transcript.Result, error) {
	info, err := audio.Probe(audioPath)
	if err != nil {
		return nil, err
	}

	req := openai.AudioRequest{
		Model:    a.model,
		FilePath: audioPath,
		Language: a.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	}
	if opts.WordTimestamps {
		req.TimestampGranularities = append(req.TimestampGranularities, openai.TranscriptionTimestampGranularityWord)
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-adapter: API call failed after %v: %v", a.provider, duration, err)
		return nil, fmt.Errorf("%s transcription: %w", a.provider, err)
	}

	result := &transcript.Result{Text: resp.Text, Language: resp.Language}
	if resp.Segments != nil {
		result.Segments = make([]transcript.Segment, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
			result.Segments = append(result.Segments, transcript.Segment{
				Start: seg.Start,
				End:   seg.End,
				Text:  seg.Text,
			})
		}
	}

	if opts.WordTimestamps && resp.Words != nil {
		words := make([]transcript.Word, 0, len(resp.Words))
		for _, w := range resp.Words {
			words = append(words, transcript.Word{Word: w.Word, Start: w.Start, End: w.End})
		}
		if len(result.Segments) == 0 && len(words) > 0 {
			result.Segments = []transcript.Segment{{
				Start: words[0].Start,
				End:   words[len(words)-1].End,
				Text:  resp.Text,
			}}
		}
		assignWords(result.Segments, words)
	}

	log.Printf("%s-adapter: transcribed %s in %v: %d segments", a.provider, info, duration, len(result.Segments))
	return result, nil
}
