package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leonardotrapani/hyprscribe/internal/audio"
	"github.com/leonardotrapani/hyprscribe/internal/language"
	"github.com/leonardotrapani/hyprscribe/internal/models/whisper"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
)

// WhisperCppAdapter runs the local whisper.cpp CLI and reads its full JSON
// output (-ojf), which carries per-token offsets.
type WhisperCppAdapter struct {
	binPath   string
	modelID   string
	modelPath string
	language  string
	threads   int
}

// NewWhisperCppAdapter creates a new whisper-cpp adapter
// binPath: resolved path of whisper-cli
// modelPath: full path to the ggml model file
// lang: whisper language code, empty for auto-detect
// threads: number of CPU threads (0 for whisper-cli's default)
func NewWhisperCppAdapter(binPath, modelID, modelPath, lang string, threads int) *WhisperCppAdapter {
	return &WhisperCppAdapter{
		binPath:   binPath,
		modelID:   modelID,
		modelPath: modelPath,
		language:  lang,
		threads:   threads,
	}
}

// loadWhisperCpp resolves the binary and model file, downloading the model
// on first use when allowed.
func loadWhisperCpp(ctx context.Context, cfg Config) (*WhisperCppAdapter, error) {
	bin := cfg.WhisperCLI
	if bin == "" {
		bin = "whisper-cli"
	}
	binPath, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w (looked for %q)", ErrWhisperCLINotFound, bin)
	}

	modelPath := cfg.ModelPath
	if modelPath == "" {
		switch {
		case whisper.IsInstalled(cfg.Model):
			modelPath = whisper.GetModelPath(cfg.Model)
		case cfg.AutoDownload:
			var lastPercent int64 = -10
			modelPath, err = whisper.EnsureInstalled(ctx, cfg.Model, func(downloaded, total int64) {
				if total <= 0 {
					return
				}
				if percent := downloaded * 100 / total; percent >= lastPercent+10 {
					log.Printf("Whisper: downloading %s: %d%%", cfg.Model, percent)
					lastPercent = percent
				}
			})
			if err != nil {
				return nil, fmt.Errorf("download model %s: %w", cfg.Model, err)
			}
		default:
			return nil, fmt.Errorf("%w: %s (run: hyprscribe model download %s)", ErrModelNotInstalled, cfg.Model, cfg.Model)
		}
	}

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	return NewWhisperCppAdapter(binPath, cfg.Model, modelPath, cfg.Language, cfg.Threads), nil
}

func (a *WhisperCppAdapter) Name() string {
	return provider.ProviderWhisperCpp + "/" + a.modelID
}

func (a *WhisperCppAdapter) Transcribe(ctx context.Context, audioPath string, opts Options) (*transcript.Result, error) {
	info, err := audio.Probe(audioPath)
	if err != nil {
		return nil, err
	}
	if info.IsWAV() && info.SampleRate != audio.WhisperSampleRate {
		log.Printf("whisper-cpp: %s is %d Hz, whisper-cli may reject anything but %d Hz", info.Filename(), info.SampleRate, audio.WhisperSampleRate)
	}

	tmpDir, err := os.MkdirTemp("", "hyprscribe-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	outPrefix := filepath.Join(tmpDir, "transcript")

	lang := language.ToProviderFormat(a.language, provider.ProviderWhisperCpp)

	args := []string{
		"-m", a.modelPath,
		"-l", lang,
		"-ojf", // full JSON, includes token offsets
		"-of", outPrefix,
		"-np", // no progress
		"-f", audioPath,
	}
	if a.threads > 0 {
		args = append(args, "-t", strconv.Itoa(a.threads))
	}

	cmd := exec.CommandContext(ctx, a.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("whisper-cpp: command failed after %v: %v\nstderr: %s", duration, err, stderr.String())
		return nil, fmt.Errorf("whisper-cli failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper-cli output: %w", err)
	}

	result, err := parseWhisperCppJSON(data, opts.WordTimestamps)
	if err != nil {
		return nil, err
	}

	log.Printf("whisper-cpp: transcribed %s in %v: %d segments", info, duration, len(result.Segments))
	return result, nil
}

type whisperCppOutput struct {
	Result *struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []whisperCppSegment `json:"transcription"`
}

type whisperCppSegment struct {
	Offsets whisperCppOffsets `json:"offsets"`
	Text    string            `json:"text"`
	Tokens  []whisperCppToken `json:"tokens"`
}

// offsets are milliseconds from the start of the audio
type whisperCppOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type whisperCppToken struct {
	Text    tokenBytes        `json:"text"`
	Offsets whisperCppOffsets `json:"offsets"`
	ID      int               `json:"id"`
	P       float64           `json:"p"`
}

func parseWhisperCppJSON(data []byte, wordTimestamps bool) (*transcript.Result, error) {
	var out whisperCppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper-cli output: %w", err)
	}

	result := &transcript.Result{}
	if out.Result != nil {
		result.Language = out.Result.Language
	}
	if out.Transcription == nil {
		return result, nil
	}

	var text strings.Builder
	result.Segments = make([]transcript.Segment, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text.WriteString(seg.Text)
		s := transcript.Segment{
			Start: msToSeconds(seg.Offsets.From),
			End:   msToSeconds(seg.Offsets.To),
			Text:  seg.Text,
		}
		if wordTimestamps && seg.Tokens != nil {
			s.Words = tokensToWords(seg.Tokens)
		}
		result.Segments = append(result.Segments, s)
	}
	result.Text = text.String()
	return result, nil
}

// tokensToWords merges sub-word tokens into words. A token that starts with
// a space opens a new word; other tokens (word pieces, punctuation) extend
// the current one. Special tokens such as [_BEG_] and [_TT_150] are dropped.
// Bytes are joined before conversion so characters split across tokens
// survive.
func tokensToWords(tokens []whisperCppToken) []transcript.Word {
	words := []transcript.Word{}
	var pieces [][]byte
	for _, tok := range tokens {
		if len(tok.Text) == 0 || isSpecialToken(string(tok.Text)) {
			continue
		}
		if len(words) == 0 || tok.Text[0] == ' ' {
			words = append(words, transcript.Word{
				Start: msToSeconds(tok.Offsets.From),
				End:   msToSeconds(tok.Offsets.To),
			})
			pieces = append(pieces, append([]byte(nil), tok.Text...))
			continue
		}
		last := len(words) - 1
		pieces[last] = append(pieces[last], tok.Text...)
		words[last].End = msToSeconds(tok.Offsets.To)
	}
	for i := range words {
		words[i].Word = strings.ToValidUTF8(string(pieces[i]), "\uFFFD")
	}
	return words
}

// tokenBytes is token text kept as raw bytes. whisper.cpp tokens are byte
// pieces and may end in the middle of a UTF-8 sequence.
type tokenBytes []byte

func (t *tokenBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	b, err := unquoteBytes(data)
	if err != nil {
		return err
	}
	*t = b
	return nil
}

// unquoteBytes decodes a JSON string literal. Bytes outside escape
// sequences are copied unchanged, valid UTF-8 or not.
func unquoteBytes(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return nil, fmt.Errorf("token text is not a JSON string: %s", data)
	}
	s := data[1 : len(data)-1]
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, fmt.Errorf("token text ends in an escape: %s", data)
		}
		switch s[i] {
		case '"', '\\', '/':
			out = append(out, s[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r, ok := hex4(s, i+1)
			if !ok {
				return nil, fmt.Errorf("invalid \\u escape in token text: %s", data)
			}
			i += 4
			if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if r2, ok := hex4(s, i+3); ok {
					if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
						r = dec
						i += 6
					}
				}
			}
			out = utf8.AppendRune(out, r)
		default:
			return nil, fmt.Errorf("invalid escape in token text: %s", data)
		}
	}
	return out, nil
}

func hex4(s []byte, at int) (rune, bool) {
	if at+4 > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(string(s[at:at+4]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func isSpecialToken(text string) bool {
	return strings.HasPrefix(text, "[_") && strings.HasSuffix(text, "]")
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
