package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/deps"
	"github.com/leonardotrapani/hyprscribe/internal/models/whisper"
	"github.com/leonardotrapani/hyprscribe/internal/provider"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
	"github.com/spf13/cobra"
)

const (
	defaultSampleURL  = "https://raw.githubusercontent.com/mozilla/DeepSpeech/master/data/smoke_test/LDC93S1.wav"
	defaultSampleName = "testaudio.wav"
)

type testModelsOptions struct {
	audioPath     string
	timeout       time.Duration
	outputPath    string
	downloadLocal bool
	language      string
}

type modelTestResult struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Local      bool   `json:"local"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Segments   int    `json:"segments"`
	Words      int    `json:"words"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

type testReport struct {
	StartedAt  time.Time         `json:"started_at"`
	AudioSrc   string            `json:"audio_src"`
	Results    []modelTestResult `json:"results"`
	PassCount  int               `json:"pass_count"`
	FailCount  int               `json:"fail_count"`
	SkipCount  int               `json:"skip_count"`
	TotalCount int               `json:"total_count"`
}

func testModelsCmd(loader transcriber.Loader) *cobra.Command {
	var opts testModelsOptions

	cmd := &cobra.Command{
		Use:   "test-models",
		Short: "Transcribe a sample with every provider and report the results",
		Long: `Run one transcription per provider. Providers without an API key and a
missing whisper-cli or local model are reported as skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestModels(cmd.Context(), cmd.OutOrStdout(), loader, opts)
		},
	}

	cmd.Flags().StringVar(&opts.audioPath, "audio", "", "audio file to use (defaults to downloaded sample)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "per-provider timeout")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "write JSON report to file")
	cmd.Flags().BoolVar(&opts.downloadLocal, "download-local", false, "download the local whisper model if missing")
	cmd.Flags().StringVar(&opts.language, "language", "", "language code to test (empty for auto-detect)")

	return cmd
}

func runTestModels(ctx context.Context, out io.Writer, loader transcriber.Loader, opts testModelsOptions) error {
	if opts.timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	startedAt := time.Now().UTC()

	audioPath := opts.audioPath
	if audioPath == "" {
		path, err := ensureDefaultSample(ctx, out)
		if err != nil {
			return err
		}
		audioPath = path
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var results []modelTestResult
	for _, name := range provider.ListProviders() {
		results = append(results, runProviderTest(ctx, out, cfg, name, audioPath, loader, opts))
	}

	report := summarizeReport(startedAt, audioPath, results)
	printReport(out, report)

	if opts.outputPath != "" {
		if err := writeReport(opts.outputPath, report); err != nil {
			return err
		}
	}

	if report.FailCount > 0 {
		return fmt.Errorf("%d failed, %d skipped", report.FailCount, report.SkipCount)
	}
	return nil
}

func runProviderTest(ctx context.Context, out io.Writer, cfg *config.Config, name, audioPath string, loader transcriber.Loader, opts testModelsOptions) modelTestResult {
	p := provider.GetProvider(name)
	model := p.Model()
	result := modelTestResult{
		Provider: name,
		Model:    model.ID,
		Local:    model.Local,
		Status:   "fail",
	}

	tcfg := cfg.ToTranscriberConfig()
	tcfg.Provider = name
	tcfg.APIKey = cfg.ResolveAPIKey(name)
	tcfg.BaseURL = cfg.Providers[name].BaseURL
	tcfg.Language = opts.language
	tcfg.AutoDownload = false

	if model.NeedsDownload() {
		if !deps.CheckWhisperCLI(tcfg.WhisperCLI).Installed {
			result.Status = "skip"
			result.Error = tcfg.WhisperCLI + " not found"
			return result
		}
		if !whisper.IsInstalled(model.ID) {
			if !opts.downloadLocal {
				result.Status = "skip"
				result.Error = "local model not installed"
				return result
			}
			if err := runModelDownload(ctx, out, model.ID); err != nil {
				result.Error = err.Error()
				return result
			}
		}
	}

	if p.RequiresAPIKey() && tcfg.APIKey == "" {
		result.Status = "skip"
		result.Error = "missing api key"
		return result
	}

	testCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	start := time.Now()
	res, err := transcribeOnce(testCtx, loader, tcfg, audioPath)
	result.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	simplified := transcript.Simplify(res)
	result.Status = "pass"
	result.Output = simplified.Text
	result.Segments = len(simplified.Segments)
	for _, seg := range simplified.Segments {
		result.Words += len(seg.Words)
	}
	return result
}

func transcribeOnce(ctx context.Context, loader transcriber.Loader, cfg transcriber.Config, audioPath string) (*transcript.Result, error) {
	model, err := loader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return model.Transcribe(ctx, audioPath, transcriber.Options{WordTimestamps: true})
}

func ensureDefaultSample(ctx context.Context, out io.Writer) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, "hyprscribe", defaultSampleName)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	fmt.Fprintln(out, "test-models: downloading sample audio...")
	if err := downloadSample(ctx, defaultSampleURL, path); err != nil {
		return "", fmt.Errorf("download sample: %w (use --audio to skip download)", err)
	}
	return path, nil
}

func downloadSample(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	tmpPath := path + ".downloading"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer func() {
		f.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func summarizeReport(startedAt time.Time, audioSrc string, results []modelTestResult) testReport {
	report := testReport{
		StartedAt: startedAt,
		AudioSrc:  audioSrc,
		Results:   results,
	}
	for _, r := range results {
		report.TotalCount++
		switch r.Status {
		case "pass":
			report.PassCount++
		case "fail":
			report.FailCount++
		case "skip":
			report.SkipCount++
		}
	}
	return report
}

func printReport(out io.Writer, report testReport) {
	fmt.Fprintf(out, "test-models: total=%d pass=%d fail=%d skip=%d\n", report.TotalCount, report.PassCount, report.FailCount, report.SkipCount)
	fmt.Fprintf(out, "audio: %s\n", report.AudioSrc)
	for _, r := range report.Results {
		line := fmt.Sprintf("%s %s/%s", r.Status, r.Provider, r.Model)
		if r.DurationMS > 0 {
			line += fmt.Sprintf(" %dms", r.DurationMS)
		}
		if r.Status == "pass" {
			line += fmt.Sprintf(" segments=%d words=%d", r.Segments, r.Words)
		}
		if r.Error != "" {
			line += fmt.Sprintf(" error=%s", truncateString(r.Error, 160))
		}
		if r.Output != "" {
			line += fmt.Sprintf(" output=%q", truncateString(r.Output, 120))
		}
		fmt.Fprintln(out, line)
	}
}

func writeReport(path string, report testReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func truncateString(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
