package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticConfig struct {
	cfg *config.Config
}

func (s staticConfig) GetConfig() *config.Config {
	return s.cfg.Clone()
}

type fakeModel struct {
	result *transcript.Result
	err    error
	delay  time.Duration

	mu        sync.Mutex
	seenPaths []string
	seenData  [][]byte
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (m *fakeModel) Name() string { return "fake/test" }

func (m *fakeModel) Transcribe(ctx context.Context, audioPath string, opts transcriber.Options) (*transcript.Result, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		max := m.maxFlight.Load()
		if n <= max || m.maxFlight.CompareAndSwap(max, n) {
			break
		}
	}

	data, _ := os.ReadFile(audioPath)
	m.mu.Lock()
	m.seenPaths = append(m.seenPaths, audioPath)
	m.seenData = append(m.seenData, data)
	m.mu.Unlock()

	if !opts.WordTimestamps {
		return nil, errors.New("word timestamps not requested")
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.result, m.err
}

func loaderFor(m transcriber.Model, err error) transcriber.Loader {
	return func(ctx context.Context, cfg transcriber.Config) (transcriber.Model, error) {
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Transcription.Threads = 1
	return cfg
}

func sampleResult() *transcript.Result {
	return &transcript.Result{
		Text: " Hello world. ",
		Segments: []transcript.Segment{{
			Start: 0.001,
			End:   1.999,
			Text:  " Hello world. ",
			Words: []transcript.Word{
				{Word: " Hello", Start: 0.001, End: 0.5},
				{Word: " world.", Start: 0.501, End: 1.9},
			},
		}},
	}
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := New(staticConfig{testConfig()}, loaderFor(&fakeModel{}, nil))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.OK)
	require.Equal(t, "Backend running", got.Status)
	_, err := time.Parse(time.RFC3339, got.Time)
	require.NoError(t, err)
}

func TestTranscribe(t *testing.T) {
	model := &fakeModel{result: sampleResult()}
	s := New(staticConfig{testConfig()}, loaderFor(model, nil))

	rec := serve(s, uploadRequest(t, "file", "clip.wav", []byte("RIFF fake audio")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t,
		`{"text": "Hello world.", "segments": [{"start": 0.0, "end": 2.0, "text": "Hello world.", "words": [{"word": "Hello", "start": 0.0}, {"word": "world.", "start": 0.5}]}]}`+"\n",
		rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	require.Len(t, model.seenPaths, 1)
	require.True(t, strings.HasSuffix(model.seenPaths[0], "clip.wav"))
	require.Equal(t, []byte("RIFF fake audio"), model.seenData[0])

	_, err := os.Stat(model.seenPaths[0])
	require.True(t, os.IsNotExist(err), "upload should be removed after the request")
}

func TestTranscribe_MissingFile(t *testing.T) {
	model := &fakeModel{result: sampleResult()}
	s := New(staticConfig{testConfig()}, loaderFor(model, nil))

	rec := serve(s, uploadRequest(t, "audio", "clip.wav", []byte("data")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got transcript.ErrorOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "No file uploaded (use field name 'file')", got.Error)
	require.Empty(t, model.seenPaths)
}

func TestTranscribe_LoadError(t *testing.T) {
	s := New(staticConfig{testConfig()}, loaderFor(nil, transcriber.ErrMissingAPIKey))

	rec := serve(s, uploadRequest(t, "file", "clip.wav", []byte("data")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var got transcript.ErrorOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Contains(t, got.Error, "API key required")
}

func TestTranscribe_ModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("whisper-cli failed: exit status 1")}
	s := New(staticConfig{testConfig()}, loaderFor(model, nil))

	rec := serve(s, uploadRequest(t, "file", "clip.wav", []byte("data")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "whisper-cli failed")

	metrics := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), `hyprscribe_transcriptions_total{provider="whisper-cpp",status="error"} 1`)
}

func TestMetrics(t *testing.T) {
	model := &fakeModel{result: sampleResult()}
	s := New(staticConfig{testConfig()}, loaderFor(model, nil))

	for i := 0; i < 2; i++ {
		rec := serve(s, uploadRequest(t, "file", "clip.wav", []byte("data")))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `hyprscribe_transcriptions_total{provider="whisper-cpp",status="ok"} 2`)
	require.Contains(t, body, `hyprscribe_transcription_duration_seconds_count{provider="whisper-cpp"} 2`)
	require.Contains(t, body, "hyprscribe_transcriptions_in_flight 0")
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.UploadLimitMB = 1
	model := &fakeModel{result: sampleResult()}
	s := New(staticConfig{cfg}, loaderFor(model, nil))

	rec := serve(s, uploadRequest(t, "file", "big.wav", bytes.Repeat([]byte{1}, 2<<20)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Empty(t, model.seenPaths)
}

func TestCORS(t *testing.T) {
	t.Run("configured origin", func(t *testing.T) {
		cfg := testConfig()
		cfg.Server.AllowedOrigin = "http://localhost:3000"
		s := New(staticConfig{cfg}, loaderFor(&fakeModel{}, nil))

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(s, req)
		require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(EnvFrontendOrigin, "https://app.example.com")
		s := New(staticConfig{testConfig()}, loaderFor(&fakeModel{}, nil))

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := serve(s, req)
		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec = serve(s, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestConcurrencyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxConcurrent = 1
	model := &fakeModel{result: sampleResult(), delay: 50 * time.Millisecond}
	s := New(staticConfig{cfg}, loaderFor(model, nil))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		req := uploadRequest(t, "file", "clip.wav", []byte("data"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := serve(s, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), model.maxFlight.Load())
	require.Len(t, model.seenPaths, 3)
}

func TestResolveAddr(t *testing.T) {
	t.Setenv(EnvPort, "")
	require.Equal(t, ":5000", resolveAddr(":5000"))

	t.Setenv(EnvPort, "8081")
	require.Equal(t, ":8081", resolveAddr(":5000"))
	require.Equal(t, "127.0.0.1:8081", resolveAddr("127.0.0.1:5000"))
}

func TestRun_Shutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(staticConfig{cfg}, loaderFor(&fakeModel{}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
