package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
)

const noUploadError = "No file uploaded (use field name 'file')"

type healthResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		OK:     true,
		Status: "Backend running",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTranscribe(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, transcript.ErrorOutput{Error: noUploadError})
	}

	dir, err := os.MkdirTemp("", "hyprscribe-upload-")
	if err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	audioPath := filepath.Join(dir, name)
	if err := saveUpload(fh, audioPath); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	output, err := s.transcribe(ctx, audioPath)
	if err != nil {
		log.Printf("Server: transcription of %s failed: %v", name, err)
		return c.JSON(http.StatusInternalServerError, transcript.ErrorOutput{Error: err.Error()})
	}

	var buf bytes.Buffer
	if err := transcript.Encode(&buf, output); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
}

// transcribe loads a fresh model for the request and reshapes its result
func (s *Server) transcribe(ctx context.Context, audioPath string) (transcript.Output, error) {
	cfg := s.config.GetConfig().ToTranscriberConfig()

	s.metrics.inFlight.Inc()
	defer s.metrics.inFlight.Dec()

	start := time.Now()
	model, err := s.loader(ctx, cfg)
	if err != nil {
		s.metrics.observe(cfg.Provider, start, err)
		return transcript.Output{}, fmt.Errorf("load model: %w", err)
	}

	result, err := model.Transcribe(ctx, audioPath, transcriber.Options{WordTimestamps: true})
	s.metrics.observe(cfg.Provider, start, err)
	if err != nil {
		return transcript.Output{}, err
	}

	log.Printf("Server: %s transcribed %s in %v", model.Name(), filepath.Base(audioPath), time.Since(start))
	return transcript.Simplify(result), nil
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	return out.Close()
}
