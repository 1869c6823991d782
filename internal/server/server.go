// Package server exposes transcription over HTTP for browser frontends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"
)

// Environment overrides kept compatible with existing frontend deployments
const (
	EnvPort           = "PORT"
	EnvFrontendOrigin = "FRONTEND_ORIGIN"
)

// ConfigSource provides the current configuration. *config.Manager
// satisfies it and picks up edits to the config file.
type ConfigSource interface {
	GetConfig() *config.Config
}

type Server struct {
	config  ConfigSource
	loader  transcriber.Loader
	echo    *echo.Echo
	metrics *metrics
	sem     *semaphore.Weighted
	addr    string
}

// New builds the HTTP server. Listen address, body limit, CORS origin and
// concurrency are fixed at construction; transcription settings are read
// from src on every request.
func New(src ConfigSource, loader transcriber.Loader) *Server {
	cfg := src.GetConfig()

	s := &Server{
		config:  src,
		loader:  loader,
		metrics: newMetrics(),
		sem:     semaphore.NewWeighted(int64(cfg.Server.MaxConcurrent)),
		addr:    resolveAddr(cfg.Server.Addr),
	}
	s.echo = s.newEcho(cfg)
	return s
}

func (s *Server) newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if err := c.JSON(code, transcript.ErrorOutput{Error: msg}); err != nil {
			log.Printf("Server: failed to write error response: %v", err)
		}
	}

	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.UploadLimitMB)))

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			log.Printf("Server: %s %s %d %v", req.Method, req.URL.Path, c.Response().Status, time.Since(start))
			return err
		}
	})

	e.Use(middleware.Recover())

	origin := cfg.Server.AllowedOrigin
	if env := os.Getenv(EnvFrontendOrigin); env != "" {
		origin = env
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(origin, ","),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	e.GET("/api/health", s.handleHealth)
	e.POST("/api/transcribe", s.handleTranscribe)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	return e
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server: listening on %s", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// resolveAddr applies the PORT override to the configured address
func resolveAddr(addr string) string {
	port := os.Getenv(EnvPort)
	if port == "" {
		return addr
	}
	host := addr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		host = addr[:i]
	}
	return host + ":" + port
}
