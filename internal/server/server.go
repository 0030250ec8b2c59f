// Package server exposes the summarization pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tldrbot/internal/domain"
	"tldrbot/internal/fetch"
	"tldrbot/internal/pipeline"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 3 * time.Minute
	shutdownTimeout   = 10 * time.Second
	maxBodyBytes      = 1 << 20
	corsMaxAge        = 12 * time.Hour
)

type Summarizer interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Document, error)
}

type Server struct {
	engine     *gin.Engine
	summarizer Summarizer
	fetcher    Fetcher
	defaults   domain.SummaryDefaults
	log        *slog.Logger
}

// New builds the router. fetcher may be nil, in which case requests with a
// URL are rejected.
func New(
	summarizer Summarizer,
	fetcher Fetcher,
	defaults domain.SummaryDefaults,
	allowedOrigins []string,
	log *slog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:     gin.New(),
		summarizer: summarizer,
		fetcher:    fetcher,
		defaults:   defaults,
		log:        log,
	}

	s.engine.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		loggingMiddleware(log),
		corsMiddleware(allowedOrigins),
	)

	s.engine.GET("/healthz", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/summaries", s.handleCreateSummary)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "HTTP server is listening",
			"addr", addr)

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.log.InfoContext(ctx, "HTTP server is stopped")

	return nil
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        corsMaxAge,
	}

	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
