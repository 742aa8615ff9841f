// Package server exposes the artifact shelf over HTTP for local preview:
// the generated README rendered as a page, the PDFs themselves, a JSON
// index, and a websocket that tells open pages to reload after a build.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zizai/go-texshelf/internal/log"
	"github.com/zizai/go-texshelf/internal/shelf"
)

// DefaultAddr binds to loopback; the preview server is a local tool.
const DefaultAddr = "127.0.0.1:8787"

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr  string // listen address, default DefaultAddr
	Shelf *shelf.Shelf
}

// Server serves one shelf.
type Server struct {
	addr   string
	shelf  *shelf.Shelf
	logger zerolog.Logger
	page   *pageRenderer

	hubMu sync.Mutex
	hub   chan struct{}
}

// New builds a Server for the given shelf.
func New(opts Options) (*Server, error) {
	if opts.Shelf == nil {
		return nil, errors.New("server: nil shelf")
	}
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	page, err := newPageRenderer(opts.Shelf.Project())
	if err != nil {
		return nil, err
	}
	return &Server{
		addr:   addr,
		shelf:  opts.Shelf,
		logger: log.WithComponent("server"),
		page:   page,
	}, nil
}

// Handler returns the routed handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/artifacts", s.handleArtifacts)
	r.Get("/static/highlight.css", s.handleHighlightCSS)
	r.Get("/ws", s.handleWS)
	r.Get("/{file}", s.handlePDF)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().
			Str("event", "server.listening").
			Str("addr", s.addr).
			Msg("serving shelf")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info().Str("event", "server.stopping").Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// NotifyReload tells every connected page to reload. Called after a build
// lands a new artifact.
func (s *Server) NotifyReload() {
	s.hubMu.Lock()
	defer s.hubMu.Unlock()
	if s.hub != nil {
		close(s.hub)
		s.hub = nil
	}
}

// subscribe returns a channel closed at the next NotifyReload.
func (s *Server) subscribe() <-chan struct{} {
	s.hubMu.Lock()
	defer s.hubMu.Unlock()
	if s.hub == nil {
		s.hub = make(chan struct{})
	}
	return s.hub
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleArtifacts returns the shelf index as JSON.
func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.shelf.List()
	if err != nil {
		s.logger.Error().Err(err).Str("event", "server.index_error").Msg("listing artifacts")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Project   string           `json:"project"`
		Artifacts []shelf.Artifact `json:"artifacts"`
	}{
		Project:   s.shelf.Project(),
		Artifacts: artifacts,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// requestLogger logs one line per request with status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("event", "server.request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade work behind the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	return hj.Hijack()
}
