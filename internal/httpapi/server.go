package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsIndexer/internal/background"
	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/metadata"
	"NewsIndexer/internal/ports"
	"NewsIndexer/pkg/logger"
)

// Notifier runs the indexing fan-out for one article.
type Notifier interface {
	Notify(ctx context.Context, article domain.Article) (domain.Report, error)
}

// Documents serves the cached sitemap and feed.
type Documents interface {
	Sitemap(ctx context.Context) ([]byte, error)
	Feed(ctx context.Context) ([]byte, error)
	BuiltAt() time.Time
}

// Deps wires the use cases behind the HTTP API.
type Deps struct {
	Addr      string
	Store     ports.ArticleStore
	Notifier  Notifier
	Documents Documents
	Metadata  *metadata.Generator
	Tasks     *background.Group
	Logger    *slog.Logger
}

// Server manages the HTTP server and routes.
type Server struct {
	store     ports.ArticleStore
	notifier  Notifier
	documents Documents
	metadata  *metadata.Generator
	tasks     *background.Group
	logger    *slog.Logger

	router *http.ServeMux
	server *http.Server
}

// New creates the HTTP server; call Start to listen.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		store:     deps.Store,
		notifier:  deps.Notifier,
		documents: deps.Documents,
		metadata:  deps.Metadata,
		tasks:     deps.Tasks,
		logger:    log.With("component", "httpapi"),
	}
	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         deps.Addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     logger.New("httpapi", log),
	}
	return s
}

// Handler exposes the routed handler with middleware for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = s.recoveryMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	return handler
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.Debug("HTTP response",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start))
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panicked", "path", r.URL.Path, "panic", rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
