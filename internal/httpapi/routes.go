package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NewsIndexer/internal/domain"
	"NewsIndexer/internal/infrastructure/storage"
	"NewsIndexer/internal/usecase"
)

const maxNotifyBody = 1 << 20

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /rss.xml", s.handleFeed)
	mux.HandleFunc("POST /api/notify", s.handleNotify)
	mux.HandleFunc("GET /api/articles/{slug}/metadata", s.handleMetadata)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	s.serveDocument(w, r, "application/xml; charset=utf-8", s.documents.Sitemap)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.serveDocument(w, r, "application/rss+xml; charset=utf-8", s.documents.Feed)
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, contentType string, load func(context.Context) ([]byte, error)) {
	doc, err := load(r.Context())
	if err != nil {
		s.logger.Error("load document", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "document unavailable")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=600")
	if built := s.documents.BuiltAt(); !built.IsZero() {
		w.Header().Set("Last-Modified", built.UTC().Format(http.TimeFormat))
	}
	_, _ = w.Write(doc)
}

type notifyRequest struct {
	Slug    string          `json:"slug"`
	Article *domain.Article `json:"article"`
}

type notifyAccepted struct {
	Status string `json:"status"`
	Slug   string `json:"slug"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNotifyBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	article, status, err := s.resolveArticle(r.Context(), req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	if !article.Eligible() {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s: %q", usecase.ErrNotEligible, article.Slug))
		return
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait || s.tasks == nil {
		report, err := s.notifier.Notify(r.Context(), article)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	s.tasks.Go(r.Context(), "notify "+article.Slug, func(ctx context.Context) error {
		_, err := s.notifier.Notify(ctx, article)
		return err
	})
	writeJSON(w, http.StatusAccepted, notifyAccepted{Status: "accepted", Slug: article.Slug})
}

func (s *Server) resolveArticle(ctx context.Context, req notifyRequest) (domain.Article, int, error) {
	if req.Article != nil {
		return *req.Article, http.StatusOK, nil
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return domain.Article{}, http.StatusBadRequest, errors.New("slug or article is required")
	}
	article, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Article{}, statusFor(err), err
	}
	return article, http.StatusOK, nil
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	article, err := s.store.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.metadata.All(article))
}

type healthResponse struct {
	Status         string     `json:"status"`
	SitemapBuiltAt *time.Time `json:"sitemapBuiltAt,omitempty"`
	PendingTasks   int64      `json:"pendingTasks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if built := s.documents.BuiltAt(); !built.IsZero() {
		resp.SitemapBuiltAt = &built
	}
	if s.tasks != nil {
		resp.PendingTasks = s.tasks.Pending()
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrArticleNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotEligible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
