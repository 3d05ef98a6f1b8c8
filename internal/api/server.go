// Package api exposes site scraping over HTTP for the dashboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/masahif/sitecorpus/internal/config"
	"github.com/masahif/sitecorpus/internal/crawler"
	"github.com/masahif/sitecorpus/internal/metrics"
	"github.com/masahif/sitecorpus/internal/storage"
)

const maxRequestBytes = 1 << 20

// ContentStore persists scrape results per integration.
type ContentStore interface {
	SaveResult(ctx context.Context, integrationID, rootURL string, result *crawler.ScrapeResult) (*storage.ScrapeRun, error)
	ListPages(ctx context.Context, integrationID string) ([]storage.StoredPage, error)
	ListRuns(ctx context.Context, integrationID string) ([]storage.ScrapeRun, error)
}

// Server wires HTTP handlers to the scraper and store.
type Server struct {
	router         chi.Router
	scraper        crawler.SiteScraper
	store          ContentStore
	requestTimeout time.Duration
}

type scrapeRequest struct {
	URL      string `json:"url"`
	MaxPages int    `json:"max_pages"`
}

type scrapeResponse struct {
	*crawler.ScrapeResult
	RunID         string `json:"runId"`
	PagesInserted int    `json:"pagesInserted"`
	PagesUpdated  int    `json:"pagesUpdated"`
}

// NewServer constructs a Server with middleware and routes.
func NewServer(scraper crawler.SiteScraper, store ContentStore, cfg config.ServerConfig) *Server {
	s := &Server{
		scraper:        scraper,
		store:          store,
		requestTimeout: cfg.RequestTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1/integrations/{integrationID}", func(r chi.Router) {
		r.Post("/scrape", s.scrape)
		r.Get("/content", s.listContent)
		r.Get("/runs", s.listRuns)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	integrationID := chi.URLParam(r, "integrationID")

	var req scrapeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result, err := s.scraper.ScrapeSite(ctx, req.URL, req.MaxPages)
	switch {
	case errors.Is(err, crawler.ErrInvalidRootURL):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "scrape timed out")
		return
	case err != nil:
		slog.Error("Scrape failed", "integration_id", integrationID, "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "scrape failed")
		return
	}

	run, err := s.store.SaveResult(r.Context(), integrationID, req.URL, result)
	if err != nil {
		slog.Error("Failed to store scrape result", "integration_id", integrationID, "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store content")
		return
	}

	slog.Info("Scrape stored",
		"integration_id", integrationID,
		"run_id", run.ID,
		"page_count", result.PageCount,
		"inserted", run.PagesInserted,
		"updated", run.PagesUpdated)

	writeJSON(w, http.StatusOK, scrapeResponse{
		ScrapeResult:  result,
		RunID:         run.ID,
		PagesInserted: run.PagesInserted,
		PagesUpdated:  run.PagesUpdated,
	})
}

func (s *Server) listContent(w http.ResponseWriter, r *http.Request) {
	integrationID := chi.URLParam(r, "integrationID")
	pages, err := s.store.ListPages(r.Context(), integrationID)
	if err != nil {
		slog.Error("Failed to list content", "integration_id", integrationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"integrationId": integrationID, "pages": pages})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	integrationID := chi.URLParam(r, "integrationID")
	runs, err := s.store.ListRuns(r.Context(), integrationID)
	if err != nil {
		slog.Error("Failed to list scrape runs", "integration_id", integrationID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"integrationId": integrationID, "runs": runs})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		duration := time.Since(start)

		metrics.ObserveHTTPRequest(r.Method, route, status, duration)
		slog.Info("request completed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write JSON failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
