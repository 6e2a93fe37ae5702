// Package api exposes the guide over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/bkkguide/bkkguide/internal/chat"
	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/retrieval"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Responder answers chat requests.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Searcher runs scored similarity searches.
type Searcher interface {
	Search(ctx context.Context, query string, k int, filter retrieval.Filter) ([]retrieval.ScoredDocument, error)
}

// Deps holds what the HTTP handlers need.
type Deps struct {
	Chat        Responder
	Search      Searcher
	Attractions []corpus.Attraction

	// RateLimitPerMinute bounds /api requests per connecting address.
	// Forwarding headers are not trusted for this. Zero disables it.
	RateLimitPerMinute int
}

// NewHandler returns the guide's HTTP handler.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestID)
	r.Use(peerAddr)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimitPerMinute > 0 {
			r.Use(newClientLimiter(deps.RateLimitPerMinute, time.Now).middleware)
		}
		r.Post("/chat", handleChat(deps.Chat))
		r.Get("/attractions", handleAttractions(deps.Attractions))
		r.Get("/search", handleSearch(deps.Search))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestID assigns a uuid to requests that arrive without one so the id
// chi's RequestID middleware records is globally unique.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		w.Header().Set(middleware.RequestIDHeader, r.Header.Get(middleware.RequestIDHeader))
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
