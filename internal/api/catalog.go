package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bkkguide/bkkguide/internal/chat"
	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/retrieval"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

// SearchResult is an attraction rebuilt from index metadata plus its
// similarity to the query.
type SearchResult struct {
	corpus.Metadata
	Similarity float32 `json:"similarity"`
}

func handleAttractions(attractions []corpus.Attraction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := attractions
		if out == nil {
			out = []corpus.Attraction{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleSearch(s Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			httpError(w, http.StatusBadRequest, "q is required")
			return
		}
		limit := parseIntParam(r, "limit", defaultSearchLimit, maxSearchLimit)

		var filter retrieval.Filter
		if category := r.URL.Query().Get("category"); category != "" {
			filter = retrieval.Filter{"category": category}
		}

		docs, err := s.Search(r.Context(), q, limit, filter)
		if err != nil {
			slog.Error("search failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
			httpError(w, http.StatusInternalServerError, chat.MsgRetrievalFailed)
			return
		}
		writeJSON(w, http.StatusOK, searchResults(docs))
	}
}

func searchResults(docs []retrieval.ScoredDocument) []SearchResult {
	out := make([]SearchResult, len(docs))
	for i, d := range docs {
		out[i] = SearchResult{Metadata: d.Metadata, Similarity: d.Score}
	}
	return out
}
