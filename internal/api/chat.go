package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bkkguide/bkkguide/internal/chat"
	"github.com/bkkguide/bkkguide/internal/recommend"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Message         string                `json:"message"`
	Recommendations []recommend.Candidate `json:"recommendations,omitempty"`
}

func handleChat(svc Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		resp, err := svc.Respond(r.Context(), chat.Request{Message: req.Message, History: req.History})
		if err != nil {
			if errors.Is(err, chat.ErrInvalidRequest) {
				httpError(w, http.StatusBadRequest, chat.MsgInvalidRequest)
				return
			}
			slog.Error("chat request failed",
				"request_id", middleware.GetReqID(r.Context()),
				"error", err,
			)
			httpError(w, http.StatusInternalServerError, chat.ClientMessage(err))
			return
		}

		slog.Debug("chat answered",
			"request_id", middleware.GetReqID(r.Context()),
			"sources", resp.Sources,
			"recommendations", len(resp.Recommendations),
		)
		writeJSON(w, http.StatusOK, ChatResponse{
			Message:         resp.Message,
			Recommendations: resp.Recommendations,
		})
	}
}
