// Package chat answers travel questions from retrieved corpus context.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bkkguide/bkkguide/internal/llm"
	"github.com/bkkguide/bkkguide/internal/recommend"
	"github.com/bkkguide/bkkguide/internal/retrieval"
)

// DefaultTopK is the number of documents retrieved per question.
const DefaultTopK = 5

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrInvalidRequest means the message was missing or blank.
	ErrInvalidRequest = errors.New("message is required")

	// ErrNoRelevantContext means retrieval produced no usable context.
	ErrNoRelevantContext = errors.New("no relevant context")
)

// ModelError wraps a failed chat model invocation.
type ModelError struct {
	Kind llm.ErrorKind
	Err  error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("chat model (%s): %v", e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Turn is one prior message of the conversation, owned by the caller.
type Turn struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Request is a single chat question.
type Request struct {
	Message string
	History []Turn
}

// Response is the model answer plus derived suggestions.
type Response struct {
	Message         string
	Recommendations []recommend.Candidate
	Sources         []string // ids of the retrieved documents
}

// Retriever finds corpus documents relevant to a query.
type Retriever interface {
	FindRelevant(ctx context.Context, query string, k int) ([]retrieval.Document, error)
}

// Model completes a chat conversation.
type Model interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Recommender derives suggestions from an exchange.
type Recommender interface {
	Extract(message, answer string, retrievedIDs []string) []recommend.Candidate
}

// Service runs the retrieve, prompt, complete, recommend chain. It keeps no
// per-request state and is safe for concurrent use.
type Service struct {
	retriever   Retriever
	model       Model
	recommender Recommender
	topK        int
	logger      *slog.Logger
}

// NewService creates a Service. topK <= 0 selects DefaultTopK.
func NewService(r Retriever, m Model, rec Recommender, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		retriever:   r,
		model:       m,
		recommender: rec,
		topK:        topK,
		logger:      slog.Default(),
	}
}

// Respond answers req.Message using only retrieved context.
//
// Errors: ErrInvalidRequest for a blank message, an error wrapping
// retrieval.ErrContextRetrievalFailed when search fails,
// ErrNoRelevantContext when nothing usable was found, and *ModelError when
// the chat model call fails.
func (s *Service) Respond(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, ErrInvalidRequest
	}

	docs, err := s.retriever.FindRelevant(ctx, req.Message, s.topK)
	if err != nil {
		if !errors.Is(err, retrieval.ErrContextRetrievalFailed) {
			err = fmt.Errorf("%w: %w", retrieval.ErrContextRetrievalFailed, err)
		}
		return Response{}, err
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	s.logger.Debug("retrieved context", "documents", len(docs), "ids", ids)

	contextText := BuildContext(docs)
	if strings.TrimSpace(contextText) == "" {
		return Response{}, ErrNoRelevantContext
	}

	answer, err := s.model.Complete(ctx, BuildMessages(contextText, req.History, req.Message))
	if err != nil {
		return Response{}, &ModelError{Kind: llm.Classify(err), Err: err}
	}

	return Response{
		Message:         answer,
		Recommendations: s.recommender.Extract(req.Message, answer, ids),
		Sources:         ids,
	}, nil
}

// Client-facing error messages.
const (
	MsgInvalidRequest    = "Message is required"
	MsgUnauthorized      = "Invalid API key. Please check your OpenRouter API key."
	MsgNetwork           = "Network error. Please check your internet connection."
	MsgTimeout           = "Request timed out. Please try again."
	MsgRetrievalFailed   = "Unable to retrieve travel information. Please try again."
	MsgNoRelevantContext = "No relevant travel information found for your query. Please try rephrasing your question."
	MsgGeneric           = "Failed to process chat message"
)

// ClientMessage maps an error from Respond to the short text shown to users.
func ClientMessage(err error) string {
	var me *ModelError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return MsgInvalidRequest
	case errors.Is(err, retrieval.ErrContextRetrievalFailed):
		return MsgRetrievalFailed
	case errors.Is(err, ErrNoRelevantContext):
		return MsgNoRelevantContext
	case errors.As(err, &me):
		switch me.Kind {
		case llm.KindUnauthorized:
			return MsgUnauthorized
		case llm.KindNetwork:
			return MsgNetwork
		case llm.KindTimeout:
			return MsgTimeout
		}
	}
	return MsgGeneric
}
