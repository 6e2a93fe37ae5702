package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bkkguide/bkkguide/internal/chat"
	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/retrieval"
	"github.com/bkkguide/bkkguide/internal/storage"
)

// RunLister reads recorded ingestion runs.
type RunLister interface {
	ListIngestRuns(ctx context.Context, limit int) ([]storage.IngestRun, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Search      Searcher
	Chat        Responder // optional; if nil, ask_guide returns an error
	Attractions []corpus.Attraction
	Runs        RunLister // optional; if nil, the ingest history resource is not registered
	Version     string
}

// NewMCPServer creates an MCP server with the guide's tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"bkkguide",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("bkkguide: curated Bangkok attractions with similarity search and a grounded travel assistant."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("find_attractions",
			mcp.WithDescription("Find Bangkok attractions similar to a free-text query."),
			mcp.WithString("query", mcp.Description("What the traveller is looking for"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
			mcp.WithString("category", mcp.Description("Only return attractions in this category, e.g. Temple")),
		),
		mcpFindAttractions(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_guide",
			mcp.WithDescription("Ask the Bangkok travel assistant a question. Answers use only the curated attraction data."),
			mcp.WithString("message", mcp.Description("The question"), mcp.Required()),
		),
		mcpAskGuide(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"bkk://attractions",
			"Bangkok Attractions",
			mcp.WithResourceDescription("The curated attraction corpus as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceAttractions(deps),
	)

	if deps.Runs != nil {
		s.AddResource(
			mcp.NewResource(
				"bkk://ingest-runs",
				"Ingestion History",
				mcp.WithResourceDescription("Last 10 recorded ingestion runs"),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceIngestRuns(deps),
		)
	}

	return s
}

func mcpFindAttractions(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil || query == "" {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", defaultSearchLimit)
		if limit <= 0 {
			limit = defaultSearchLimit
		}
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}

		var filter retrieval.Filter
		if category := req.GetString("category", ""); category != "" {
			filter = retrieval.Filter{"category": category}
		}

		docs, err := deps.Search.Search(ctx, query, limit, filter)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		b, err := json.Marshal(searchResults(docs))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAskGuide(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Chat == nil {
			return mcpError("the guide is not available: no chat model configured"), nil
		}

		message, err := req.RequireString("message")
		if err != nil {
			return mcpError(chat.MsgInvalidRequest), nil
		}

		resp, err := deps.Chat.Respond(ctx, chat.Request{Message: message})
		if err != nil {
			slog.Error("ask_guide failed", "error", err)
			return mcpError(chat.ClientMessage(err)), nil
		}

		type answer struct {
			Message         string   `json:"message"`
			Recommendations []string `json:"recommendations,omitempty"`
			Sources         []string `json:"sources"`
		}
		out := answer{Message: resp.Message, Sources: resp.Sources}
		for _, c := range resp.Recommendations {
			out.Recommendations = append(out.Recommendations, c.Title)
		}
		if out.Sources == nil {
			out.Sources = []string{}
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal answer: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceAttractions(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		attractions := deps.Attractions
		if attractions == nil {
			attractions = []corpus.Attraction{}
		}
		b, err := json.Marshal(attractions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attractions: %w", err)
		}
		return jsonResource(req.Params.URI, b), nil
	}
}

func mcpResourceIngestRuns(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		runs, err := deps.Runs.ListIngestRuns(ctx, 10)
		if err != nil {
			return nil, fmt.Errorf("failed to list ingest runs: %w", err)
		}

		type runSummary struct {
			ID        string `json:"id"`
			StartedAt string `json:"started_at"`
			Status    string `json:"status"`
			Backend   string `json:"backend"`
			Documents int    `json:"documents"`
			LastError string `json:"last_error,omitempty"`
		}

		summaries := make([]runSummary, len(runs))
		for i, r := range runs {
			summaries[i] = runSummary{
				ID:        r.ID,
				StartedAt: r.StartedAt.Format(time.RFC3339),
				Status:    r.Status,
				Backend:   r.Backend,
				Documents: r.Documents,
				LastError: r.LastError,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ingest runs: %w", err)
		}
		return jsonResource(req.Params.URI, b), nil
	}
}

func jsonResource(uri string, b []byte) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
