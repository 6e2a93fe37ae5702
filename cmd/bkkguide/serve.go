package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bkkguide/bkkguide/internal/api"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat and catalog HTTP API (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve guide tools over MCP on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "bkkguide version %s\n", version)

	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	attractions, err := loadCorpus(cfg)
	if err != nil {
		return err
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if n, err := a.retriever.Count(ctx); err != nil {
		slog.Warn("could not count indexed documents", "backend", cfg.Index.Backend, "error", err)
	} else if n == 0 {
		slog.Warn("index is empty; run `bkkguide ingest` first", "backend", cfg.Index.Backend)
	} else {
		slog.Info("index ready", "backend", cfg.Index.Backend, "documents", n)
	}

	handler := api.NewHandler(api.Deps{
		Chat:               a.chatService(),
		Search:             a.retriever,
		Attractions:        attractions,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Completions can take most of a minute on slow models.
		WriteTimeout: 90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "bkkguide listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP() error {
	cfg, err := loadConfigAndLogging()
	if err != nil {
		return err
	}
	if err := cfg.ValidateSearch(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	attractions, err := loadCorpus(cfg)
	if err != nil {
		return err
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := api.MCPDeps{
		Search:      a.retriever,
		Attractions: attractions,
		Runs:        a.store,
		Version:     version,
	}
	if cfg.Chat.APIKey != "" {
		deps.Chat = a.chatService()
	} else {
		slog.Warn("chat API key not set; ask_guide is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("MCP server started (stdio transport)")
	stdioSrv := server.NewStdioServer(api.NewMCPServer(deps))
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}
