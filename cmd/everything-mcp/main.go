package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/everything-mcp/pkg/everything"
	"github.com/usestring/everything-mcp/pkg/mcpsrv"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create the Everything IPC client.
	// The window class and paging defaults are configured via environment
	// variables (EVERYTHING_WINDOW_CLASS, SEARCH_PAGE_SIZE, ...).
	client := everything.New()

	// Create MCP server with all builtin tools.
	// Configuration is loaded from environment variables:
	// - LOG_LEVEL: debug, info, warn, error (default: info)
	// - LOG_FILE: path to log file (default: stderr only)
	// - SEARCH_MAX_RESULTS, SEARCH_PAGE_TIMEOUT_MS, etc.
	// (see internal/config for all options)
	server, err := mcpsrv.NewServer(client)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	// Run the server with stdio transport
	slog.Info("starting Everything MCP server on stdio")
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
