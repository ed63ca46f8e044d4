package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/outlet-assistant/internal/adapters/mcp"
	"github.com/kirillkom/outlet-assistant/internal/bootstrap"
	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// stdout carries MCP frames.
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(mcpadapter.NewHandlers(app.Chat, app.Directory))
	if err := server.ServeStdio(srv); err != nil {
		slog.Error("mcp_server_failed", "error", err)
	}
}
