// Package mcpadapter exposes the outlet assistant as MCP tools so agent
// clients can query the directory over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
)

const (
	serverName    = "outlet-assistant"
	serverVersion = "1.0.0"

	askToolName  = "ask_outlets"
	listToolName = "list_outlets"
)

type Handlers struct {
	chat      ports.ChatService
	directory ports.OutletDirectory
}

func NewHandlers(chat ports.ChatService, directory ports.OutletDirectory) *Handlers {
	return &Handlers{chat: chat, directory: directory}
}

func NewServer(h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool(askToolName,
		mcp.WithDescription("Answer a natural-language question about outlet locations, counts and opening hours. The answer may contain inline HTML."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question, e.g. \"how many outlets in bangsar\"."),
		),
	), h.Ask)

	if h.directory != nil {
		s.AddTool(mcp.NewTool(listToolName,
			mcp.WithDescription("List every outlet in the directory as JSON."),
		), h.List)
	}
	return s
}

func (h *Handlers) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := h.chat.Answer(ctx, query)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		slog.Error("mcp_tool_failed", "tool", askToolName, "error", err)
		return mcp.NewToolResultError("internal error while answering the query"), nil
	}
	return mcp.NewToolResultText(answer.Text), nil
}

func (h *Handlers) List(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outlets, err := h.directory.ListOutlets(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrOutletNotFound) {
			return mcp.NewToolResultError("No outlets found"), nil
		}
		slog.Error("mcp_tool_failed", "tool", listToolName, "error", err)
		return mcp.NewToolResultError("internal error while listing outlets"), nil
	}
	data, err := json.Marshal(outlets)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
