// Package mcpserver exposes the buffer manager's operations as MCP tools,
// so agent runtimes can fetch and extend conversation context over the
// Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/obitus-ai/contextd/internal/manager"
	"github.com/obitus-ai/contextd/pkg/message"
)

// Server wraps an MCP server and its SSE transport.
type Server struct {
	mcp    *server.MCPServer
	sse    *server.SSEServer
	mgr    *manager.Manager
	logger *slog.Logger
}

// New creates an MCP server with the context tools registered. The returned
// server is mounted under basePath by the HTTP gateway.
func New(mgr *manager.Manager, basePath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			"contextd",
			"1.0.0",
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		mgr:    mgr,
		logger: logger,
	}
	s.sse = server.NewSSEServer(s.mcp, server.WithStaticBasePath(basePath))

	s.registerTools()
	return s
}

// Handler returns the SSE transport for mounting into an HTTP mux.
func (s *Server) Handler() http.Handler {
	return s.sse
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("conversation_context",
			mcp.WithDescription("Return the formatted context window for a conversation, summarizing older messages if the buffer is over budget."),
			mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
		),
		s.handleContext,
	)

	s.mcp.AddTool(
		mcp.NewTool("add_message",
			mcp.WithDescription("Append a message to a conversation's context buffer."),
			mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Message text")),
			mcp.WithString("sender_id", mcp.Description("Sender identifier (agent type or user id)")),
			mcp.WithString("sender_type", mcp.Description("One of user, agent, system; defaults to agent")),
		),
		s.handleAddMessage,
	)

	s.mcp.AddTool(
		mcp.NewTool("buffer_stats",
			mcp.WithDescription("Return aggregate statistics across all live conversation buffers."),
		),
		s.handleStats,
	)
}

func (s *Server) handleContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.mgr.Context(ctx, id)), nil
}

func (s *Server) handleAddMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	senderType := message.SenderType(req.GetString("sender_type", string(message.SenderAgent)))
	if !senderType.Valid() {
		return mcp.NewToolResultError("sender_type must be user, agent, or system"), nil
	}
	senderID := req.GetString("sender_id", "")

	s.mgr.AddMessage(ctx, id, content, senderID, senderType, nil)
	return mcp.NewToolResultText("message appended"), nil
}

func (s *Server) handleStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.mgr.Stats())
	if err != nil {
		return mcp.NewToolResultError("stats encoding failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
