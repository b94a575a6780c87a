package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// pingTool validates the MCP handshake without touching the Parallel API.
func pingTool() mcp.Tool {
	return mcp.NewTool("ping",
		mcp.WithDescription("Smoke test ping (no API credential required)"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("message",
			mcp.Description("Message to echo back"),
			mcp.DefaultString("pong"),
		),
	)
}

func (h *handlers) handlePing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := req.GetString("message", "pong")
	return jsonResult(map[string]any{
		"ok":      true,
		"message": message,
	})
}
