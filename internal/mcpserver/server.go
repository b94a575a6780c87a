// Package mcpserver exposes the Parallel Search and Extract adapters as MCP
// tools over stdio or stateless streamable HTTP.
package mcpserver

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/tsion/parallel-search-mcp/internal/config"
	"github.com/tsion/parallel-search-mcp/internal/parallel"
)

const (
	Name    = "parallel-web-search"
	Version = "1.0.0"

	instructions = "Parallel Web Search MCP server. Search the web and extract " +
		"page content using Parallel's Search and Extract APIs."
)

// Server wraps the MCP server with the tool handlers bound to one API client.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New builds the server and registers all tools. Config supplies the default
// search/extract parameters applied when a tool call omits them.
func New(client *parallel.Client, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := server.NewMCPServer(Name, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	h := &handlers{
		client:  client,
		search:  cfg.Search,
		extract: cfg.Extract,
		logger:  logger,
	}
	h.register(s)

	return &Server{mcp: s, logger: logger}
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return server.ServeStdio(s.mcp)
}

// ServeHTTP blocks serving stateless streamable HTTP on the given port.
func (s *Server) ServeHTTP(port int) error {
	s.logger.Info("mcp server starting", "transport", "http", "port", port)
	httpServer := server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
	return httpServer.Start(fmt.Sprintf(":%d", port))
}
