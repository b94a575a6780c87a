package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tsion/parallel-search-mcp/internal/config"
	"github.com/tsion/parallel-search-mcp/internal/parallel"
)

type handlers struct {
	client  *parallel.Client
	search  config.SearchConfig
	extract config.ExtractConfig
	logger  *slog.Logger
}

// register adds all tools. Search and extract carry a parallel_-prefixed
// alias so clients can address them under either name.
func (h *handlers) register(s *server.MCPServer) {
	for _, name := range []string{"search", "parallel_search"} {
		s.AddTool(searchTool(name), h.handleSearch)
	}
	for _, name := range []string{"extract", "parallel_extract"} {
		s.AddTool(extractTool(name), h.handleExtract)
	}
	s.AddTool(pingTool(), h.handlePing)
}

func searchTool(name string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription("Search the web using Parallel's Search API"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithArray("queries",
			mcp.Required(),
			mcp.Description("Search queries to execute in one batch"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("objective",
			mcp.Description("High-level objective to guide result relevance"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum results per query"),
			mcp.DefaultNumber(parallel.DefaultMaxResults),
		),
		mcp.WithNumber("max_chars_per_result",
			mcp.Description("Maximum characters per result excerpt"),
			mcp.DefaultNumber(parallel.DefaultMaxCharsPerResult),
		),
	)
}

func extractTool(name string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription("Extract content from URLs using Parallel's Extract API"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Public URLs to extract content from"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("objective",
			mcp.Description("What content to extract (guides excerpt selection)"),
		),
		mcp.WithBoolean("excerpts",
			mcp.Description("Return focused passages aligned with the objective"),
			mcp.DefaultBool(true),
		),
		mcp.WithBoolean("full_content",
			mcp.Description("Return complete page content as markdown"),
			mcp.DefaultBool(false),
		),
	)
}

func (h *handlers) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Queries           []string `json:"queries"`
		Objective         string   `json:"objective"`
		MaxResults        int      `json:"max_results"`
		MaxCharsPerResult int      `json:"max_chars_per_result"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if len(args.Queries) == 0 {
		return mcp.NewToolResultError("queries must not be empty"), nil
	}

	opts := parallel.SearchOptions{
		Objective:         args.Objective,
		MaxResults:        intOr(args.MaxResults, h.search.MaxResults),
		MaxCharsPerResult: intOr(args.MaxCharsPerResult, h.search.MaxCharsPerResult),
	}

	responses, err := h.client.Search(ctx, args.Queries, opts)
	if err != nil {
		h.logger.Error("search failed", "queries", len(args.Queries), "error", err)
		return mcp.NewToolResultErrorFromErr("search failed", err), nil
	}

	h.logger.Info("search completed", "queries", len(args.Queries), "responses", len(responses))
	return jsonResult(responses)
}

func (h *handlers) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		URLs        []string `json:"urls"`
		Objective   string   `json:"objective"`
		Excerpts    *bool    `json:"excerpts"`
		FullContent *bool    `json:"full_content"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if len(args.URLs) == 0 {
		return mcp.NewToolResultError("urls must not be empty"), nil
	}

	excerpts := h.extract.Excerpts
	if args.Excerpts != nil {
		excerpts = *args.Excerpts
	}
	fullContent := h.extract.FullContent
	if args.FullContent != nil {
		fullContent = *args.FullContent
	}

	opts := parallel.ExtractOptions{
		Objective:   args.Objective,
		Excerpts:    &excerpts,
		FullContent: fullContent,
	}

	resp, err := h.client.Extract(ctx, args.URLs, opts)
	if err != nil {
		h.logger.Error("extract failed", "urls", len(args.URLs), "error", err)
		return mcp.NewToolResultErrorFromErr("extract failed", err), nil
	}

	h.logger.Info("extract completed", "urls", len(args.URLs), "results", len(resp.Results), "errors", len(resp.Errors))
	return jsonResult(resp)
}

func intOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
