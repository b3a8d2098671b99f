package tools

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

const (
	defaultMapMaxDepth = 2
	defaultMapLimit    = 30
)

// MapTool implements the tavily_map MCP tool, a passthrough to the provider's
// site-mapping capability: link discovery without content extraction.
type MapTool struct {
	provider Provider
	logger   logSDK.Logger
}

// NewMapTool constructs a MapTool with the provided dependencies.
func NewMapTool(provider Provider, logger logSDK.Logger) (*MapTool, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &MapTool{provider: provider, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *MapTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"tavily_map",
		mcp.WithDescription("Map a website's link structure from a base URL without extracting page content. Cheaper than tavily_crawl for discovering URLs."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Base URL to map from.")),
		mcp.WithNumber("max_depth", mcp.Description("Link depth to follow from the base URL, default 2.")),
		mcp.WithNumber("limit", mcp.Description("Total URLs to discover, default 30.")),
		mcp.WithString("instructions", mcp.Description("Natural-language guidance for what to map.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes tavily_map.
func (t *MapTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := struct {
		MaxDepth     *int   `json:"max_depth"`
		Limit        *int   `json:"limit"`
		Instructions string `json:"instructions"`
	}{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mapReq := &tavily.MapRequest{
		URL:          baseURL,
		MaxDepth:     defaultMapMaxDepth,
		Limit:        defaultMapLimit,
		Instructions: args.Instructions,
	}
	if args.MaxDepth != nil {
		mapReq.MaxDepth = *args.MaxDepth
	}
	if args.Limit != nil {
		mapReq.Limit = *args.Limit
	}

	resp, err := t.provider.Map(ctx, mapReq)
	if err != nil {
		t.logger.Warn("map failed", zap.String("url", baseURL), zap.Error(err))
		return structuredResult(map[string]any{
			"error":      fmt.Sprintf("Tavily map error: %s", messageOf(err)),
			"error_type": errorTypeName(err),
		})
	}

	return structuredResult(resp)
}
