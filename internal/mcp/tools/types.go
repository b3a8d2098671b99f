package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

// Clock returns the current time. It enables deterministic tests.
type Clock func() time.Time

// Tool exposes the capabilities required by the MCP server registration lifecycle.
type Tool interface {
	Definition() mcp.Tool
	Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// SearchExecutor runs one search request through the resilience ladder.
type SearchExecutor interface {
	Execute(ctx context.Context, req *search.Request) (*search.Response, error)
}

// Provider bundles the upstream capabilities consumed by the tool set. The
// production implementation is the Tavily REST client; tests substitute an
// in-memory fake.
type Provider interface {
	Search(ctx context.Context, req *search.Request) (*search.Response, error)
	Extract(ctx context.Context, req *tavily.ExtractRequest) (*tavily.ExtractResponse, error)
	Crawl(ctx context.Context, req *tavily.CrawlRequest) (*tavily.CrawlResponse, error)
	Map(ctx context.Context, req *tavily.MapRequest) (*tavily.MapResponse, error)
	QNASearch(ctx context.Context, query string) (string, error)
	SearchContext(ctx context.Context, query string, opts *tavily.ContextOptions) (string, error)
}
