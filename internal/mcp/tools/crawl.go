package tools

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

const (
	defaultCrawlMaxDepth   = 1
	defaultCrawlMaxBreadth = 20
	defaultCrawlLimit      = 50
)

// CrawlTool implements the tavily_crawl MCP tool, a passthrough to the
// provider's site-crawling capability.
type CrawlTool struct {
	provider Provider
	logger   logSDK.Logger
}

// NewCrawlTool constructs a CrawlTool with the provided dependencies.
func NewCrawlTool(provider Provider, logger logSDK.Logger) (*CrawlTool, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &CrawlTool{provider: provider, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *CrawlTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"tavily_crawl",
		mcp.WithDescription("Crawl a website from a base URL, following links and extracting page content along the way."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Base URL to start crawling from.")),
		mcp.WithNumber("max_depth", mcp.Description("Link depth to follow from the base URL, default 1.")),
		mcp.WithNumber("max_breadth", mcp.Description("Links to follow per page, default 20.")),
		mcp.WithNumber("limit", mcp.Description("Total pages to crawl, default 50.")),
		mcp.WithString("instructions", mcp.Description("Natural-language guidance for what to crawl.")),
		mcp.WithArray("select_paths", mcp.Description("Regex patterns for URL paths to include.")),
		mcp.WithArray("select_domains", mcp.Description("Regex patterns for domains to include.")),
		mcp.WithArray("exclude_paths", mcp.Description("Regex patterns for URL paths to skip.")),
		mcp.WithArray("exclude_domains", mcp.Description("Regex patterns for domains to skip.")),
		mcp.WithBoolean("allow_external", mcp.Description("Follow links to external domains, default true.")),
		mcp.WithBoolean("include_images", mcp.Description("Include images found on crawled pages.")),
		mcp.WithArray("categories", mcp.Description("Page categories to filter for, e.g. Documentation, Blog, Pricing.")),
		mcp.WithString("extract_depth", mcp.Description("Extraction depth per page: 'basic' (default) or 'advanced'.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes tavily_crawl.
func (t *CrawlTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := struct {
		MaxDepth       *int     `json:"max_depth"`
		MaxBreadth     *int     `json:"max_breadth"`
		Limit          *int     `json:"limit"`
		Instructions   string   `json:"instructions"`
		SelectPaths    []string `json:"select_paths"`
		SelectDomains  []string `json:"select_domains"`
		ExcludePaths   []string `json:"exclude_paths"`
		ExcludeDomains []string `json:"exclude_domains"`
		AllowExternal  *bool    `json:"allow_external"`
		IncludeImages  bool     `json:"include_images"`
		Categories     []string `json:"categories"`
		ExtractDepth   string   `json:"extract_depth"`
	}{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	crawlReq := &tavily.CrawlRequest{
		URL:            baseURL,
		MaxDepth:       defaultCrawlMaxDepth,
		MaxBreadth:     defaultCrawlMaxBreadth,
		Limit:          defaultCrawlLimit,
		Instructions:   args.Instructions,
		SelectPaths:    args.SelectPaths,
		SelectDomains:  args.SelectDomains,
		ExcludePaths:   args.ExcludePaths,
		ExcludeDomains: args.ExcludeDomains,
		AllowExternal:  true,
		IncludeImages:  args.IncludeImages,
		Categories:     args.Categories,
		ExtractDepth:   search.DepthBasic,
	}
	if args.MaxDepth != nil {
		crawlReq.MaxDepth = *args.MaxDepth
	}
	if args.MaxBreadth != nil {
		crawlReq.MaxBreadth = *args.MaxBreadth
	}
	if args.Limit != nil {
		crawlReq.Limit = *args.Limit
	}
	if args.AllowExternal != nil {
		crawlReq.AllowExternal = *args.AllowExternal
	}
	if args.ExtractDepth != "" {
		crawlReq.ExtractDepth = args.ExtractDepth
	}

	resp, err := t.provider.Crawl(ctx, crawlReq)
	if err != nil {
		t.logger.Warn("crawl failed", zap.String("url", baseURL), zap.Error(err))
		return structuredResult(map[string]any{
			"error":      fmt.Sprintf("Tavily crawl error: %s", messageOf(err)),
			"error_type": errorTypeName(err),
		})
	}

	return structuredResult(resp)
}
