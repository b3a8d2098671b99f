package tools

import (
	"context"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
)

const (
	defaultNewsDays       = 7
	defaultNewsMaxResults = 10
)

// NewsSearchTool implements the detailed_news_search MCP tool, a preset over
// the search pipeline tuned for rich news coverage: advanced depth, full
// article content, AI summaries, and an extended timeout.
type NewsSearchTool struct {
	executor SearchExecutor
	logger   logSDK.Logger
}

// NewNewsSearchTool constructs a NewsSearchTool with the provided dependencies.
func NewNewsSearchTool(executor SearchExecutor, logger logSDK.Logger) (*NewsSearchTool, error) {
	if executor == nil {
		return nil, errors.New("search executor is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &NewsSearchTool{executor: executor, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *NewsSearchTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"detailed_news_search",
		mcp.WithDescription("Get detailed, comprehensive news coverage with automatic parameter tuning: advanced depth, full article content, and AI-generated summaries. "+
			"For country-specific news, international sources often have better coverage than a country filter."),
		mcp.WithString("query", mcp.Required(), mcp.Description("News topic to search for.")),
		mcp.WithNumber("days", mcp.Description("Restrict coverage to the last N days, default 7.")),
		mcp.WithNumber("max_results", mcp.Description("Result count, default 10.")),
		mcp.WithString("country", mcp.Description("Country filter, only applied when include_international_sources is false.")),
		mcp.WithBoolean("include_international_sources", mcp.Description("Prefer international sources over the country filter, default true.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes detailed_news_search through the shared search pipeline.
func (t *NewsSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := struct {
		Days                        *int   `json:"days"`
		MaxResults                  *int   `json:"max_results"`
		Country                     string `json:"country"`
		IncludeInternationalSources *bool  `json:"include_international_sources"`
	}{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	days := defaultNewsDays
	if args.Days != nil {
		days = *args.Days
	}
	maxResults := defaultNewsMaxResults
	if args.MaxResults != nil {
		maxResults = *args.MaxResults
	}
	includeInternational := true
	if args.IncludeInternationalSources != nil {
		includeInternational = *args.IncludeInternationalSources
	}

	// International sources usually cover a specific country better than the
	// upstream country filter does, so the filter only applies on request.
	searchCountry := ""
	if !includeInternational {
		searchCountry = args.Country
	}

	preset := &search.Request{
		Query:                    query,
		SearchDepth:              search.DepthAdvanced,
		Topic:                    search.TopicNews,
		AutoParameters:           true,
		Days:                     &days,
		MaxResults:               maxResults,
		IncludeAnswer:            search.FlagMode(search.AnswerAdvanced),
		IncludeRawContent:        search.FlagMode(search.RawContentMarkdown),
		IncludeImageDescriptions: true,
		IncludeFavicon:           true,
		Country:                  searchCountry,
		Timeout:                  search.PresetTimeoutSeconds,
	}

	return runSearchPipeline(ctx, t.executor, t.logger.Named("detailed_news_search"), preset)
}
