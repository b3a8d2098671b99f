package tools

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
)

const defaultSearchMaxResults = 5

// searchArgs is the wire shape of the tavily_search tool arguments. Pointer
// fields distinguish an absent argument from an explicit zero so defaulting
// and validation see the caller's literal input.
type searchArgs struct {
	Query                    string            `json:"query"`
	SearchDepth              string            `json:"search_depth"`
	Topic                    string            `json:"topic"`
	AutoParameters           bool              `json:"auto_parameters"`
	Days                     *int              `json:"days"`
	TimeRange                string            `json:"time_range"`
	StartDate                string            `json:"start_date"`
	EndDate                  string            `json:"end_date"`
	MaxResults               *int              `json:"max_results"`
	ChunksPerSource          *int              `json:"chunks_per_source"`
	IncludeImages            bool              `json:"include_images"`
	IncludeImageDescriptions bool              `json:"include_image_descriptions"`
	IncludeAnswer            search.OptionFlag `json:"include_answer"`
	IncludeRawContent        search.OptionFlag `json:"include_raw_content"`
	IncludeDomains           []string          `json:"include_domains"`
	ExcludeDomains           []string          `json:"exclude_domains"`
	Country                  string            `json:"country"`
	Timeout                  *int              `json:"timeout"`
	IncludeFavicon           bool              `json:"include_favicon"`
}

// request converts the tool arguments into the canonical search request,
// filling the documented argument defaults.
func (a *searchArgs) request() *search.Request {
	depth := a.SearchDepth
	if depth == "" {
		depth = search.DepthBasic
	}
	topic := a.Topic
	if topic == "" {
		topic = search.TopicGeneral
	}
	maxResults := defaultSearchMaxResults
	if a.MaxResults != nil {
		maxResults = *a.MaxResults
	}
	timeout := 0
	if a.Timeout != nil {
		timeout = *a.Timeout
	}

	return &search.Request{
		Query:                    a.Query,
		SearchDepth:              depth,
		Topic:                    topic,
		AutoParameters:           a.AutoParameters,
		MaxResults:               maxResults,
		Days:                     a.Days,
		TimeRange:                a.TimeRange,
		StartDate:                a.StartDate,
		EndDate:                  a.EndDate,
		ChunksPerSource:          a.ChunksPerSource,
		IncludeImages:            a.IncludeImages,
		IncludeImageDescriptions: a.IncludeImageDescriptions,
		IncludeAnswer:            a.IncludeAnswer,
		IncludeRawContent:        a.IncludeRawContent,
		IncludeFavicon:           a.IncludeFavicon,
		IncludeDomains:           a.IncludeDomains,
		ExcludeDomains:           a.ExcludeDomains,
		Country:                  a.Country,
		Timeout:                  timeout,
	}
}

// SearchTool implements the tavily_search MCP tool, the full-surface entry
// point into the search pipeline.
type SearchTool struct {
	executor SearchExecutor
	logger   logSDK.Logger
}

// NewSearchTool constructs a SearchTool with the provided dependencies.
func NewSearchTool(executor SearchExecutor, logger logSDK.Logger) (*SearchTool, error) {
	if executor == nil {
		return nil, errors.New("search executor is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &SearchTool{executor: executor, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"tavily_search",
		mcp.WithDescription("Search the web using the Tavily API with comprehensive parameter support. "+
			"Use auto_parameters=true for AI-optimized search settings, search_depth='advanced' for deeper analysis (2 credits vs 1), "+
			"include_answer='advanced' for comprehensive AI summaries, and include_raw_content='markdown' for full article content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Plain text search query.")),
		mcp.WithString("search_depth", mcp.Description("Search depth: 'basic' (default) or 'advanced'.")),
		mcp.WithString("topic", mcp.Description("Search category: general (default), news, finance, health, scientific, or travel.")),
		mcp.WithBoolean("auto_parameters", mcp.Description("Let Tavily's AI pick optimal search parameters (may use advanced search).")),
		mcp.WithNumber("days", mcp.Description("Restrict results to the last N days (works best with topic='news').")),
		mcp.WithString("time_range", mcp.Description("Relative time window: day, week, month, year, or d/w/m/y.")),
		mcp.WithString("start_date", mcp.Description("Earliest publish date, YYYY-MM-DD.")),
		mcp.WithString("end_date", mcp.Description("Latest publish date, YYYY-MM-DD.")),
		mcp.WithNumber("max_results", mcp.Description("Result count, 0-20. Use 5-10 for most searches, 15-20 for comprehensive research.")),
		mcp.WithNumber("chunks_per_source", mcp.Description("Content chunks per source, 1-3. Requires search_depth='advanced'.")),
		mcp.WithBoolean("include_images", mcp.Description("Include related images in the response.")),
		mcp.WithBoolean("include_image_descriptions", mcp.Description("Include AI-generated descriptions for images.")),
		mcp.WithString("include_answer", mcp.Description("Include an AI answer: true/false or 'basic'/'advanced'.")),
		mcp.WithString("include_raw_content", mcp.Description("Include full page content: true/false or 'markdown'/'text'.")),
		mcp.WithArray("include_domains", mcp.Description("Only include results from these domains.")),
		mcp.WithArray("exclude_domains", mcp.Description("Exclude results from these domains.")),
		mcp.WithString("country", mcp.Description("Boost results from a country. Requires topic='general'.")),
		mcp.WithNumber("timeout", mcp.Description("Request timeout in seconds. Estimated from the request when omitted.")),
		mcp.WithBoolean("include_favicon", mcp.Description("Include site favicons in the response.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes the tavily_search tool logic.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := searchArgs{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args.Query = query

	return runSearchPipeline(ctx, t.executor, t.logger.Named("tavily_search"), args.request())
}

// runSearchPipeline validates and executes one search request, rendering the
// outcome in the structured shape shared by every search-style tool. The
// ladder inside the executor owns retries; this helper owns the
// validation-first contract and the payload mapping.
func runSearchPipeline(ctx context.Context, executor SearchExecutor, logger logSDK.Logger, req *search.Request) (*mcp.CallToolResult, error) {
	if err := req.Validate(); err != nil {
		logger.Debug("search request rejected", zap.Error(err))
		return validationFailure(err)
	}

	start := time.Now()
	resp, err := executor.Execute(ctx, req)
	if err != nil {
		logger.Warn("search pipeline failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return searchFailureResult(err)
	}

	logger.Debug("search pipeline completed",
		zap.Int("results_count", len(resp.Results)),
		zap.String("fallback_used", resp.FallbackUsed),
		zap.Duration("duration", time.Since(start)),
	)
	return structuredResult(resp)
}
