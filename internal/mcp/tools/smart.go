package tools

import (
	"context"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
)

const defaultSmartMaxResults = 10

// SmartSearchTool implements the smart_search MCP tool, a preset that hands
// parameter selection to the upstream AI while requesting rich content.
type SmartSearchTool struct {
	executor SearchExecutor
	logger   logSDK.Logger
}

// NewSmartSearchTool constructs a SmartSearchTool with the provided dependencies.
func NewSmartSearchTool(executor SearchExecutor, logger logSDK.Logger) (*SmartSearchTool, error) {
	if executor == nil {
		return nil, errors.New("search executor is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &SmartSearchTool{executor: executor, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *SmartSearchTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"smart_search",
		mcp.WithDescription("Intelligent search that lets Tavily's AI optimize search_depth, topic and time_range from the query intent. "+
			"May use advanced search (2 credits) when the AI decides it improves results."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Plain text search query.")),
		mcp.WithNumber("max_results", mcp.Description("Result count, default 10.")),
		mcp.WithString("include_answer", mcp.Description("Include an AI answer: true/false or 'basic'/'advanced'. Default 'advanced'.")),
		mcp.WithString("include_raw_content", mcp.Description("Include full page content: true/false or 'markdown'/'text'. Default 'markdown'.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes smart_search through the shared search pipeline.
func (t *SmartSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := struct {
		MaxResults        *int               `json:"max_results"`
		IncludeAnswer     *search.OptionFlag `json:"include_answer"`
		IncludeRawContent *search.OptionFlag `json:"include_raw_content"`
	}{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	maxResults := defaultSmartMaxResults
	if args.MaxResults != nil {
		maxResults = *args.MaxResults
	}
	answer := search.FlagMode(search.AnswerAdvanced)
	if args.IncludeAnswer != nil {
		answer = *args.IncludeAnswer
	}
	rawContent := search.FlagMode(search.RawContentMarkdown)
	if args.IncludeRawContent != nil {
		rawContent = *args.IncludeRawContent
	}

	preset := &search.Request{
		Query:                    query,
		AutoParameters:           true,
		MaxResults:               maxResults,
		IncludeAnswer:            answer,
		IncludeRawContent:        rawContent,
		IncludeImages:            true,
		IncludeImageDescriptions: true,
		IncludeFavicon:           true,
		Timeout:                  search.PresetTimeoutSeconds,
	}

	return runSearchPipeline(ctx, t.executor, t.logger.Named("smart_search"), preset)
}
