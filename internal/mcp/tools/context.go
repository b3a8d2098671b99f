package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

const (
	defaultContextMaxTokens   = 4000
	contextFallbackMaxResults = 5
)

// SearchContextTool implements the get_search_context MCP tool: it renders a
// token-budgeted context string for retrieval-augmented generation. It prefers
// the provider-native context capability, degrades past an unsupported option,
// and as a last resort synthesizes the context from a plain search.
type SearchContextTool struct {
	provider Provider
	logger   logSDK.Logger
}

// NewSearchContextTool constructs a SearchContextTool with the provided dependencies.
func NewSearchContextTool(provider Provider, logger logSDK.Logger) (*SearchContextTool, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &SearchContextTool{provider: provider, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *SearchContextTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_search_context",
		mcp.WithDescription("Generate a context string optimized for RAG applications: clean, token-bounded text suitable for feeding into an LLM."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Topic to gather context for.")),
		mcp.WithNumber("max_tokens", mcp.Description("Approximate token budget for the context, default 4000.")),
		mcp.WithString("search_depth", mcp.Description("Search depth for the fallback search: 'basic' (default) or 'advanced'.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes get_search_context. The result is always a string: the
// rendered context on success, or a descriptive error message after both the
// native path and the search fallback have failed.
func (t *SearchContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := struct {
		MaxTokens   int    `json:"max_tokens"`
		SearchDepth string `json:"search_depth"`
	}{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.MaxTokens <= 0 {
		args.MaxTokens = defaultContextMaxTokens
	}
	if args.SearchDepth == "" {
		args.SearchDepth = search.DepthBasic
	}

	rendered, nativeErr := t.provider.SearchContext(ctx, query, &tavily.ContextOptions{MaxTokens: args.MaxTokens})
	if nativeErr != nil && errors.Is(nativeErr, search.ErrUnsupportedOption) {
		rendered, nativeErr = t.provider.SearchContext(ctx, query, nil)
	}
	if nativeErr == nil {
		return mcp.NewToolResultText(rendered), nil
	}

	t.logger.Warn("native context generation failed, falling back to search",
		zap.Error(nativeErr),
	)

	fallback := &search.Request{
		Query:             query,
		SearchDepth:       args.SearchDepth,
		MaxResults:        contextFallbackMaxResults,
		IncludeAnswer:     search.FlagMode(search.AnswerAdvanced),
		IncludeRawContent: search.FlagMode(search.RawContentText),
	}
	fallback.Normalize()

	resp, fallbackErr := t.provider.Search(ctx, fallback)
	if fallbackErr != nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Context generation error: %s. Fallback error: %s",
			messageOf(nativeErr), messageOf(fallbackErr),
		)), nil
	}

	return mcp.NewToolResultText(synthesizeContext(resp)), nil
}

// synthesizeContext concatenates the answer and each result's title plus
// content into a double-newline separated context block.
func synthesizeContext(resp *search.Response) string {
	parts := make([]string, 0, len(resp.Results)+1)
	if resp.Answer != "" {
		parts = append(parts, "Summary: "+resp.Answer)
	}

	for _, item := range resp.Results {
		if item.Content == "" {
			continue
		}
		title := item.Title
		if title == "" {
			title = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("Source (%s): %s", title, item.Content))
	}

	return strings.Join(parts, "\n\n")
}
