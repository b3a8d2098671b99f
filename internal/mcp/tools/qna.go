package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
)

// QNATool implements the qna_search MCP tool: a single-shot direct-answer
// lookup that returns a plain string instead of a structured result set.
type QNATool struct {
	provider Provider
	logger   logSDK.Logger
}

// NewQNATool constructs a QNATool with the provided dependencies.
func NewQNATool(provider Provider, logger logSDK.Logger) (*QNATool, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &QNATool{provider: provider, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *QNATool) Definition() mcp.Tool {
	return mcp.NewTool(
		"qna_search",
		mcp.WithDescription("Get a direct, concise answer to a question without full search results. "+
			"Perfect for quick facts and simple questions; uses fewer API credits and responds faster than tavily_search."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes qna_search. Every failure path returns a descriptive string
// so the calling agent can always read the outcome.
func (t *QNATool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := t.provider.QNASearch(ctx, query)
	if err != nil {
		t.logger.Warn("qna search failed", zap.Error(err))
		return mcp.NewToolResultText(qnaFailureMessage(err)), nil
	}

	if strings.TrimSpace(answer) == "" {
		return mcp.NewToolResultText("No answer found for this query. Try using tavily_search for more comprehensive results."), nil
	}

	return mcp.NewToolResultText(answer), nil
}

func qnaFailureMessage(err error) string {
	message := messageOf(err)
	lowered := strings.ToLower(message)

	switch {
	case containsAnyKeyword(lowered, "quota", "credit", "limit"):
		return fmt.Sprintf("QNA search quota exceeded: %s. This uses fewer credits than regular search - check your Tavily account.", message)
	case strings.Contains(lowered, "timeout"):
		return fmt.Sprintf("QNA search timed out: %s. Try a simpler question or use tavily_search instead.", message)
	default:
		return fmt.Sprintf("QNA search error: %s. Try using tavily_search for this query, which may have better error handling.", message)
	}
}
